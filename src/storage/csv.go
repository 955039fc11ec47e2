// csv.go
package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"FlightDelayAnalysis/src/utils"

	"github.com/go-gota/gota/dataframe"
)

// CSVSink writes the table as comma separated text. NA cells are written as
// empty fields and floats in their shortest form, so identical tables give
// identical files.
type CSVSink struct {
	Path string
}

func (s *CSVSink) Name() string { return "csv" }

// Write goes through a temporary file in the target directory so readers
// never see a partial file.
func (s *CSVSink) Write(ctx context.Context, df dataframe.DataFrame) (int, error) {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file for %s: %w", s.Path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, err
	}

	n, err := writeCSV(ctx, tmp, df)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", s.Path, err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return 0, fmt.Errorf("replace %s: %w", s.Path, err)
	}
	return n, nil
}

func writeCSV(ctx context.Context, f *os.File, df dataframe.DataFrame) (int, error) {
	buf := bufio.NewWriterSize(f, 1<<20)
	w := csv.NewWriter(buf)

	if err := w.Write(df.Names()); err != nil {
		return 0, err
	}

	cols := columns(df)
	record := make([]string, len(cols))
	rows := df.Nrow()
	for i := 0; i < rows; i++ {
		if err := cancelled(ctx, i); err != nil {
			return i, err
		}
		for j, col := range cols {
			record[j] = utils.FormatElement(col.Elem(i))
		}
		if err := w.Write(record); err != nil {
			return i, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return rows, err
	}
	return rows, buf.Flush()
}

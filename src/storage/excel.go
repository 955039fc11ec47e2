// excel.go
package storage

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// ExcelSink writes the table to a single worksheet with the excelize stream
// writer.
type ExcelSink struct {
	Path  string
	Sheet string // defaults to "flights"
}

func (s *ExcelSink) Name() string { return "xlsx" }

func (s *ExcelSink) Write(ctx context.Context, df dataframe.DataFrame) (int, error) {
	// one row is taken by the header
	if df.Nrow() > excelize.TotalRows-1 {
		return 0, fmt.Errorf("%w: %d rows, xlsx holds %d", ErrTooManyRows, df.Nrow(), excelize.TotalRows-1)
	}

	sheet := s.Sheet
	if sheet == "" {
		sheet = "flights"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, fmt.Errorf("create stream writer: %w", err)
	}

	names := df.Names()
	header := make([]interface{}, len(names))
	for i, name := range names {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	cols := columns(df)
	rows := df.Nrow()
	for i := 0; i < rows; i++ {
		if err := cancelled(ctx, i); err != nil {
			return 0, err
		}
		row := make([]interface{}, len(cols))
		for j, col := range cols {
			row[j] = cellValue(col.Elem(i))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return 0, fmt.Errorf("flush stream writer: %w", err)
	}
	if err := f.SaveAs(s.Path); err != nil {
		return 0, fmt.Errorf("保存文件失败: %w", err)
	}
	return rows, nil
}

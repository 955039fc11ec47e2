// reader.go
package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrSheetNotFound    = errors.New("sheet not found")
	ErrEmptySheet       = errors.New("sheet has no data rows")
	ErrUnknownEncoding  = errors.New("unknown encoding")
	ErrInvalidHeaderRow = errors.New("header row index is invalid")
)

// NaNValues are the raw cell values loaded as NA.
var NaNValues = []string{"", "NA", "NaN", "<nil>"}

// Options 读取选项
type Options struct {
	Encoding  string // utf-8 (default), latin1, windows-1252, gbk; CSV only
	SheetName string // XLSX only, first sheet when empty
	HeaderRow int    // XLSX only, 0-based index of the header row
}

// ReadTable loads a whole CSV or XLSX table with every column typed as string.
func ReadTable(filePath string, opts Options) (dataframe.DataFrame, error) {
	return ReadTyped(filePath, opts, nil)
}

// ReadTyped loads a table applying the given column types; columns missing
// from types are strings.
func ReadTyped(filePath string, opts Options, types map[string]series.Type) (dataframe.DataFrame, error) {
	loadOpts := []dataframe.LoadOption{
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NaNValues),
	}
	if types != nil {
		loadOpts = append(loadOpts, dataframe.WithTypes(types))
	}

	var df dataframe.DataFrame
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		records, err := readXLSXRecords(filePath, opts.SheetName, opts.HeaderRow)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		df = dataframe.LoadRecords(records, loadOpts...)
	} else {
		f, err := os.Open(filePath) //nolint:gosec // paths come from the config file
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("failed to open %s: %w", filePath, err)
		}
		defer f.Close()

		r, err := decodeReader(f, opts.Encoding)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		df = dataframe.ReadCSV(r, loadOpts...)
	}

	if err := df.Error(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to load %s: %w", filePath, err)
	}
	return df, nil
}

// decodeReader wraps r so that it yields UTF-8. A leading BOM is dropped.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	var enc encoding.Encoding
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "latin1", "iso-8859-1":
		enc = charmap.ISO8859_1
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "gbk":
		enc = simplifiedchinese.GBK
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// readXLSXRecords 读取工作表为记录，headerRow 之前的行忽略
func readXLSXRecords(filePath, sheetName string, headerRow int) ([][]string, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("xlsx open file %s: %w", filePath, err)
	}

	if len(xlFile.Sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrSheetNotFound, filePath)
	}
	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrSheetNotFound, sheetName, filePath)
		}
		sheet = s
	}

	return convertSheetToRecords(sheet, headerRow)
}

// convertSheetToRecords 将xlsx.Sheet转换为记录; short rows are padded with NA
func convertSheetToRecords(sheet *xlsx.Sheet, headerRow int) ([][]string, error) {
	if headerRow < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHeaderRow, headerRow)
	}
	if len(sheet.Rows) <= headerRow+1 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySheet, sheet.Name)
	}

	var headers []string
	for _, cell := range sheet.Rows[headerRow].Cells {
		headers = append(headers, strings.TrimSpace(cell.String()))
	}
	// trailing blank header cells are formatting noise
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: %s has an empty header row", ErrEmptySheet, sheet.Name)
	}

	records := make([][]string, 0, len(sheet.Rows)-headerRow)
	records = append(records, headers)
	for _, row := range sheet.Rows[headerRow+1:] {
		record := make([]string, len(headers))
		if row != nil {
			for i, cell := range row.Cells {
				if i < len(headers) {
					record[i] = cell.String()
				}
			}
		}
		if isBlank(record) {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 1 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySheet, sheet.Name)
	}
	return records, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

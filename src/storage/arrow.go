// arrow.go
package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ArrowSink writes the table as an Arrow IPC stream holding one record batch.
type ArrowSink struct {
	Path      string
	allocator memory.Allocator
}

func NewArrowSink(path string) *ArrowSink {
	return &ArrowSink{Path: path, allocator: memory.DefaultAllocator}
}

func (s *ArrowSink) Name() string { return "arrow" }

func (s *ArrowSink) Write(ctx context.Context, df dataframe.DataFrame) (int, error) {
	if s.allocator == nil {
		s.allocator = memory.DefaultAllocator
	}

	record, err := s.buildRecord(ctx, df)
	if err != nil {
		return 0, err
	}
	defer record.Release()

	f, err := os.Create(s.Path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", s.Path, err)
	}
	defer f.Close()

	writer := ipc.NewWriter(f, ipc.WithSchema(record.Schema()), ipc.WithAllocator(s.allocator))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return 0, fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to close writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", s.Path, err)
	}
	return int(record.NumRows()), nil
}

// Schema maps gota column types to nullable Arrow fields.
func Schema(df dataframe.DataFrame) *arrow.Schema {
	types := df.Types()
	fields := make([]arrow.Field, len(types))
	for i, name := range df.Names() {
		fields[i] = arrow.Field{Name: name, Type: arrowType(types[i]), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t series.Type) arrow.DataType {
	switch t {
	case series.Float:
		return arrow.PrimitiveTypes.Float64
	case series.Int:
		return arrow.PrimitiveTypes.Int64
	case series.Bool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func (s *ArrowSink) buildRecord(ctx context.Context, df dataframe.DataFrame) (arrow.Record, error) {
	b := array.NewRecordBuilder(s.allocator, Schema(df))
	defer b.Release()

	rows := df.Nrow()
	b.Reserve(rows)
	for j, col := range columns(df) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		field := b.Field(j)
		for i := 0; i < rows; i++ {
			v := cellValue(col.Elem(i))
			if v == nil {
				field.AppendNull()
				continue
			}
			switch fb := field.(type) {
			case *array.Float64Builder:
				fb.Append(v.(float64))
			case *array.Int64Builder:
				fb.Append(int64(v.(int)))
			case *array.BooleanBuilder:
				fb.Append(v.(bool))
			case *array.StringBuilder:
				fb.Append(v.(string))
			default:
				return nil, fmt.Errorf("unsupported arrow builder %T for column %s", field, col.Name)
			}
		}
	}

	return b.NewRecord(), nil
}

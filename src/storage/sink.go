// Package storage writes the cleaned flights table to its output formats.
package storage

import (
	"context"
	"errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var ErrTooManyRows = errors.New("table exceeds the row limit of the output format")

// checkEvery is how many rows a sink writes between context checks.
const checkEvery = 50000

// Sink 输出目标
type Sink interface {
	Name() string
	// Write stores df and returns the number of data rows written.
	Write(ctx context.Context, df dataframe.DataFrame) (int, error)
}

// columns returns every column of df in order; df.Col copies, so this is
// done once per write rather than once per cell.
func columns(df dataframe.DataFrame) []series.Series {
	names := df.Names()
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = df.Col(name)
	}
	return cols
}

// cellValue returns the Go value of an element, nil for NA.
func cellValue(el series.Element) interface{} {
	if el.IsNA() {
		return nil
	}
	switch el.Type() {
	case series.Float:
		return el.Float()
	case series.Int:
		n, err := el.Int()
		if err != nil {
			return nil
		}
		return n
	case series.Bool:
		b, err := el.Bool()
		if err != nil {
			return nil
		}
		return b
	default:
		return el.String()
	}
}

func cancelled(ctx context.Context, row int) error {
	if row%checkEvery != 0 {
		return nil
	}
	return ctx.Err()
}

// Package analysis computes the chart-ready summaries of the cleaned flights
// table.
package analysis

import (
	"fmt"
	"math"

	"FlightDelayAnalysis/src/processor"
	"FlightDelayAnalysis/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table gives units typed access to the columns of the cleaned table.
// Columns are read from the frame on every call; units share no state.
type Table struct {
	df    dataframe.DataFrame
	names map[string]string
}

// NewTable wraps df. names maps a default cleaned column name to the name
// used in df when the column mapping renames it.
func NewTable(df dataframe.DataFrame, names map[string]string) *Table {
	return &Table{df: df, names: names}
}

func (t *Table) DataFrame() dataframe.DataFrame { return t.df }

// Name resolves a default cleaned column name against the column mapping.
func (t *Table) Name(name string) string {
	if n, ok := t.names[name]; ok && n != "" {
		return n
	}
	return name
}

func (t *Table) col(name string) (series.Series, error) {
	name = t.Name(name)
	if !utils.HasColumn(t.df, name) {
		return series.Series{}, fmt.Errorf("%w: %s", processor.ErrMissingColumn, name)
	}
	return t.df.Col(name), nil
}

// Strings returns the column as strings with NA flags.
func (t *Table) Strings(name string) ([]string, []bool, error) {
	s, err := t.col(name)
	if err != nil {
		return nil, nil, err
	}
	vals, na := utils.Values(s)
	return vals, na, nil
}

// Floats returns the column as float64, NaN for NA or unparseable values.
func (t *Table) Floats(name string) ([]float64, error) {
	s, err := t.col(name)
	if err != nil {
		return nil, err
	}
	return s.Float(), nil
}

// Flags returns a bool column; NA counts as false.
func (t *Table) Flags(name string) ([]bool, error) {
	s, err := t.col(name)
	if err != nil {
		return nil, err
	}
	out := make([]bool, s.Len())
	for i := range out {
		el := s.Elem(i)
		if el.IsNA() {
			continue
		}
		if b, err := el.Bool(); err == nil {
			out[i] = b
		}
	}
	return out, nil
}

// AirlineLabels returns the airline name per row, falling back to the code
// when the name is NA. Rows where both are NA are flagged.
func (t *Table) AirlineLabels() ([]string, []bool, error) {
	codes, codeNA, err := t.Strings(processor.ColAirlineCode)
	if err != nil {
		return nil, nil, err
	}
	names, nameNA, err := t.Strings(processor.ColAirlineName)
	if err != nil {
		return nil, nil, err
	}

	labels := make([]string, len(codes))
	na := make([]bool, len(codes))
	for i := range codes {
		switch {
		case !nameNA[i]:
			labels[i] = names[i]
		case !codeNA[i]:
			labels[i] = codes[i]
		default:
			na[i] = true
		}
	}
	return labels, na, nil
}

func isNaN(f float64) bool { return math.IsNaN(f) }

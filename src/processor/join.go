// join.go
package processor

import (
	"errors"
	"fmt"

	"FlightDelayAnalysis/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var ErrMissingKey = errors.New("join key column not found")

// JoinSpec 描述一次左连接
type JoinSpec struct {
	Name     string   // used in logs and metrics
	LeftKey  string   // key column of the left table
	RightKey string   // key column of the lookup table
	Suffix   string   // appended to every attached column name
	Columns  []string // lookup columns to attach, all non-key columns when empty
	Dedupe   bool     // keep only the first lookup row per key
}

// JoinStats 连接统计
type JoinStats struct {
	Name          string
	LeftRows      int
	Rows          int
	Matched       int
	Unmatched     int // left rows whose key found no lookup row, NA keys included
	NAKeys        int
	DuplicateKeys int // lookup keys that appear more than once
}

// LeftJoin keeps every row of left in order and appends the lookup columns.
// Rows without a match get NA. A key listed several times in lookup yields
// one output row per lookup row unless spec.Dedupe is set.
func LeftJoin(left, lookup dataframe.DataFrame, spec JoinSpec) (dataframe.DataFrame, JoinStats, error) {
	stats := JoinStats{Name: spec.Name, LeftRows: left.Nrow()}

	if !utils.HasColumn(left, spec.LeftKey) {
		return left, stats, fmt.Errorf("%w: %s in left table of %s", ErrMissingKey, spec.LeftKey, spec.Name)
	}
	if !utils.HasColumn(lookup, spec.RightKey) {
		return left, stats, fmt.Errorf("%w: %s in lookup table of %s", ErrMissingKey, spec.RightKey, spec.Name)
	}

	columns := spec.Columns
	if len(columns) == 0 {
		for _, name := range lookup.Names() {
			if name != spec.RightKey {
				columns = append(columns, name)
			}
		}
	}
	for _, name := range columns {
		if !utils.HasColumn(lookup, name) {
			return left, stats, fmt.Errorf("%w: %s in lookup table of %s", ErrMissingColumn, name, spec.Name)
		}
	}

	// key -> lookup row indexes, in lookup order
	rightKeys, rightNA := utils.Values(lookup.Col(spec.RightKey))
	index := make(map[string][]int, len(rightKeys))
	seen := make(map[string]int, len(rightKeys))
	for j, key := range rightKeys {
		if rightNA[j] {
			continue
		}
		seen[key]++
		if seen[key] == 2 {
			stats.DuplicateKeys++
		}
		if spec.Dedupe && seen[key] > 1 {
			continue
		}
		index[key] = append(index[key], j)
	}

	leftKeys, leftNA := utils.Values(left.Col(spec.LeftKey))
	leftIdx := make([]int, 0, len(leftKeys))
	rightIdx := make([]int, 0, len(leftKeys))
	for i, key := range leftKeys {
		if leftNA[i] {
			stats.NAKeys++
			stats.Unmatched++
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, -1)
			continue
		}
		matches, ok := index[key]
		if !ok {
			stats.Unmatched++
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, -1)
			continue
		}
		stats.Matched++
		for _, j := range matches {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, j)
		}
	}

	out := left
	if len(leftIdx) != left.Nrow() {
		out = left.Subset(leftIdx)
		if out.Err != nil {
			return left, stats, fmt.Errorf("%s: expand rows: %w", spec.Name, out.Err)
		}
	}

	for _, name := range columns {
		col := lookup.Col(name)
		vals := make([]interface{}, len(rightIdx))
		for k, j := range rightIdx {
			if j < 0 {
				continue
			}
			if el := col.Elem(j); !el.IsNA() {
				vals[k] = el.Val()
			}
		}
		out = out.Mutate(utils.Nullable(vals, col.Type(), name+spec.Suffix))
		if out.Err != nil {
			return left, stats, fmt.Errorf("%s: attach %s: %w", spec.Name, name, out.Err)
		}
	}

	stats.Rows = out.Nrow()
	return out, stats, nil
}

// CastFloats casts the named columns of a lookup table to float; values that
// do not parse become NA.
func CastFloats(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	for _, col := range cols {
		s, err := column(df, col)
		if err != nil {
			return df, err
		}
		vals, na := utils.Values(s)
		out := make([]interface{}, len(vals))
		for i, v := range vals {
			if f, ok := parseNumber(v, na[i]); ok {
				out[i] = f
			}
		}
		if df, err = mutate(df, utils.Nullable(out, series.Float, col)); err != nil {
			return df, err
		}
	}
	return df, nil
}

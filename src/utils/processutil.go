package utils

import (
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// HasColumn 判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Values returns the raw string values of a column with NA elements reported
// separately, so "NaN" text never leaks into comparisons.
func Values(s series.Series) (vals []string, na []bool) {
	vals = make([]string, s.Len())
	na = make([]bool, s.Len())
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			na[i] = true
			continue
		}
		vals[i] = el.String()
	}
	return vals, na
}

// FormatElement renders an element for flat-file output: NA becomes the empty
// string and floats use the shortest representation that round-trips.
func FormatElement(el series.Element) string {
	if el.IsNA() {
		return ""
	}
	if el.Type() == series.Float {
		return strconv.FormatFloat(el.Float(), 'f', -1, 64)
	}
	return el.String()
}

// Nullable builds a series from values where nil entries become NA.
func Nullable(values []interface{}, t series.Type, name string) series.Series {
	return series.New(values, t, name)
}

// clean.go
package processor

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"FlightDelayAnalysis/src/config"
	"FlightDelayAnalysis/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var ErrMissingColumn = errors.New("missing column")

// timeSentinel marks a time of day that could not be read as a number.
const timeSentinel = -1

// CleanStats counts values degraded during cleaning.
type CleanStats struct {
	FilledDelays int            // NA or unparseable delays set to 0
	NATimes      map[string]int // per time column, values that became NA
	NAFlags      int
	NAReasons    int
}

// Rename applies mapping (source name -> cleaned name). Columns not in the
// mapping pass through unchanged.
func Rename(df dataframe.DataFrame, mapping map[string]string) (dataframe.DataFrame, error) {
	sources := make([]string, 0, len(mapping))
	for src := range mapping {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		if !utils.HasColumn(df, src) {
			return df, fmt.Errorf("%w: %s", ErrMissingColumn, src)
		}
	}
	for _, src := range sources {
		if dst := mapping[src]; dst != src {
			df = df.Rename(dst, src)
		}
	}
	if df.Err != nil {
		return df, fmt.Errorf("rename columns: %w", df.Err)
	}
	return df, nil
}

// Clean renames the flights table and normalizes its delays, flags,
// cancellation reasons, times of day and numeric columns.
func Clean(df dataframe.DataFrame, dcfg *config.DataConfig) (dataframe.DataFrame, CleanStats, error) {
	stats := CleanStats{NATimes: make(map[string]int)}

	df, err := Rename(df, dcfg.Flights)
	if err != nil {
		return df, stats, err
	}

	for _, col := range dcfg.DelayColumns {
		var filled int
		if df, filled, err = FillDelays(df, col); err != nil {
			return df, stats, err
		}
		stats.FilledDelays += filled
	}

	for _, col := range dcfg.FlagColumns {
		var na int
		if df, na, err = CastFlags(df, col); err != nil {
			return df, stats, err
		}
		stats.NAFlags += na
	}

	if reason := dcfg.FlightColumn("CANCELLATION_REASON"); reason != "" {
		if df, stats.NAReasons, err = NormalizeReason(df, reason, dcfg.CancellationSentinel); err != nil {
			return df, stats, err
		}
	}

	for _, col := range dcfg.TimeColumns {
		var na int
		if df, na, err = ParseTimes(df, col); err != nil {
			return df, stats, err
		}
		stats.NATimes[col] = na
	}

	for _, col := range IntColumns(dcfg) {
		if df, err = CastInts(df, col); err != nil {
			return df, stats, err
		}
	}
	if df, err = CastFloats(df, FloatColumns(dcfg)...); err != nil {
		return df, stats, err
	}

	return df, stats, nil
}

func column(df dataframe.DataFrame, name string) (series.Series, error) {
	if !utils.HasColumn(df, name) {
		return series.Series{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return df.Col(name), nil
}

func mutate(df dataframe.DataFrame, s series.Series) (dataframe.DataFrame, error) {
	df = df.Mutate(s)
	if df.Err != nil {
		return df, fmt.Errorf("replace column %s: %w", s.Name, df.Err)
	}
	return df, nil
}

// FillDelays casts a delay column to float, replacing NA and unparseable
// values with 0. It returns how many values were replaced.
func FillDelays(df dataframe.DataFrame, col string) (dataframe.DataFrame, int, error) {
	s, err := column(df, col)
	if err != nil {
		return df, 0, err
	}

	vals, na := utils.Values(s)
	out := make([]float64, len(vals))
	filled := 0
	for i, v := range vals {
		f, ok := parseNumber(v, na[i])
		if !ok {
			filled++
			continue
		}
		out[i] = f
	}

	df, err = mutate(df, series.New(out, series.Float, col))
	return df, filled, err
}

// CastFlags casts a 0/1 flag column to bool; other values become NA.
func CastFlags(df dataframe.DataFrame, col string) (dataframe.DataFrame, int, error) {
	s, err := column(df, col)
	if err != nil {
		return df, 0, err
	}

	vals, na := utils.Values(s)
	out := make([]interface{}, len(vals))
	missing := 0
	for i, v := range vals {
		b, ok := parseFlag(v, na[i])
		if !ok {
			missing++
			continue
		}
		out[i] = b
	}

	df, err = mutate(df, utils.Nullable(out, series.Bool, col))
	return df, missing, err
}

// NormalizeReason turns sentinel cancellation reasons ("null", blank) into NA.
func NormalizeReason(df dataframe.DataFrame, col string, sentinels []string) (dataframe.DataFrame, int, error) {
	s, err := column(df, col)
	if err != nil {
		return df, 0, err
	}

	vals, na := utils.Values(s)
	out := make([]interface{}, len(vals))
	missing := 0
	for i, v := range vals {
		v = strings.TrimSpace(v)
		if na[i] || isSentinel(v, sentinels) {
			missing++
			continue
		}
		out[i] = v
	}

	df, err = mutate(df, utils.Nullable(out, series.String, col))
	return df, missing, err
}

// ParseTimes converts an HHMM column into "HH:MM" strings.
func ParseTimes(df dataframe.DataFrame, col string) (dataframe.DataFrame, int, error) {
	s, err := column(df, col)
	if err != nil {
		return df, 0, err
	}

	vals, na := utils.Values(s)
	out := make([]interface{}, len(vals))
	missing := 0
	for i, v := range vals {
		t, ok := ParseTimeOfDay(v, na[i])
		if !ok {
			missing++
			continue
		}
		out[i] = t
	}

	df, err = mutate(df, utils.Nullable(out, series.String, col))
	return df, missing, err
}

// CastInts casts a column to int keeping NA; unparseable values become NA.
func CastInts(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	s, err := column(df, col)
	if err != nil {
		return df, err
	}

	vals, na := utils.Values(s)
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		if n, ok := parseInt(v, na[i]); ok {
			out[i] = n
		}
	}

	return mutate(df, utils.Nullable(out, series.Int, col))
}

// ParseTimeOfDay parses a four digit HHMM value. Missing or unreadable
// values are first mapped to -1; -1 and 0 then mean "no time". Short values
// are zero padded ("5" is 00:05). Hours past 23 or minutes past 59 are
// rejected rather than raised.
func ParseTimeOfDay(raw string, na bool) (string, bool) {
	v, ok := parseInt(raw, na)
	if !ok {
		v = timeSentinel
	}
	if v == timeSentinel || v == 0 {
		return "", false
	}
	if v < 0 || v > 9999 {
		return "", false
	}

	digits := fmt.Sprintf("%04d", v)
	hh, _ := strconv.Atoi(digits[:2])
	mm, _ := strconv.Atoi(digits[2:])
	if hh > 23 || mm > 59 {
		return "", false
	}
	return digits[:2] + ":" + digits[2:], true
}

func parseNumber(v string, na bool) (float64, bool) {
	if na {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseInt accepts "1005" as well as float renderings such as "1005.0".
func parseInt(v string, na bool) (int, bool) {
	if na {
		return 0, false
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, ok := parseNumber(v, false)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func parseFlag(v string, na bool) (bool, bool) {
	if na {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "1.0", "true", "t":
		return true, true
	case "0", "0.0", "false", "f":
		return false, true
	}
	return false, false
}

func isSentinel(v string, sentinels []string) bool {
	if v == "" {
		return true
	}
	for _, s := range sentinels {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// delays.go
package analysis

import (
	"fmt"
	"math"
	"sort"

	"FlightDelayAnalysis/src/processor"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// cancellationReasons maps the dataset's reason codes to readable labels.
var cancellationReasons = map[string]string{
	"A": "Airline",
	"B": "Weather",
	"C": "National Air System",
	"D": "Security",
}

var delayCauseLabels = map[string]string{
	processor.ColAirSystemDelay:    "Air system",
	processor.ColSecurityDelay:     "Security",
	processor.ColAirlineDelay:      "Airline",
	processor.ColLateAircraftDelay: "Late aircraft",
	processor.ColWeatherDelay:      "Weather",
}

func delayUnits() []Unit {
	return []Unit{
		{Section: "delays", ID: "arrival_delay_histogram", Run: arrivalDelayHistogram},
		{Section: "delays", ID: "delay_reasons", Run: delayReasons},
		{Section: "delays", ID: "cancellation_reasons", Run: cancellationReasonsPie},
		{Section: "delays", ID: "diverted_by_airline", Run: divertedByAirline},
	}
}

// binEdges returns the bin dividers of [lo, hi); the last bin is narrower
// when the range is not a multiple of width.
func binEdges(lo, hi, width float64) []float64 {
	n := int(math.Ceil((hi - lo) / width))
	edges := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		edges = append(edges, lo+float64(i)*width)
	}
	return append(edges, hi)
}

func arrivalDelayHistogram(t *Table, opts Options) (Result, error) {
	if opts.BinWidth <= 0 || opts.HistogramMax <= opts.HistogramMin {
		return Result{}, fmt.Errorf("histogram range [%v, %v) with bin width %v", opts.HistogramMin, opts.HistogramMax, opts.BinWidth)
	}
	delays, err := t.Floats(processor.ColArrivalDelay)
	if err != nil {
		return Result{}, err
	}

	inRange := make([]float64, 0, len(delays))
	var below, above int
	for _, d := range delays {
		switch {
		case isNaN(d):
		case d < opts.HistogramMin:
			below++
		case d >= opts.HistogramMax:
			above++
		default:
			inRange = append(inRange, d)
		}
	}
	sort.Float64s(inRange)

	edges := binEdges(opts.HistogramMin, opts.HistogramMax, opts.BinWidth)
	counts := stat.Histogram(nil, edges, inRange, nil)

	labels := make([]string, len(counts))
	for i := range counts {
		labels[i] = fmt.Sprintf("[%g, %g)", edges[i], edges[i+1])
	}
	return Result{
		Title:  "Arrival delay distribution",
		Kind:   KindHistogram,
		XLabel: "Arrival delay (minutes)",
		YLabel: "Flights",
		Labels: labels,
		Values: counts,
		Notes: []string{
			fmt.Sprintf("%d flights below %g and %d at or above %g are not shown", below, opts.HistogramMin, above, opts.HistogramMax),
		},
	}, nil
}

func delayReasons(t *Table, _ Options) (Result, error) {
	sums := make([]float64, len(processor.DelayCauses))
	var total float64
	for i, col := range processor.DelayCauses {
		vals, err := t.Floats(col)
		if err != nil {
			return Result{}, err
		}
		sums[i] = floats.Sum(nonNaN(vals))
		total += sums[i]
	}

	res := Result{Title: "Delay minutes by cause", Kind: KindPie, XLabel: "Cause", YLabel: "Share %"}
	for i, col := range processor.DelayCauses {
		res.Labels = append(res.Labels, delayCauseLabels[col])
		res.Values = append(res.Values, percent(sums[i], total))
	}
	if total == 0 {
		res.Notes = append(res.Notes, "No cause-attributed delay minutes recorded")
	} else {
		res.Notes = append(res.Notes, fmt.Sprintf("%.0f delay minutes attributed to a cause", total))
	}
	return res, nil
}

// cancelledRows keeps the rows whose cancelled flag is true.
func cancelledRows(df dataframe.DataFrame, col string) dataframe.DataFrame {
	return df.Filter(
		dataframe.F{
			Colname:    col,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool {
				if el.IsNA() {
					return false
				}
				b, err := el.Bool()
				return err == nil && b
			},
		},
	)
}

func cancellationReasonsPie(t *Table, _ Options) (Result, error) {
	if _, err := t.Flags(processor.ColCancelled); err != nil {
		return Result{}, err
	}
	if _, _, err := t.Strings(processor.ColCancellationReason); err != nil {
		return Result{}, err
	}

	cancelled := cancelledRows(t.DataFrame(), t.Name(processor.ColCancelled))
	if cancelled.Err != nil {
		return Result{}, fmt.Errorf("filter cancelled flights: %w", cancelled.Err)
	}

	counts := make(map[string]float64)
	if cancelled.Nrow() > 0 {
		reasons := cancelled.Col(t.Name(processor.ColCancellationReason))
		for i := 0; i < reasons.Len(); i++ {
			el := reasons.Elem(i)
			if el.IsNA() {
				continue
			}
			counts[el.String()]++
		}
	}

	codes := make([]string, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	// known codes first in A..D order, then anything else
	sort.Slice(codes, func(i, j int) bool {
		_, ki := cancellationReasons[codes[i]]
		_, kj := cancellationReasons[codes[j]]
		if ki != kj {
			return ki
		}
		return codes[i] < codes[j]
	})

	res := Result{Title: "Cancellation reasons", Kind: KindPie, XLabel: "Reason", YLabel: "Flights"}
	for _, c := range codes {
		label, ok := cancellationReasons[c]
		if !ok {
			label = c
		}
		res.Labels = append(res.Labels, label)
		res.Values = append(res.Values, counts[c])
	}
	res.Notes = append(res.Notes, fmt.Sprintf("%d cancelled flights", cancelled.Nrow()))
	return res, nil
}

func divertedByAirline(t *Table, _ Options) (Result, error) {
	labels, na, err := t.AirlineLabels()
	if err != nil {
		return Result{}, err
	}
	diverted, err := t.Flags(processor.ColDiverted)
	if err != nil {
		return Result{}, err
	}
	g := groupBy{}
	for i, l := range labels {
		if !na[i] {
			g.add(l, 0, diverted[i])
		}
	}
	hits := make(map[string]float64, len(g))
	for k, grp := range g {
		hits[k] = grp.hits
	}
	ls, vs := ranked(hits)
	return Result{
		Title:  "Diverted flights by airline",
		Kind:   KindBar,
		XLabel: "Airline",
		YLabel: "Flights",
		Labels: ls,
		Values: vs,
	}, nil
}

func nonNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !isNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

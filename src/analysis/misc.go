// misc.go
package analysis

import (
	"fmt"

	"FlightDelayAnalysis/src/processor"

	"gonum.org/v1/gonum/stat"
)

func miscUnits() []Unit {
	return []Unit{
		{Section: "misc", ID: "distance_vs_arrival_delay", Run: scatterOf(processor.ColDistance, processor.ColArrivalDelay, "Distance vs arrival delay", "Distance (miles)", "Arrival delay (minutes)")},
		{Section: "misc", ID: "departure_vs_arrival_delay", Run: scatterOf(processor.ColDepartureDelay, processor.ColArrivalDelay, "Departure vs arrival delay", "Departure delay (minutes)", "Arrival delay (minutes)")},
		{Section: "misc", ID: "top_origins_by_taxi_out", Run: topOriginsByTaxiOut},
	}
}

// scatterOf plots y against x. Pairs with a missing side are dropped; the
// correlation uses every remaining pair while the plotted points are a
// deterministic stride sample capped at ScatterMaxPoints.
func scatterOf(xCol, yCol, title, xLabel, yLabel string) func(*Table, Options) (Result, error) {
	return func(t *Table, opts Options) (Result, error) {
		xs, err := t.Floats(xCol)
		if err != nil {
			return Result{}, err
		}
		ys, err := t.Floats(yCol)
		if err != nil {
			return Result{}, err
		}

		px := make([]float64, 0, len(xs))
		py := make([]float64, 0, len(ys))
		for i := range xs {
			if isNaN(xs[i]) || isNaN(ys[i]) {
				continue
			}
			px = append(px, xs[i])
			py = append(py, ys[i])
		}

		res := Result{Title: title, Kind: KindScatter, XLabel: xLabel, YLabel: yLabel}
		res.Points = sample(px, py, opts.ScatterMaxPoints)

		if r, ok := correlation(px, py); ok {
			res.Notes = append(res.Notes, fmt.Sprintf("Pearson correlation r = %.3f over %d flights", r, len(px)))
		} else {
			res.Notes = append(res.Notes, fmt.Sprintf("Correlation undefined over %d flights", len(px)))
		}
		if len(res.Points) < len(px) {
			res.Notes = append(res.Notes, fmt.Sprintf("Showing %d of %d points", len(res.Points), len(px)))
		}
		return res, nil
	}
}

// sample takes every k-th pair so that at most limit points remain.
func sample(xs, ys []float64, limit int) []Point {
	stride := 1
	if limit > 0 && len(xs) > limit {
		stride = (len(xs) + limit - 1) / limit
	}
	points := make([]Point, 0, len(xs)/stride+1)
	for i := 0; i < len(xs); i += stride {
		points = append(points, Point{X: xs[i], Y: ys[i]})
	}
	return points
}

// correlation is undefined for fewer than two pairs or a constant side.
func correlation(xs, ys []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	r := stat.Correlation(xs, ys, nil)
	if isNaN(r) {
		return 0, false
	}
	return r, true
}

func topOriginsByTaxiOut(t *Table, opts Options) (Result, error) {
	origins, na, err := t.Strings(processor.ColOriginAirport)
	if err != nil {
		return Result{}, err
	}
	taxi, err := t.Floats(processor.ColTaxiOut)
	if err != nil {
		return Result{}, err
	}
	g := groupBy{}
	for i, o := range origins {
		if !na[i] {
			g.add(o, taxi[i], false)
		}
	}
	ls, vs := ranked(g.means())
	ls, vs = top(ls, vs, opts.TopN)
	return Result{
		Title:  fmt.Sprintf("Origin airports by mean taxi-out time (top %d)", opts.TopN),
		Kind:   KindBar,
		XLabel: "Airport",
		YLabel: "Minutes",
		Labels: ls,
		Values: vs,
	}, nil
}

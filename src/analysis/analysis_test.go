package analysis

import (
	"context"
	"io"
	"math"
	"testing"

	"FlightDelayAnalysis/src/metrics"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanedFixture has five flights, three of them on time.
func cleanedFixture() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"AA", "AA", "UA", "UA", "DL"}, series.String, "airline_code"),
		series.New([]interface{}{"American Airlines Inc.", "American Airlines Inc.", "United Air Lines Inc.", "United Air Lines Inc.", nil}, series.String, "airline_name"),
		series.New([]string{"LAX", "LAX", "SFO", "ORD", "LAX"}, series.String, "origin_airport"),
		series.New([]string{"JFK", "ORD", "LAX", "LAX", "ATL"}, series.String, "destination_airport"),
		series.New([]string{"CA", "CA", "CA", "IL", "CA"}, series.String, "state_origin"),
		series.New([]float64{33.9, 33.9, 37.6, 41.9, 33.9}, series.Float, "latitude_origin"),
		series.New([]float64{-118.4, -118.4, -122.4, -87.9, -118.4}, series.Float, "longitude_origin"),
		series.New([]int{1, 1, 2, 2, 3}, series.Int, "month"),
		series.New([]int{1, 2, 3, 7, 7}, series.Int, "day_of_week"),
		series.New([]interface{}{"06:00", "06:30", "14:00", "14:15", nil}, series.String, "scheduled_departure"),
		series.New([]float64{-5, 20, 0, 45, -2}, series.Float, "departure_delay"),
		series.New([]float64{-10, 15, 0, 60, -1}, series.Float, "arrival_delay"),
		series.New([]float64{15, 25, 10, 30, 20}, series.Float, "taxi_out"),
		series.New([]float64{2475, 1744, 337, 1744, 1947}, series.Float, "distance"),
		series.New([]bool{false, false, false, true, false}, series.Bool, "diverted"),
		series.New([]bool{false, false, false, false, true}, series.Bool, "cancelled"),
		series.New([]interface{}{nil, nil, nil, nil, "B"}, series.String, "cancellation_reason"),
		series.New([]float64{0, 0, 0, 0, 0}, series.Float, "air_system_delay"),
		series.New([]float64{0, 0, 0, 0, 0}, series.Float, "security_delay"),
		series.New([]float64{0, 15, 0, 0, 0}, series.Float, "airline_delay"),
		series.New([]float64{0, 0, 0, 30, 0}, series.Float, "late_aircraft_delay"),
		series.New([]float64{0, 0, 0, 30, 0}, series.Float, "weather_delay"),
	)
}

func testOptions() Options {
	return Options{
		TopN:             2,
		HistogramMin:     -60,
		HistogramMax:     180,
		BinWidth:         10,
		ScatterMaxPoints: 2000,
		OriginSuffix:     "_origin",
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func runUnit(t *testing.T, id string, df dataframe.DataFrame, opts Options) Result {
	t.Helper()
	for _, u := range Units() {
		if u.ID == id {
			res, err := u.Run(NewTable(df, opts.Columns), opts)
			require.NoError(t, err)
			return res
		}
	}
	t.Fatalf("unit %s not found", id)
	return Result{}
}

func TestOnTimePercent(t *testing.T) {
	assert.InDelta(t, 60.0, OnTimePercent([]float64{-10, 15, 0, 60, -1}), 1e-9)
	assert.InDelta(t, 0.0, OnTimePercent(nil), 0)
	assert.InDelta(t, 50.0, OnTimePercent([]float64{-3, math.NaN()}), 1e-9, "NA arrival delay stays in the total")
}

func TestOnTimeByAirline(t *testing.T) {
	res := runUnit(t, "on_time_by_airline", cleanedFixture(), testOptions())

	assert.Equal(t, []string{"DL", "American Airlines Inc.", "United Air Lines Inc."}, res.Labels)
	assert.Equal(t, []float64{100, 50, 50}, res.Values)
	for _, v := range res.Values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "60.00%")
	assert.Contains(t, res.Notes[0], "5 flights")
}

func TestAirlineSection(t *testing.T) {
	df := cleanedFixture()

	counts := runUnit(t, "flights_per_airline", df, testOptions())
	assert.Equal(t, []string{"American Airlines Inc.", "United Air Lines Inc.", "DL"}, counts.Labels)
	assert.Equal(t, []float64{2, 2, 1}, counts.Values)

	arrival := runUnit(t, "mean_arrival_delay_by_airline", df, testOptions())
	assert.Equal(t, []string{"United Air Lines Inc.", "American Airlines Inc.", "DL"}, arrival.Labels)
	assert.Equal(t, []float64{30, 2.5, -1}, arrival.Values)

	cancelled := runUnit(t, "cancellation_rate_by_airline", df, testOptions())
	assert.Equal(t, "DL", cancelled.Labels[0])
	assert.InDelta(t, 100, cancelled.Values[0], 0)
}

func TestAirportSection(t *testing.T) {
	df := cleanedFixture()

	origins := runUnit(t, "top_origin_airports", df, testOptions())
	assert.Equal(t, []string{"LAX", "ORD"}, origins.Labels)
	assert.Equal(t, []float64{3, 1}, origins.Values)

	routes := runUnit(t, "top_routes", df, testOptions())
	assert.Equal(t, []string{"LAX-ATL", "LAX-JFK"}, routes.Labels)

	states := runUnit(t, "top_origin_states_by_departure_delay", df, testOptions())
	assert.Equal(t, []string{"IL", "CA"}, states.Labels)
	assert.Equal(t, []float64{45, 3.25}, states.Values)

	locations := runUnit(t, "origin_airport_locations", df, testOptions())
	assert.Equal(t, KindScatter, locations.Kind)
	assert.Equal(t, []string{"LAX", "ORD", "SFO"}, locations.Labels)
	assert.Equal(t, Point{X: -118.4, Y: 33.9}, locations.Points[0])
}

func TestSeasonalitySection(t *testing.T) {
	df := cleanedFixture()

	months := runUnit(t, "flights_by_month", df, testOptions())
	assert.Equal(t, []string{"Jan", "Feb", "Mar"}, months.Labels)
	assert.Equal(t, []float64{2, 2, 1}, months.Values)

	delays := runUnit(t, "mean_arrival_delay_by_month", df, testOptions())
	assert.Equal(t, []float64{2.5, 30, -1}, delays.Values)

	weekdays := runUnit(t, "flights_by_weekday", df, testOptions())
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, weekdays.Labels)
	assert.Equal(t, []float64{1, 1, 1, 0, 0, 0, 2}, weekdays.Values)

	hours := runUnit(t, "mean_departure_delay_by_hour", df, testOptions())
	assert.Equal(t, []string{"06", "14"}, hours.Labels)
	assert.Equal(t, []float64{7.5, 22.5}, hours.Values)
}

func TestDelaySection(t *testing.T) {
	df := cleanedFixture()

	hist := runUnit(t, "arrival_delay_histogram", df, testOptions())
	require.Len(t, hist.Values, 24)
	assert.Equal(t, "[-60, -50)", hist.Labels[0])
	assert.Equal(t, "[170, 180)", hist.Labels[23])
	assert.InDelta(t, 2, hist.Values[5], 0)
	assert.InDelta(t, 1, hist.Values[6], 0)
	assert.InDelta(t, 1, hist.Values[7], 0)
	assert.InDelta(t, 1, hist.Values[12], 0)

	reasons := runUnit(t, "delay_reasons", df, testOptions())
	assert.Equal(t, []string{"Air system", "Security", "Airline", "Late aircraft", "Weather"}, reasons.Labels)
	assert.Equal(t, []float64{0, 0, 20, 40, 40}, reasons.Values)

	cancel := runUnit(t, "cancellation_reasons", df, testOptions())
	assert.Equal(t, []string{"Weather"}, cancel.Labels)
	assert.Equal(t, []float64{1}, cancel.Values)

	diverted := runUnit(t, "diverted_by_airline", df, testOptions())
	assert.Equal(t, "United Air Lines Inc.", diverted.Labels[0])
	assert.Equal(t, []float64{1, 0, 0}, diverted.Values)
}

func TestHistogram_UnevenLastBin(t *testing.T) {
	assert.Equal(t, []float64{0, 25, 50, 60}, binEdges(0, 60, 25))
}

func TestMiscSection(t *testing.T) {
	df := cleanedFixture()

	opts := testOptions()
	opts.ScatterMaxPoints = 2
	scatter := runUnit(t, "distance_vs_arrival_delay", df, opts)
	assert.Len(t, scatter.Points, 2)
	assert.Equal(t, Point{X: 2475, Y: -10}, scatter.Points[0])
	assert.Equal(t, Point{X: 1744, Y: 60}, scatter.Points[1])
	assert.Contains(t, scatter.Notes[0], "Pearson correlation")
	assert.Contains(t, scatter.Notes[1], "Showing 2 of 5 points")

	dep := runUnit(t, "departure_vs_arrival_delay", df, testOptions())
	assert.Len(t, dep.Points, 5)

	taxi := runUnit(t, "top_origins_by_taxi_out", df, testOptions())
	assert.Equal(t, []string{"ORD", "LAX"}, taxi.Labels)
	assert.Equal(t, []float64{30, 20}, taxi.Values)
}

func TestCorrelation_Undefined(t *testing.T) {
	_, ok := correlation([]float64{1}, []float64{2})
	assert.False(t, ok)
	_, ok = correlation([]float64{1, 1, 1}, []float64{2, 3, 4})
	assert.False(t, ok)
}

func TestReport_RunAllSections(t *testing.T) {
	m := metrics.New()
	results, err := NewReport(testOptions(), quietLogger(), m).Run(context.Background(), cleanedFixture(), nil)
	require.NoError(t, err)

	assert.Len(t, results, len(Units()))
	assert.Equal(t, "airline", results[0].Section)
	assert.Equal(t, "flights_per_airline", results[0].ID)
	assert.Equal(t, "misc", results[len(results)-1].Section)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Results.WithLabelValues("pie")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.Results.WithLabelValues("scatter")), 0)
}

func TestReport_SectionsKeepReportOrder(t *testing.T) {
	results, err := NewReport(testOptions(), quietLogger(), nil).Run(context.Background(), cleanedFixture(), []string{"misc", "airline"})
	require.NoError(t, err)
	require.Len(t, results, 8)
	assert.Equal(t, "airline", results[0].Section)
	assert.Equal(t, "misc", results[7].Section)
}

func TestReport_UnknownSection(t *testing.T) {
	_, err := NewReport(testOptions(), quietLogger(), nil).Run(context.Background(), cleanedFixture(), []string{"weather"})
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestReport_EmptyTable(t *testing.T) {
	empty := cleanedFixture().Subset([]int{})
	require.NoError(t, empty.Err)

	results, err := NewReport(testOptions(), quietLogger(), nil).Run(context.Background(), empty, []string{"airline"})
	require.NoError(t, err)
	for _, r := range results {
		if r.ID == "on_time_by_airline" {
			assert.Contains(t, r.Notes[0], "0.00% of 0 flights")
		}
	}
}

func TestReport_MissingColumnNamesUnit(t *testing.T) {
	df := cleanedFixture().Drop("taxi_out")
	_, err := NewReport(testOptions(), quietLogger(), nil).Run(context.Background(), df, []string{"misc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "misc/top_origins_by_taxi_out")
}

func TestReport_ResolvesRenamedColumns(t *testing.T) {
	df := cleanedFixture().
		Rename("arr_delay", "arrival_delay").
		Rename("st_origin", "state_origin").
		Rename("is_cancelled", "cancelled")
	require.NoError(t, df.Err)

	opts := testOptions()
	opts.Columns = map[string]string{
		"arrival_delay": "arr_delay",
		"state_origin":  "st_origin",
		"cancelled":     "is_cancelled",
	}

	renamed, err := NewReport(opts, quietLogger(), nil).Run(context.Background(), df, nil)
	require.NoError(t, err)
	plain, err := NewReport(testOptions(), quietLogger(), nil).Run(context.Background(), cleanedFixture(), nil)
	require.NoError(t, err)
	assert.Equal(t, plain, renamed)

	// without the mapping the renamed column is reported missing
	_, err = NewReport(testOptions(), quietLogger(), nil).Run(context.Background(), df, []string{"airline"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arrival_delay")
}

func TestReport_ReusedAcrossTables(t *testing.T) {
	report := NewReport(testOptions(), quietLogger(), nil)

	first, err := report.Run(context.Background(), cleanedFixture(), []string{"airline"})
	require.NoError(t, err)

	df := cleanedFixture().Mutate(series.New([]float64{5, 15, 10, 60, 1}, series.Float, "arrival_delay"))
	require.NoError(t, df.Err)
	second, err := report.Run(context.Background(), df, []string{"airline"})
	require.NoError(t, err)

	byID := func(results []Result, id string) Result {
		for _, r := range results {
			if r.ID == id {
				return r
			}
		}
		t.Fatalf("result %s missing", id)
		return Result{}
	}
	assert.Contains(t, byID(first, "on_time_by_airline").Notes[0], "60.00%")
	assert.Contains(t, byID(second, "on_time_by_airline").Notes[0], "rate: 0.00%")
}

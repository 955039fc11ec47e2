// seasonality.go
package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"FlightDelayAnalysis/src/processor"
)

// dataset day_of_week runs 1 = Monday .. 7 = Sunday
var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func seasonalityUnits() []Unit {
	return []Unit{
		{Section: "seasonality", ID: "flights_by_month", Run: flightsByMonth},
		{Section: "seasonality", ID: "mean_arrival_delay_by_month", Run: meanArrivalDelayByMonth},
		{Section: "seasonality", ID: "flights_by_weekday", Run: flightsByWeekday},
		{Section: "seasonality", ID: "mean_departure_delay_by_hour", Run: meanDepartureDelayByHour},
	}
}

// monthGroups groups rows by month (1..12) with value per row.
func monthGroups(t *Table, valueCol string) (map[int]*group, error) {
	months, err := t.Floats(processor.ColMonth)
	if err != nil {
		return nil, err
	}
	var values []float64
	if valueCol != "" {
		if values, err = t.Floats(valueCol); err != nil {
			return nil, err
		}
	}

	groups := make(map[int]*group)
	for i, m := range months {
		if isNaN(m) || m < 1 || m > 12 {
			continue
		}
		key := int(m)
		grp, ok := groups[key]
		if !ok {
			grp = &group{}
			groups[key] = grp
		}
		grp.count++
		if values != nil && !isNaN(values[i]) {
			grp.sum += values[i]
			grp.n++
		}
	}
	return groups, nil
}

func flightsByMonth(t *Table, _ Options) (Result, error) {
	groups, err := monthGroups(t, "")
	if err != nil {
		return Result{}, err
	}
	res := Result{Title: "Flights per month", Kind: KindLine, XLabel: "Month", YLabel: "Flights"}
	for m := 1; m <= 12; m++ {
		if grp, ok := groups[m]; ok {
			res.Labels = append(res.Labels, time.Month(m).String()[:3])
			res.Values = append(res.Values, grp.count)
		}
	}
	return res, nil
}

func meanArrivalDelayByMonth(t *Table, _ Options) (Result, error) {
	groups, err := monthGroups(t, processor.ColArrivalDelay)
	if err != nil {
		return Result{}, err
	}
	res := Result{Title: "Mean arrival delay per month", Kind: KindLine, XLabel: "Month", YLabel: "Minutes"}
	for m := 1; m <= 12; m++ {
		if grp, ok := groups[m]; ok && grp.n > 0 {
			res.Labels = append(res.Labels, time.Month(m).String()[:3])
			res.Values = append(res.Values, grp.sum/grp.n)
		}
	}
	return res, nil
}

func flightsByWeekday(t *Table, _ Options) (Result, error) {
	days, err := t.Floats(processor.ColDayOfWeek)
	if err != nil {
		return Result{}, err
	}
	counts := make([]float64, len(weekdays))
	for _, d := range days {
		if isNaN(d) || d < 1 || d > 7 {
			continue
		}
		counts[int(d)-1]++
	}
	return Result{
		Title:  "Flights per day of week",
		Kind:   KindBar,
		XLabel: "Day",
		YLabel: "Flights",
		Labels: append([]string(nil), weekdays...),
		Values: counts,
	}, nil
}

func meanDepartureDelayByHour(t *Table, _ Options) (Result, error) {
	times, na, err := t.Strings(processor.ColScheduledDeparture)
	if err != nil {
		return Result{}, err
	}
	delays, err := t.Floats(processor.ColDepartureDelay)
	if err != nil {
		return Result{}, err
	}

	var hours [24]group
	for i, v := range times {
		if na[i] {
			continue
		}
		h, ok := hourOf(v)
		if !ok {
			continue
		}
		hours[h].count++
		if !isNaN(delays[i]) {
			hours[h].sum += delays[i]
			hours[h].n++
		}
	}

	res := Result{Title: "Mean departure delay by scheduled hour", Kind: KindLine, XLabel: "Hour", YLabel: "Minutes"}
	for h, grp := range hours {
		if grp.n == 0 {
			continue
		}
		res.Labels = append(res.Labels, fmt.Sprintf("%02d", h))
		res.Values = append(res.Values, grp.sum/grp.n)
	}
	return res, nil
}

// hourOf reads the hour of an "HH:MM" value.
func hourOf(v string) (int, bool) {
	hh, _, ok := strings.Cut(v, ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

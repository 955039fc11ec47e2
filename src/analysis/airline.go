// airline.go
package analysis

import (
	"fmt"

	"FlightDelayAnalysis/src/processor"
)

func airlineUnits() []Unit {
	return []Unit{
		{Section: "airline", ID: "flights_per_airline", Run: flightsPerAirline},
		{Section: "airline", ID: "mean_arrival_delay_by_airline", Run: meanDelayByAirline(processor.ColArrivalDelay, "Mean arrival delay by airline")},
		{Section: "airline", ID: "mean_departure_delay_by_airline", Run: meanDelayByAirline(processor.ColDepartureDelay, "Mean departure delay by airline")},
		{Section: "airline", ID: "on_time_by_airline", Run: onTimeByAirline},
		{Section: "airline", ID: "cancellation_rate_by_airline", Run: cancellationRateByAirline},
	}
}

func flightsPerAirline(t *Table, _ Options) (Result, error) {
	labels, na, err := t.AirlineLabels()
	if err != nil {
		return Result{}, err
	}
	g := groupBy{}
	for i, l := range labels {
		if !na[i] {
			g.add(l, 0, false)
		}
	}
	ls, vs := ranked(g.counts())
	return Result{
		Title:  "Flights per airline",
		Kind:   KindBar,
		XLabel: "Airline",
		YLabel: "Flights",
		Labels: ls,
		Values: vs,
	}, nil
}

func meanDelayByAirline(col, title string) func(*Table, Options) (Result, error) {
	return func(t *Table, _ Options) (Result, error) {
		labels, na, err := t.AirlineLabels()
		if err != nil {
			return Result{}, err
		}
		delays, err := t.Floats(col)
		if err != nil {
			return Result{}, err
		}
		g := groupBy{}
		for i, l := range labels {
			if !na[i] {
				g.add(l, delays[i], false)
			}
		}
		ls, vs := ranked(g.means())
		return Result{
			Title:  title,
			Kind:   KindBar,
			XLabel: "Airline",
			YLabel: "Minutes",
			Labels: ls,
			Values: vs,
		}, nil
	}
}

// OnTime reports whether an arrival delay counts as on time. NA is not on time.
func OnTime(arrivalDelay float64) bool {
	return !isNaN(arrivalDelay) && arrivalDelay <= 0
}

// OnTimePercent returns the share of on-time flights in delays, 0 when empty.
func OnTimePercent(delays []float64) float64 {
	var onTime float64
	for _, d := range delays {
		if OnTime(d) {
			onTime++
		}
	}
	return percent(onTime, float64(len(delays)))
}

func onTimeByAirline(t *Table, _ Options) (Result, error) {
	labels, na, err := t.AirlineLabels()
	if err != nil {
		return Result{}, err
	}
	delays, err := t.Floats(processor.ColArrivalDelay)
	if err != nil {
		return Result{}, err
	}
	g := groupBy{}
	for i, l := range labels {
		if !na[i] {
			g.add(l, delays[i], OnTime(delays[i]))
		}
	}
	ls, vs := ranked(g.rates())
	return Result{
		Title:  "On-time arrivals by airline",
		Kind:   KindBar,
		XLabel: "Airline",
		YLabel: "On-time %",
		Labels: ls,
		Values: vs,
		Notes: []string{
			fmt.Sprintf("Overall on-time rate: %s of %d flights", formatRate(OnTimePercent(delays)), len(delays)),
		},
	}, nil
}

func cancellationRateByAirline(t *Table, _ Options) (Result, error) {
	labels, na, err := t.AirlineLabels()
	if err != nil {
		return Result{}, err
	}
	cancelled, err := t.Flags(processor.ColCancelled)
	if err != nil {
		return Result{}, err
	}
	g := groupBy{}
	var total float64
	for i, l := range labels {
		if na[i] {
			continue
		}
		g.add(l, 0, cancelled[i])
		if cancelled[i] {
			total++
		}
	}
	ls, vs := ranked(g.rates())
	return Result{
		Title:  "Cancellation rate by airline",
		Kind:   KindBar,
		XLabel: "Airline",
		YLabel: "Cancelled %",
		Labels: ls,
		Values: vs,
		Notes:  []string{fmt.Sprintf("%.0f flights cancelled", total)},
	}, nil
}

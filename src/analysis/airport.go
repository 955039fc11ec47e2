// airport.go
package analysis

import (
	"fmt"
	"sort"

	"FlightDelayAnalysis/src/processor"
)

func airportUnits() []Unit {
	return []Unit{
		{Section: "airport", ID: "top_origin_airports", Run: topAirports(processor.ColOriginAirport, "Busiest origin airports")},
		{Section: "airport", ID: "top_destination_airports", Run: topAirports(processor.ColDestinationAirport, "Busiest destination airports")},
		{Section: "airport", ID: "top_routes", Run: topRoutes},
		{Section: "airport", ID: "top_origin_states_by_departure_delay", Run: topStatesByDepartureDelay},
		{Section: "airport", ID: "origin_airport_locations", Run: originLocations},
	}
}

func topAirports(col, title string) func(*Table, Options) (Result, error) {
	return func(t *Table, opts Options) (Result, error) {
		codes, na, err := t.Strings(col)
		if err != nil {
			return Result{}, err
		}
		g := groupBy{}
		for i, c := range codes {
			if !na[i] {
				g.add(c, 0, false)
			}
		}
		ls, vs := ranked(g.counts())
		ls, vs = top(ls, vs, opts.TopN)
		return Result{
			Title:  fmt.Sprintf("%s (top %d)", title, opts.TopN),
			Kind:   KindBar,
			XLabel: "Airport",
			YLabel: "Flights",
			Labels: ls,
			Values: vs,
		}, nil
	}
}

func topRoutes(t *Table, opts Options) (Result, error) {
	origins, originNA, err := t.Strings(processor.ColOriginAirport)
	if err != nil {
		return Result{}, err
	}
	dests, destNA, err := t.Strings(processor.ColDestinationAirport)
	if err != nil {
		return Result{}, err
	}
	g := groupBy{}
	for i := range origins {
		if originNA[i] || destNA[i] {
			continue
		}
		g.add(origins[i]+"-"+dests[i], 0, false)
	}
	ls, vs := ranked(g.counts())
	ls, vs = top(ls, vs, opts.TopN)
	return Result{
		Title:  fmt.Sprintf("Busiest routes (top %d)", opts.TopN),
		Kind:   KindBar,
		XLabel: "Route",
		YLabel: "Flights",
		Labels: ls,
		Values: vs,
	}, nil
}

func topStatesByDepartureDelay(t *Table, opts Options) (Result, error) {
	states, na, err := t.Strings(processor.ColState + opts.OriginSuffix)
	if err != nil {
		return Result{}, err
	}
	delays, err := t.Floats(processor.ColDepartureDelay)
	if err != nil {
		return Result{}, err
	}
	g := groupBy{}
	for i, s := range states {
		if !na[i] {
			g.add(s, delays[i], false)
		}
	}
	ls, vs := ranked(g.means())
	ls, vs = top(ls, vs, opts.TopN)
	return Result{
		Title:  fmt.Sprintf("Origin states by mean departure delay (top %d)", opts.TopN),
		Kind:   KindBar,
		XLabel: "State",
		YLabel: "Minutes",
		Labels: ls,
		Values: vs,
	}, nil
}

// originLocations plots every distinct origin airport once, ordered by code.
func originLocations(t *Table, opts Options) (Result, error) {
	codes, na, err := t.Strings(processor.ColOriginAirport)
	if err != nil {
		return Result{}, err
	}
	lat, err := t.Floats(processor.ColLatitude + opts.OriginSuffix)
	if err != nil {
		return Result{}, err
	}
	lon, err := t.Floats(processor.ColLongitude + opts.OriginSuffix)
	if err != nil {
		return Result{}, err
	}

	seen := make(map[string]Point)
	for i, c := range codes {
		if na[i] || isNaN(lat[i]) || isNaN(lon[i]) {
			continue
		}
		if _, ok := seen[c]; !ok {
			seen[c] = Point{X: lon[i], Y: lat[i]}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]Point, len(keys))
	for i, k := range keys {
		points[i] = seen[k]
	}
	return Result{
		Title:  "Origin airport locations",
		Kind:   KindScatter,
		XLabel: "Longitude",
		YLabel: "Latitude",
		Labels: keys,
		Points: points,
		Notes:  []string{fmt.Sprintf("%d airports with coordinates", len(points))},
	}, nil
}

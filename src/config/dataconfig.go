package config

// DefaultDataConfig returns the fixed column mapping for the 2015 flights dataset.
func DefaultDataConfig() *DataConfig {
	return &DataConfig{
		Flights: map[string]string{
			"YEAR":                "year",
			"MONTH":               "month",
			"DAY":                 "day",
			"DAY_OF_WEEK":         "day_of_week",
			"AIRLINE":             "airline_code",
			"FLIGHT_NUMBER":       "flight_number",
			"TAIL_NUMBER":         "tail_number",
			"ORIGIN_AIRPORT":      "origin_airport",
			"DESTINATION_AIRPORT": "destination_airport",
			"SCHEDULED_DEPARTURE": "scheduled_departure",
			"DEPARTURE_TIME":      "departure_time",
			"DEPARTURE_DELAY":     "departure_delay",
			"TAXI_OUT":            "taxi_out",
			"WHEELS_OFF":          "wheels_off",
			"SCHEDULED_TIME":      "scheduled_time",
			"ELAPSED_TIME":        "elapsed_time",
			"AIR_TIME":            "air_time",
			"DISTANCE":            "distance",
			"WHEELS_ON":           "wheels_on",
			"TAXI_IN":             "taxi_in",
			"SCHEDULED_ARRIVAL":   "scheduled_arrival",
			"ARRIVAL_TIME":        "arrival_time",
			"ARRIVAL_DELAY":       "arrival_delay",
			"DIVERTED":            "diverted",
			"CANCELLED":           "cancelled",
			"CANCELLATION_REASON": "cancellation_reason",
			"AIR_SYSTEM_DELAY":    "air_system_delay",
			"SECURITY_DELAY":      "security_delay",
			"AIRLINE_DELAY":       "airline_delay",
			"LATE_AIRCRAFT_DELAY": "late_aircraft_delay",
			"WEATHER_DELAY":       "weather_delay",
		},
		Airlines: map[string]string{
			"IATA_CODE": "airline_code",
			"AIRLINE":   "airline_name",
		},
		Airports: map[string]string{
			"IATA_CODE": "iata_code",
			"AIRPORT":   "airport",
			"CITY":      "city",
			"STATE":     "state",
			"COUNTRY":   "country",
			"LATITUDE":  "latitude",
			"LONGITUDE": "longitude",
		},
		AirportAttributes: []string{"airport", "city", "state", "latitude", "longitude"},
		DelayColumns: []string{
			"departure_delay",
			"arrival_delay",
			"air_system_delay",
			"security_delay",
			"airline_delay",
			"late_aircraft_delay",
			"weather_delay",
		},
		FlagColumns: []string{"diverted", "cancelled"},
		TimeColumns: []string{
			"scheduled_departure",
			"departure_time",
			"wheels_off",
			"wheels_on",
			"scheduled_arrival",
			"arrival_time",
		},
		CancellationSentinel: []string{"null", ""},
	}
}

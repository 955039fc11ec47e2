// columns.go
package processor

import (
	"FlightDelayAnalysis/src/config"

	"github.com/go-gota/gota/series"
)

// 清洗后的列名
const (
	ColYear               = "year"
	ColMonth              = "month"
	ColDay                = "day"
	ColDayOfWeek          = "day_of_week"
	ColAirlineCode        = "airline_code"
	ColAirlineName        = "airline_name"
	ColOriginAirport      = "origin_airport"
	ColDestinationAirport = "destination_airport"
	ColScheduledDeparture = "scheduled_departure"
	ColDepartureDelay     = "departure_delay"
	ColTaxiOut            = "taxi_out"
	ColDistance           = "distance"
	ColArrivalDelay       = "arrival_delay"
	ColDiverted           = "diverted"
	ColCancelled          = "cancelled"
	ColCancellationReason = "cancellation_reason"
	ColAirSystemDelay     = "air_system_delay"
	ColSecurityDelay      = "security_delay"
	ColAirlineDelay       = "airline_delay"
	ColLateAircraftDelay  = "late_aircraft_delay"
	ColWeatherDelay       = "weather_delay"
	ColAirport            = "airport"
	ColState              = "state"
	ColLatitude           = "latitude"
	ColLongitude          = "longitude"
	ColAirportIATA        = "iata_code"
)

// DelayCauses are the per-cause delay columns in report order.
var DelayCauses = []string{
	ColAirSystemDelay,
	ColSecurityDelay,
	ColAirlineDelay,
	ColLateAircraftDelay,
	ColWeatherDelay,
}

// intColumns are raw flights columns holding whole numbers.
var intColumns = []string{"YEAR", "MONTH", "DAY", "DAY_OF_WEEK", "FLIGHT_NUMBER"}

// floatColumns are raw flights columns holding durations and distances.
var floatColumns = []string{
	"TAXI_OUT", "SCHEDULED_TIME", "ELAPSED_TIME", "AIR_TIME", "DISTANCE", "TAXI_IN",
}

// lookupKey is the raw key column of the airlines and airports tables.
const lookupKey = "IATA_CODE"

// floatAttributes are airport attributes cast to float before joining.
var floatAttributes = []string{ColLatitude, ColLongitude}

// IntColumns returns the cleaned names of the integer flights columns.
func IntColumns(dcfg *config.DataConfig) []string {
	return cleanedNames(dcfg, intColumns)
}

// FloatColumns returns the cleaned names of the non-delay numeric flights
// columns.
func FloatColumns(dcfg *config.DataConfig) []string {
	return cleanedNames(dcfg, floatColumns)
}

func cleanedNames(dcfg *config.DataConfig, raw []string) []string {
	cols := make([]string, 0, len(raw))
	for _, r := range raw {
		if name := dcfg.FlightColumn(r); name != "" {
			cols = append(cols, name)
		}
	}
	return cols
}

// CleanedTypes returns the column types of the cleaned table, used when the
// cleaned CSV is loaded again for analysis. Columns not listed are strings.
func CleanedTypes(dcfg *config.DataConfig, originSuffix, destinationSuffix string) map[string]series.Type {
	types := make(map[string]series.Type)
	for _, c := range IntColumns(dcfg) {
		types[c] = series.Int
	}
	for _, c := range FloatColumns(dcfg) {
		types[c] = series.Float
	}
	for _, c := range dcfg.DelayColumns {
		types[c] = series.Float
	}
	for _, c := range dcfg.FlagColumns {
		types[c] = series.Bool
	}
	for _, attr := range dcfg.AirportAttributes {
		if isFloatAttribute(attr) {
			types[attr+originSuffix] = series.Float
			types[attr+destinationSuffix] = series.Float
		}
	}
	return types
}

func isFloatAttribute(attr string) bool {
	for _, a := range floatAttributes {
		if a == attr {
			return true
		}
	}
	return false
}

// ColumnNames maps the default cleaned column names to the names dcfg gives
// them. Only renamed columns are listed. Lookup keys are not carried into
// the cleaned table and are skipped.
func ColumnNames(dcfg *config.DataConfig, originSuffix, destinationSuffix string) map[string]string {
	defaults := config.DefaultDataConfig()
	names := make(map[string]string)

	for raw, from := range defaults.Airlines {
		if to := dcfg.Airlines[raw]; raw != lookupKey && to != "" && to != from {
			names[from] = to
		}
	}
	for raw, from := range defaults.Airports {
		if to := dcfg.Airports[raw]; raw != lookupKey && to != "" && to != from {
			names[from+originSuffix] = to + originSuffix
			names[from+destinationSuffix] = to + destinationSuffix
		}
	}
	for raw, from := range defaults.Flights {
		if to := dcfg.Flights[raw]; to != "" && to != from {
			names[from] = to
		}
	}
	return names
}

package processor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FlightDelayAnalysis/src/datasource/file"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"
)

const flightsCSV = `YEAR,MONTH,DAY,DAY_OF_WEEK,AIRLINE,FLIGHT_NUMBER,TAIL_NUMBER,ORIGIN_AIRPORT,DESTINATION_AIRPORT,SCHEDULED_DEPARTURE,DEPARTURE_TIME,DEPARTURE_DELAY,TAXI_OUT,WHEELS_OFF,SCHEDULED_TIME,ELAPSED_TIME,AIR_TIME,DISTANCE,WHEELS_ON,TAXI_IN,SCHEDULED_ARRIVAL,ARRIVAL_TIME,ARRIVAL_DELAY,DIVERTED,CANCELLED,CANCELLATION_REASON,AIR_SYSTEM_DELAY,SECURITY_DELAY,AIRLINE_DELAY,LATE_AIRCRAFT_DELAY,WEATHER_DELAY
2015,1,1,4,AS,98,N407AS,ANC,SEA,0545,0534,-11,21,0555,205,194,169,1448,0404,4,0430,0408,-22,0,0,,,,,,
2015,1,1,4,AA,2336,N3KUAA,LAX,PBI,0010,0002,-8,12,0014,280,279,263,2330,0737,4,0750,0741,-9,0,0,,,,,,
2015,1,1,4,US,840,N171US,SFO,CLT,0020,0048,28,16,0104,286,293,266,2296,0900,11,0806,0831,25,0,0,null,5,0,20,0,0
2015,1,1,4,AA,258,N3HYAA,LAX,MIA,0020,0015,-5,15,0030,285,281,258,2342,0748,8,0805,0756,-9,0,0,,,,,,
2015,1,2,5,AS,135,N527AS,SEA,ANC,0,,,,,235,,,1448,,,0320,,,0,1,B,,,,,
`

const airlinesCSV = `IATA_CODE,AIRLINE
AS,Alaska Airlines Inc.
AA,American Airlines Inc.
US,US Airways Inc.
`

// MIA is left out on purpose: one destination must stay unmatched.
const airportsCSV = `IATA_CODE,AIRPORT,CITY,STATE,COUNTRY,LATITUDE,LONGITUDE
ANC,Ted Stevens Anchorage International Airport,Anchorage,AK,USA,61.17432,-149.99619
SEA,Seattle-Tacoma International Airport,Seattle,WA,USA,47.44898,-122.30931
LAX,Los Angeles International Airport,Los Angeles,CA,USA,33.94254,-118.40807
PBI,Palm Beach International Airport,West Palm Beach,FL,USA,26.68316,-80.09559
SFO,San Francisco International Airport,San Francisco,CA,USA,37.619,-122.37484
CLT,Charlotte Douglas International Airport,Charlotte,NC,USA,35.21401,-80.94313
`

func loadCSV(t *testing.T, content string) dataframe.DataFrame {
	t.Helper()
	df := dataframe.ReadCSV(strings.NewReader(content),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(file.NaNValues),
	)
	require.NoError(t, df.Err)
	return df
}

func rawFlights(t *testing.T) dataframe.DataFrame {
	return loadCSV(t, flightsCSV)
}

// writeInputs writes the three fixture tables to dir.
func writeInputs(t *testing.T, dir, flights, airlines, airports string) {
	t.Helper()
	for name, content := range map[string]string{
		"flights.csv":  flights,
		"airlines.csv": airlines,
		"airports.csv": airports,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

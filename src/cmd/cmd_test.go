package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"FlightDelayAnalysis/src/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const flightsCSV = `YEAR,MONTH,DAY,DAY_OF_WEEK,AIRLINE,FLIGHT_NUMBER,TAIL_NUMBER,ORIGIN_AIRPORT,DESTINATION_AIRPORT,SCHEDULED_DEPARTURE,DEPARTURE_TIME,DEPARTURE_DELAY,TAXI_OUT,WHEELS_OFF,SCHEDULED_TIME,ELAPSED_TIME,AIR_TIME,DISTANCE,WHEELS_ON,TAXI_IN,SCHEDULED_ARRIVAL,ARRIVAL_TIME,ARRIVAL_DELAY,DIVERTED,CANCELLED,CANCELLATION_REASON,AIR_SYSTEM_DELAY,SECURITY_DELAY,AIRLINE_DELAY,LATE_AIRCRAFT_DELAY,WEATHER_DELAY
2015,1,1,4,AS,98,N407AS,ANC,SEA,0005,2354,-11,21,0015,205,194,169,1448,0404,4,0430,0408,-22,0,0,,,,,,
2015,1,1,4,AA,2336,N3KUAA,LAX,PBI,0010,0002,-8,12,0014,280,279,263,2330,0737,4,0750,0741,-9,0,0,,,,,,
2015,1,1,4,AA,258,N3HYAA,LAX,MIA,0020,0019,-1,15,0034,285,281,258,2342,0752,8,0806,0800,25,0,0,,5,0,20,0,0
`

const airlinesCSV = `IATA_CODE,AIRLINE
AS,Alaska Airlines Inc.
AA,American Airlines Inc.
`

const airportsCSV = `IATA_CODE,AIRPORT,CITY,STATE,COUNTRY,LATITUDE,LONGITUDE
ANC,Ted Stevens Anchorage International Airport,Anchorage,AK,USA,61.17432,-149.99619
SEA,Seattle-Tacoma International Airport,Seattle,WA,USA,47.44898,-122.30931
LAX,Los Angeles International Airport,Los Angeles,CA,USA,33.94254,-118.40807
PBI,Palm Beach International Airport,West Palm Beach,FL,USA,26.68316,-80.09559
`

// setupDataDir writes the raw inputs and an application config into a
// fresh directory and returns the directory and config path.
func setupDataDir(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"flights.csv":  flightsCSV,
		"airlines.csv": airlinesCSV,
		"airports.csv": airportsCSV,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `log:
  level: error
analysis:
  workbook: report.xlsx
metrics_file: flights.prom
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return dir, cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag of c and its subcommands to its default so
// values from one execution do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRunCommand(t *testing.T) {
	dir, cfgPath := setupDataDir(t)

	out, err := execute(t, "run",
		"--config", cfgPath,
		"--data-config", filepath.Join(dir, "missing.yaml"),
		"--data-dir", dir,
		"--sections", "airline,misc",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Cleaning summary")
	assert.Contains(t, out, "Flights per airline")
	assert.Contains(t, out, "American Airlines Inc.")
	assert.NotContains(t, out, "SEASONALITY")

	assert.FileExists(t, filepath.Join(dir, "cleaned_flight_data.csv"))

	f, err := excelize.OpenFile(filepath.Join(dir, "report.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "about")
	assert.Contains(t, f.GetSheetList(), "flights_per_airline")
	assert.NotContains(t, f.GetSheetList(), "flights_by_month")

	prom, err := os.ReadFile(filepath.Join(dir, "flights.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `flights_rows_loaded_total{table="flights"} 3`)
	assert.Contains(t, string(prom), `flights_rows_loaded_total{table="cleaned"} 3`)
	assert.Contains(t, string(prom), `flights_join_unmatched_total{join="airports_destination"} 1`)
}

func TestCleanThenAnalyze(t *testing.T) {
	dir, cfgPath := setupDataDir(t)
	common := []string{"--config", cfgPath, "--data-dir", dir}

	out, err := execute(t, append([]string{"clean"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "rows written")

	out, err = execute(t, append([]string{"analyze", "--sections", "delays", "--workbook", "delays.xlsx"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "DELAYS")
	assert.FileExists(t, filepath.Join(dir, "delays.xlsx"))
}

func TestAnalyzeUnknownSection(t *testing.T) {
	dir, cfgPath := setupDataDir(t)

	// no cleaned file exists: the section list is rejected before loading
	_, err := execute(t, "analyze", "--config", cfgPath, "--data-dir", dir, "--sections", "weather")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnknownSection)
	assert.Contains(t, err.Error(), "weather")
	assert.NoFileExists(t, filepath.Join(dir, "cleaned_flight_data.csv"))
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	dir, cfgPath := setupDataDir(t)
	common := []string{"--config", cfgPath, "--data-dir", dir}

	_, err := execute(t, append([]string{"run", "--sections", "misc", "--workbook", "first.xlsx"}, common...)...)
	require.NoError(t, err)

	out, err := execute(t, append([]string{"run", "--sections", "delays"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "DELAYS")
	assert.NotContains(t, out, "MISC")
	assert.FileExists(t, filepath.Join(dir, "report.xlsx"), "--workbook from the previous run must not stick")
}

func TestCleanMissingInputs(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "clean",
		"--config", filepath.Join(dir, "none.yaml"),
		"--data-config", filepath.Join(dir, "none.yaml"),
		"--data-dir", dir,
		"--log-level", "error",
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: dev")
}

package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixture() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"UA", "AA", "DL"}, series.String, "airline_code"),
		series.New([]interface{}{-4.0, nil, 12.5}, series.Float, "arrival_delay"),
		series.New([]interface{}{1448, 2330, nil}, series.Int, "distance"),
		series.New([]interface{}{false, true, nil}, series.Bool, "cancelled"),
		series.New([]interface{}{"05:45", nil, "23:59"}, series.String, "departure_time"),
	)
}

func TestCSVSink_WritesNAAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaned.csv")
	sink := &CSVSink{Path: path}

	n, err := sink.Write(context.Background(), fixture())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected := "airline_code,arrival_delay,distance,cancelled,departure_time\n" +
		"UA,-4,1448,false,05:45\n" +
		"AA,,2330,true,\n" +
		"DL,12.5,,,23:59\n"
	assert.Equal(t, expected, string(data))
}

func TestCSVSink_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := &CSVSink{Path: filepath.Join(dir, "a.csv")}
	b := &CSVSink{Path: filepath.Join(dir, "b.csv")}

	_, err := a.Write(context.Background(), fixture())
	require.NoError(t, err)
	_, err = b.Write(context.Background(), fixture())
	require.NoError(t, err)

	first, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	second, err := os.ReadFile(b.Path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCSVSink_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "cleaned.csv")
	_, err := (&CSVSink{Path: path}).Write(ctx, fixture())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func TestExcelSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.xlsx")
	n, err := (&ExcelSink{Path: path}).Write(context.Background(), fixture())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("flights")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"airline_code", "arrival_delay", "distance", "cancelled", "departure_time"}, rows[0])
	assert.Equal(t, "UA", rows[1][0])
	assert.Equal(t, "-4", rows[1][1])
	assert.Equal(t, "", rows[2][1])
}

func TestExcelSink_RowLimit(t *testing.T) {
	big := dataframe.New(series.New(make([]float64, excelize.TotalRows), series.Float, "x"))
	_, err := (&ExcelSink{Path: filepath.Join(t.TempDir(), "big.xlsx")}).Write(context.Background(), big)
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestArrowSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.arrow")
	n, err := NewArrowSink(path).Write(context.Background(), fixture())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader, err := ipc.NewReader(f)
	require.NoError(t, err)
	defer reader.Release()

	schema := reader.Schema()
	assert.Equal(t, arrow.PrimitiveTypes.Float64, schema.Field(1).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, schema.Field(2).Type)
	assert.Equal(t, arrow.FixedWidthTypes.Boolean, schema.Field(3).Type)

	require.True(t, reader.Next())
	record := reader.Record()
	assert.EqualValues(t, 3, record.NumRows())

	delays := record.Column(1).(*array.Float64)
	assert.InDelta(t, -4.0, delays.Value(0), 1e-9)
	assert.True(t, delays.IsNull(1))

	codes := record.Column(0).(*array.String)
	assert.Equal(t, "DL", codes.Value(2))
	assert.False(t, reader.Next())
}

func TestSQLiteSink_ReplacesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights.db")
	sink := &SQLiteSink{Path: path, Table: "flights"}

	for i := 0; i < 2; i++ {
		n, err := sink.Write(context.Background(), fixture())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	}

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "flights"`).Scan(&count))
	assert.Equal(t, 3, count, "a second write replaces rows")

	var (
		delay     sql.NullFloat64
		cancelled int
	)
	require.NoError(t, db.QueryRow(`SELECT arrival_delay, cancelled FROM flights WHERE airline_code = 'AA'`).Scan(&delay, &cancelled))
	assert.False(t, delay.Valid)
	assert.Equal(t, 1, cancelled)
}

// pipeline.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"FlightDelayAnalysis/src/config"
	"FlightDelayAnalysis/src/datasource/file"
	"FlightDelayAnalysis/src/metrics"
	"FlightDelayAnalysis/src/storage"

	"github.com/go-gota/gota/dataframe"
	"github.com/sirupsen/logrus"
)

// Summary 一次清洗运行的结果
type Summary struct {
	FlightRows  int
	AirlineRows int
	AirportRows int
	Rows        int // rows in the cleaned table
	Columns     int
	Joins       []JoinStats
	Clean       CleanStats
	Outputs     map[string]string // sink name -> path
	Duration    time.Duration
}

// Pipeline loads the three input tables, cleans and joins them and writes
// the result to every configured sink.
type Pipeline struct {
	cfg     *config.Config
	dcfg    *config.DataConfig
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	sinks   []storage.Sink
	paths   map[string]string
}

func NewPipeline(cfg *config.Config, dcfg *config.DataConfig, log logrus.FieldLogger, m *metrics.Metrics) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		dcfg:    dcfg,
		log:     log.WithField("component", "pipeline"),
		metrics: m,
		paths:   make(map[string]string),
	}

	p.addSink(&storage.CSVSink{Path: cfg.Path(cfg.Output.Cleaned)}, cfg.Path(cfg.Output.Cleaned))
	if cfg.Output.Excel != "" {
		p.addSink(&storage.ExcelSink{Path: cfg.Path(cfg.Output.Excel)}, cfg.Path(cfg.Output.Excel))
	}
	if cfg.Output.Arrow != "" {
		p.addSink(storage.NewArrowSink(cfg.Path(cfg.Output.Arrow)), cfg.Path(cfg.Output.Arrow))
	}
	if cfg.Output.SQLite != "" {
		p.addSink(&storage.SQLiteSink{Path: cfg.Path(cfg.Output.SQLite), Table: cfg.Output.SQLiteTable}, cfg.Path(cfg.Output.SQLite))
	}

	return p
}

func (p *Pipeline) addSink(s storage.Sink, path string) {
	p.sinks = append(p.sinks, s)
	p.paths[s.Name()] = path
}

type loadResult struct {
	table string
	df    dataframe.DataFrame
	err   error
}

// Run executes the pipeline once. Context cancellation is checked between
// steps and inside the sinks.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Outputs: make(map[string]string)}

	tables, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	flights, airlines, airports := tables["flights"], tables["airlines"], tables["airports"]
	summary.FlightRows = flights.Nrow()
	summary.AirlineRows = airlines.Nrow()
	summary.AirportRows = airports.Nrow()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage := time.Now()
	cleaned, stats, err := Clean(flights, p.dcfg)
	if err != nil {
		return nil, fmt.Errorf("clean flights: %w", err)
	}
	summary.Clean = stats
	p.metrics.ObserveStage("clean", stage)
	p.logCleanStats(stats)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage = time.Now()
	joined, joins, err := p.join(cleaned, airlines, airports)
	if err != nil {
		return nil, err
	}
	summary.Joins = joins
	p.metrics.ObserveStage("join", stage)

	summary.Rows = joined.Nrow()
	summary.Columns = joined.Ncol()
	if summary.Rows != summary.FlightRows {
		fields := logrus.Fields{"flights": summary.FlightRows, "joined": summary.Rows}
		for _, j := range joins {
			fields[j.Name+"_duplicate_keys"] = j.DuplicateKeys
		}
		p.log.WithFields(fields).Warn("Joined row count differs from flights row count")
	}

	stage = time.Now()
	for _, sink := range p.sinks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := sink.Write(ctx, joined)
		if err != nil {
			return nil, fmt.Errorf("write %s output: %w", sink.Name(), err)
		}
		summary.Outputs[sink.Name()] = p.paths[sink.Name()]
		if p.metrics != nil {
			p.metrics.RowsWritten.WithLabelValues(sink.Name()).Add(float64(n))
		}
		p.log.WithFields(logrus.Fields{"sink": sink.Name(), "path": p.paths[sink.Name()], "rows": n}).Info("Output written")
	}
	p.metrics.ObserveStage("write", stage)

	summary.Duration = time.Since(start)
	p.metrics.ObserveStage("total", start)
	return summary, nil
}

// load reads the three inputs concurrently.
func (p *Pipeline) load(ctx context.Context) (map[string]dataframe.DataFrame, error) {
	stage := time.Now()
	opts := file.Options{
		Encoding:  p.cfg.Input.Encoding,
		SheetName: p.cfg.Input.SheetName,
		HeaderRow: p.cfg.Input.HeaderRow,
	}
	inputs := map[string]string{
		"flights":  p.cfg.Path(p.cfg.Input.Flights),
		"airlines": p.cfg.Path(p.cfg.Input.Airlines),
		"airports": p.cfg.Path(p.cfg.Input.Airports),
	}

	results := make(chan loadResult, len(inputs))
	for table, path := range inputs {
		go func(table, path string) {
			df, err := file.ReadTable(path, opts)
			results <- loadResult{table: table, df: df, err: err}
		}(table, path)
	}

	tables := make(map[string]dataframe.DataFrame, len(inputs))
	var errs []error
	for range inputs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-results:
			if r.err != nil {
				errs = append(errs, fmt.Errorf("load %s: %w", r.table, r.err))
				continue
			}
			tables[r.table] = r.df
			if p.metrics != nil {
				p.metrics.RowsLoaded.WithLabelValues(r.table).Add(float64(r.df.Nrow()))
			}
			p.log.WithFields(logrus.Fields{"table": r.table, "path": inputs[r.table], "rows": r.df.Nrow()}).Info("Table loaded")
		}
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return nil, errors.Join(errs...)
	}

	p.metrics.ObserveStage("load", stage)
	return tables, nil
}

func (p *Pipeline) join(flights, airlines, airports dataframe.DataFrame) (dataframe.DataFrame, []JoinStats, error) {
	airlines, err := Rename(airlines, p.dcfg.Airlines)
	if err != nil {
		return flights, nil, fmt.Errorf("rename airlines: %w", err)
	}
	airports, err = Rename(airports, p.dcfg.Airports)
	if err != nil {
		return flights, nil, fmt.Errorf("rename airports: %w", err)
	}

	var floats []string
	for _, attr := range p.dcfg.AirportAttributes {
		if isFloatAttribute(attr) {
			floats = append(floats, attr)
		}
	}
	if airports, err = CastFloats(airports, floats...); err != nil {
		return flights, nil, fmt.Errorf("cast airports: %w", err)
	}

	airlineKey := p.dcfg.Airlines[lookupKey]
	airportKey := p.dcfg.Airports[lookupKey]
	specs := []struct {
		lookup dataframe.DataFrame
		spec   JoinSpec
	}{
		{airlines, JoinSpec{
			Name:     "airlines",
			LeftKey:  p.dcfg.FlightColumn("AIRLINE"),
			RightKey: airlineKey,
		}},
		{airports, JoinSpec{
			Name:     "airports_origin",
			LeftKey:  p.dcfg.FlightColumn("ORIGIN_AIRPORT"),
			RightKey: airportKey,
			Suffix:   p.cfg.Join.OriginSuffix,
			Columns:  p.dcfg.AirportAttributes,
		}},
		{airports, JoinSpec{
			Name:     "airports_destination",
			LeftKey:  p.dcfg.FlightColumn("DESTINATION_AIRPORT"),
			RightKey: airportKey,
			Suffix:   p.cfg.Join.DestinationSuffix,
			Columns:  p.dcfg.AirportAttributes,
		}},
	}

	joined := flights
	all := make([]JoinStats, 0, len(specs))
	for _, s := range specs {
		s.spec.Dedupe = p.cfg.Join.DedupeLookups
		var stats JoinStats
		joined, stats, err = LeftJoin(joined, s.lookup, s.spec)
		if err != nil {
			return flights, nil, fmt.Errorf("join %s: %w", s.spec.Name, err)
		}
		all = append(all, stats)

		if p.metrics != nil {
			p.metrics.JoinUnmatched.WithLabelValues(stats.Name).Add(float64(stats.Unmatched))
		}
		entry := p.log.WithFields(logrus.Fields{
			"join":           stats.Name,
			"matched":        stats.Matched,
			"unmatched":      stats.Unmatched,
			"na_keys":        stats.NAKeys,
			"duplicate_keys": stats.DuplicateKeys,
		})
		if stats.DuplicateKeys > 0 && !s.spec.Dedupe {
			entry.Warn("Lookup table has duplicate keys, matching rows are repeated")
		} else {
			entry.Info("Join complete")
		}
	}

	return joined, all, nil
}

func (p *Pipeline) logCleanStats(stats CleanStats) {
	fields := logrus.Fields{
		"filled_delays": stats.FilledDelays,
		"na_flags":      stats.NAFlags,
		"na_reasons":    stats.NAReasons,
	}
	for col, n := range stats.NATimes {
		fields["na_"+col] = n
	}
	p.log.WithFields(fields).Info("Flights cleaned")
}

// report.go
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FlightDelayAnalysis/src/config"
	"FlightDelayAnalysis/src/metrics"
	"FlightDelayAnalysis/src/processor"
	"FlightDelayAnalysis/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/sirupsen/logrus"
)

var ErrUnknownSection = errors.New("unknown analysis section")

// Kind 图表类型
type Kind string

const (
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindPie       Kind = "pie"
	KindScatter   Kind = "scatter"
	KindHistogram Kind = "histogram"
)

// Point is one scatter point.
type Point struct {
	X, Y float64
}

// Result is the output of one analysis unit: either labelled values or,
// for scatter charts, points.
type Result struct {
	Section string
	ID      string
	Title   string
	Kind    Kind
	XLabel  string
	YLabel  string
	Labels  []string
	Values  []float64
	Points  []Point
	Notes   []string
}

// Options 分析参数
type Options struct {
	TopN             int
	HistogramMin     float64
	HistogramMax     float64
	BinWidth         float64
	ScatterMaxPoints int
	OriginSuffix     string
	// Columns maps default cleaned column names to renamed ones.
	Columns          map[string]string
}

// OptionsFromConfig copies the analysis settings out of cfg and resolves
// renamed columns through dcfg.
func OptionsFromConfig(cfg *config.Config, dcfg *config.DataConfig) Options {
	return Options{
		Columns:          processor.ColumnNames(dcfg, cfg.Join.OriginSuffix, cfg.Join.DestinationSuffix),
		TopN:             cfg.Analysis.TopN,
		HistogramMin:     cfg.Analysis.Histogram.Min,
		HistogramMax:     cfg.Analysis.Histogram.Max,
		BinWidth:         cfg.Analysis.Histogram.BinWidth,
		ScatterMaxPoints: cfg.Analysis.ScatterMaxPoints,
		OriginSuffix:     cfg.Join.OriginSuffix,
	}
}

// Unit is a single summary computation.
type Unit struct {
	Section string
	ID      string
	Run     func(t *Table, opts Options) (Result, error)
}

// Units returns every unit in report order.
func Units() []Unit {
	var all []Unit
	all = append(all, airlineUnits()...)
	all = append(all, airportUnits()...)
	all = append(all, seasonalityUnits()...)
	all = append(all, delayUnits()...)
	all = append(all, miscUnits()...)
	return all
}

// Report runs the analysis units against a cleaned table.
type Report struct {
	opts    Options
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewReport(opts Options, log logrus.FieldLogger, m *metrics.Metrics) *Report {
	return &Report{opts: opts, log: log.WithField("component", "analysis"), metrics: m}
}

// Run computes the selected sections, all of them when sections is empty.
// Results come back in report order regardless of the order of sections.
func (r *Report) Run(ctx context.Context, df dataframe.DataFrame, sections []string) ([]Result, error) {
	selected := make(map[string]bool, len(sections))
	for _, s := range sections {
		if !utils.Contains(config.Sections, s) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSection, s)
		}
		selected[s] = true
	}

	start := time.Now()
	table := NewTable(df, r.opts.Columns)
	var results []Result
	for _, u := range Units() {
		if len(selected) > 0 && !selected[u.Section] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := u.Run(table, r.opts)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", u.Section, u.ID, err)
		}
		res.Section, res.ID = u.Section, u.ID
		results = append(results, res)

		if r.metrics != nil {
			r.metrics.Results.WithLabelValues(string(res.Kind)).Inc()
		}
		r.log.WithFields(logrus.Fields{"section": u.Section, "unit": u.ID, "kind": res.Kind}).Debug("Analysis unit complete")
	}

	r.metrics.ObserveStage("analysis", start)
	r.log.WithFields(logrus.Fields{"results": len(results), "rows": df.Nrow()}).Info("Analysis complete")
	return results, nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"FlightDelayAnalysis/src/analysis"
	"FlightDelayAnalysis/src/datasource/file"
	"FlightDelayAnalysis/src/metrics"
	"FlightDelayAnalysis/src/processor"
	"FlightDelayAnalysis/src/render"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	analyzeInput    string
	analyzeSections []string
	analyzeWorkbook string
	analyzePreview  bool
)

// analyzeCmd represents the analyze command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report delay statistics from the cleaned flights file",
	Long: `Analyze reloads the cleaned flights file and computes the airline, airport,
seasonality, delays and misc sections. Each result is printed as a table and
written with a native chart to the report workbook.

Examples:
  # Only the airline and delays sections
  flightdelay analyze --sections airline,delays

  # Terminal bar charts next to the tables
  flightdelay analyze --preview`,
	RunE: runAnalyzeCmd,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalyzeFlags(analyzeCmd)
}

func addAnalyzeFlags(c *cobra.Command) {
	c.Flags().StringVar(&analyzeInput, "input", "", "cleaned file to analyse (default output.cleaned)")
	c.Flags().StringSliceVar(&analyzeSections, "sections", nil, "sections to run (default analysis.sections, all when empty)")
	c.Flags().StringVar(&analyzeWorkbook, "workbook", "", "report workbook path, overrides analysis.workbook")
	c.Flags().BoolVar(&analyzePreview, "preview", false, "draw terminal bar charts")
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := applyAnalyzeFlags(cmd, e); err != nil {
		return err
	}

	m := metrics.New()
	if err := analyze(cmd.Context(), e, cmd.OutOrStdout(), m); err != nil {
		return err
	}
	writeMetrics(e, m)
	return nil
}

// applyAnalyzeFlags overrides the analysis settings from flags and checks the
// resulting section list before any data is read.
func applyAnalyzeFlags(cmd *cobra.Command, e *env) error {
	if cmd.Flags().Changed("input") {
		e.cfg.Output.Cleaned = analyzeInput
	}
	if cmd.Flags().Changed("sections") {
		e.cfg.Analysis.Sections = analyzeSections
	}
	if cmd.Flags().Changed("workbook") {
		e.cfg.Analysis.Workbook = analyzeWorkbook
	}
	if cmd.Flags().Changed("preview") {
		e.cfg.Analysis.Preview = analyzePreview
	}
	if err := e.cfg.ValidateSections(); err != nil {
		return fmt.Errorf("invalid --sections: %w", err)
	}
	return nil
}

// analyze 读取清洗后的数据并输出各分析结果
func analyze(ctx context.Context, e *env, out io.Writer, m *metrics.Metrics) error {
	source := e.cfg.Path(e.cfg.Output.Cleaned)

	start := time.Now()
	types := processor.CleanedTypes(e.dcfg, e.cfg.Join.OriginSuffix, e.cfg.Join.DestinationSuffix)
	df, err := file.ReadTyped(source, file.Options{}, types)
	if err != nil {
		return fmt.Errorf("load cleaned data: %w", err)
	}
	m.RowsLoaded.WithLabelValues("cleaned").Add(float64(df.Nrow()))
	m.ObserveStage("load_cleaned", start)
	e.log.WithFields(logrus.Fields{"path": source, "rows": df.Nrow()}).Info("Cleaned data loaded")

	results, err := analysis.NewReport(analysis.OptionsFromConfig(e.cfg, e.dcfg), e.log, m).Run(ctx, df, e.cfg.Analysis.Sections)
	if err != nil {
		return err
	}

	if err := render.NewConsole(out, e.cfg.Analysis.Preview).Results(results); err != nil {
		return err
	}

	if e.cfg.Analysis.Workbook != "" {
		path := e.cfg.Path(e.cfg.Analysis.Workbook)
		meta := render.Meta{RunID: e.runID, Source: source, Rows: df.Nrow(), Generated: time.Now()}
		if err := render.WriteWorkbook(path, meta, results); err != nil {
			return err
		}
		m.RowsWritten.WithLabelValues("workbook").Add(float64(len(results)))
		e.log.WithField("path", path).Info("Report workbook written")
	}
	return nil
}

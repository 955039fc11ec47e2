package cmd

import (
	"context"
	"io"
	"path/filepath"

	"FlightDelayAnalysis/src/datasource/file"
	"FlightDelayAnalysis/src/metrics"
	"FlightDelayAnalysis/src/processor"
	"FlightDelayAnalysis/src/render"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var cleanWatch bool

// cleanCmd represents the clean command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the raw tables and write the joined flights file",
	Long: `Clean reads airports, airlines and flights, normalises delays, flags,
cancellation reasons and HHMM times, attaches airline and airport metadata
and writes the cleaned table to every configured output.

With --watch the inputs are watched and the batch is re-run after each change
until interrupted.`,
	RunE: runCleanCmd,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().BoolVar(&cleanWatch, "watch", false, "re-run whenever an input file changes")
}

func runCleanCmd(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	m := metrics.New()
	if err := cleanOnce(cmd.Context(), e, cmd.OutOrStdout(), m); err != nil {
		return err
	}
	writeMetrics(e, m)
	if !cleanWatch {
		return nil
	}
	return watch(cmd.Context(), e, cmd.OutOrStdout())
}

// cleanOnce runs the pipeline and prints the summary.
func cleanOnce(ctx context.Context, e *env, out io.Writer, m *metrics.Metrics) error {
	summary, err := processor.NewPipeline(e.cfg, e.dcfg, e.log, m).Run(ctx)
	if err != nil {
		return err
	}
	return render.NewConsole(out, false).Summary(summary)
}

func writeMetrics(e *env, m *metrics.Metrics) {
	if err := m.WriteTextfile(e.cfg.Path(e.cfg.MetricsFile)); err != nil {
		e.log.WithError(err).Warn("Failed to write metrics")
	}
}

// watch 监听输入文件，变化后重新清洗
func watch(ctx context.Context, e *env, out io.Writer) error {
	inputs := []string{
		e.cfg.Path(e.cfg.Input.Flights),
		e.cfg.Path(e.cfg.Input.Airlines),
		e.cfg.Path(e.cfg.Input.Airports),
	}
	monitor, err := file.NewFileMonitor(inputs, e.cfg.Watch.Debounce.Std(), e.log)
	if err != nil {
		return err
	}

	e.log.WithField("debounce", e.cfg.Watch.Debounce.Std()).Info("Watching inputs, press Ctrl+C to stop")
	err = monitor.Watch(ctx, func(changed string) {
		e.log.WithField("file", filepath.Base(changed)).Info("Input changed, re-running clean")
		m := metrics.New()
		if err := cleanOnce(ctx, e, out, m); err != nil {
			e.log.WithError(err).Error("Clean run failed")
			return
		}
		writeMetrics(e, m)
	})
	e.log.Info("Watch stopped")
	return err
}

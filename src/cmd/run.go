package cmd

import (
	"FlightDelayAnalysis/src/metrics"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clean the raw tables, then analyse the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := applyAnalyzeFlags(cmd, e); err != nil {
			return err
		}

		m := metrics.New()
		defer writeMetrics(e, m)

		if err := cleanOnce(cmd.Context(), e, cmd.OutOrStdout(), m); err != nil {
			return err
		}
		return analyze(cmd.Context(), e, cmd.OutOrStdout(), m)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addAnalyzeFlags(runCmd)
}

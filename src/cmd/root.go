// Package cmd contains the CLI commands for the flight delay toolkit.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FlightDelayAnalysis/src/config"
	"FlightDelayAnalysis/src/logging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile     string
	dataCfgFile string
	logLevel    string
	dataDir     string
)

// rootCmd represents the base command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "flightdelay",
	Short: "Clean and analyse the 2015 US flight delay dataset",
	Long: `flightdelay reads the raw airports, airlines and flights tables, writes one
cleaned flat file with airline and airport metadata attached, and reports
delay statistics over it as console tables and an Excel workbook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "./config.yaml", "application config file")
	rootCmd.PersistentFlags().StringVar(&dataCfgFile, "data-config", "./dataconfig.yaml", "column mapping config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides log.level")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "base directory for relative input and output paths, overrides data_dir")
}

// env 单次命令运行所需的配置与日志
type env struct {
	cfg   *config.Config
	dcfg  *config.DataConfig
	log   *logrus.Entry
	runID string
	hook  *logging.FileHook
}

// newEnv loads both config files, applies flag overrides and builds the
// run logger.
func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, dcfg, err := config.Load(cfgFile, dataCfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, hook, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Path(cfg.Log.File),
		MaxSize: cfg.Log.MaxSize,
	})
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	return &env{
		cfg:   cfg,
		dcfg:  dcfg,
		log:   logger.WithField("run_id", runID),
		runID: runID,
		hook:  hook,
	}, nil
}

func (e *env) Close() {
	if e.hook == nil {
		return
	}
	if err := e.hook.Close(); err != nil {
		e.log.WithError(err).Warn("Failed to close log file")
	}
}

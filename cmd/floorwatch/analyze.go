package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nepselab/floorwatch/internal/config"
	"github.com/nepselab/floorwatch/internal/logger"
	"github.com/nepselab/floorwatch/internal/metrics"
	"github.com/nepselab/floorwatch/internal/pipeline"
	"github.com/nepselab/floorwatch/internal/storage/archive"
)

var (
	analyzeInput   string
	analyzeOutdir  string
	analyzeArchive bool
	analyzeRunID   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the surveillance pipeline over a floorsheet CSV",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "floorsheet CSV path (overrides config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutdir, "outdir", "o", "", "output directory (overrides config)")
	analyzeCmd.Flags().BoolVar(&analyzeArchive, "archive", false, "archive outputs after the run")
	analyzeCmd.Flags().StringVar(&analyzeRunID, "run-id", "", "run identifier (default: random UUID)")

	rootCmd.AddCommand(analyzeCmd)
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
		cfg := config.Defaults()
		return cfg, cfg.Validate()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if analyzeInput != "" {
		cfg.Input = analyzeInput
	}
	if analyzeOutdir != "" {
		cfg.Output.Dir = analyzeOutdir
	}
	if cfg.Input == "" {
		return fmt.Errorf("no input floorsheet: set --input or the input config key")
	}

	runID := analyzeRunID
	if runID == "" {
		runID = uuid.NewString()
	}
	runLog := logger.ForRun(log, runID)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runLog.Info("starting analysis",
		zap.String("input", cfg.Input),
		zap.String("outdir", cfg.Output.Dir))
	start := time.Now()

	f, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("opening floorsheet: %w", err)
	}
	defer f.Close()

	result, err := pipeline.New(cfg, runLog, reg).Run(ctx, f)
	if err != nil {
		return err
	}
	if err := pipeline.WriteOutputs(cfg.Output.Dir, result); err != nil {
		return err
	}

	if reg != nil {
		reg.RecordRunDuration(time.Since(start).Seconds())
		if err := reg.WriteFile(filepath.Join(cfg.Output.Dir, cfg.Metrics.File)); err != nil {
			return err
		}
	}

	if analyzeArchive || cfg.Archive.Enabled {
		store, err := archive.New(cfg.Archive)
		if err != nil {
			return err
		}
		if err := archive.PutDir(ctx, store, runID, cfg.Output.Dir); err != nil {
			return err
		}
		runLog.Info("outputs archived", zap.String("type", cfg.Archive.Type))
	}

	runLog.Info("analysis finished",
		zap.Int("records", result.Records),
		zap.Int("rejected", result.Rejected),
		zap.Int("signals", len(result.Signals)),
		zap.Duration("elapsed", time.Since(start)))

	fmt.Printf("Analyzed %d trades (%d rejected), %d symbol-day signals written to %s\n",
		result.Records, result.Rejected, len(result.Signals), cfg.Output.Dir)
	return nil
}

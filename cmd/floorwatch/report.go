package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nepselab/floorwatch/internal/export"
	"github.com/nepselab/floorwatch/internal/insights"
	"github.com/nepselab/floorwatch/internal/llm/factory"
	"github.com/nepselab/floorwatch/internal/logger"
)

var (
	reportSignals string
	reportOut     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an LLM narrative from a signal table",
	Long: `Reads a daily_signals.csv produced by analyze and asks the configured
LLM provider for an analyst-style narrative summary.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportSignals, "signals", "s", "", "path to daily_signals.csv (default <output.dir>/daily_signals.csv)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "", "", "write the report to this file instead of stdout")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("no llm provider configured: set the llm.provider config key")
	}

	path := reportSignals
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, export.SignalsFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening signal table: %w", err)
	}
	defer f.Close()

	signals, err := export.ReadSignals(f)
	if err != nil {
		return err
	}

	provider, err := factory.New(cfg.LLM)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := insights.NewGenerator(provider, log).Generate(ctx, signals)
	if err != nil {
		return err
	}
	log.Info("report generated",
		zap.String("provider", report.Provider),
		zap.Int("output_tokens", report.Usage.OutputTokens))

	if reportOut != "" {
		return os.WriteFile(reportOut, []byte(report.Content), 0644)
	}
	fmt.Println(report.Content)
	return nil
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "floorwatch",
	Short: "floorwatch - floorsheet surveillance for broker-level manipulation patterns",
	Long: `floorwatch analyzes a stock exchange floorsheet (the trade-by-trade
ledger) for signs of coordinated broker activity: flow dominance,
circular trading, trade clustering and pump-and-dump days.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

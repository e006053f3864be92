package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "biotrack",
	Short: "Lab report analysis and diet planning pipeline",
	Long:  "Extracts metric readings from lab report documents via Claude, normalizes them against a canonical catalog, tracks trends across tests, and generates personalized diet plans.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

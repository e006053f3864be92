package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/export"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Bulk-load results from a previously exported workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("local"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		results, err := export.ReadResults(args[0], cfg.User.ID)
		if err != nil {
			return err
		}
		if err := st.BulkInsertTestResults(ctx, results); err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("file", args[0]),
			zap.Int("rows", len(results)),
		)
		fmt.Printf("imported %d result(s)\n", len(results))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

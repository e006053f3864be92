package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biotrack/biotrack-cli/internal/export"
)

var (
	exportOut          string
	exportAbnormalOnly bool
	exportLang         string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored results to an XLSX workbook",
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

		results, err := st.ListTestResults(ctx, cfg.User.ID)
		if err != nil {
			return err
		}

		lang := exportLang
		if lang == "" {
			lang = cfg.Export.Language
		}

		if err := export.WriteResults(exportOut, results, export.Options{
			Language:     lang,
			AbnormalOnly: exportAbnormalOnly,
		}); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "results.xlsx", "output workbook path")
	exportCmd.Flags().BoolVar(&exportAbnormalOnly, "abnormal-only", false, "export only low/high results")
	exportCmd.Flags().StringVar(&exportLang, "lang", "", "metric name language, en or ar (default from config)")
	rootCmd.AddCommand(exportCmd)
}

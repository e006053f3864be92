package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/biotrack/biotrack-cli/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the canonical metric catalog as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()

		if err := enc.Encode(catalog.All()); err != nil {
			return eris.Wrap(err, "encode catalog")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

package cli

import (
	"fmt"

	"github.com/hyperjump/ragbench/internal/extract"
	"github.com/spf13/cobra"
)

var parseOutput string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Print the normalized text extracted from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := ParseOutputFormat(parseOutput)
		if err != nil {
			return err
		}
		doc, err := extract.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		return WriteParsed(cmd.OutOrStdout(), doc, format)
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "text", "output format: text or json")
	rootCmd.AddCommand(parseCmd)
}

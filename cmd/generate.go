package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newGenerateCommand())
}

func newGenerateCommand() *cobra.Command {
	// generateCmd represents the generate command
	var generateCmd = &cobra.Command{
		Use:   "generate <declarations.d.ts>",
		Short: "generate the catalog",
		Long:  "Extract the control catalog from a declaration file and print it as source text",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write to file instead of standard output")
	return generateCmd
}

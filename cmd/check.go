package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cmmoran/controlapigen/pkg/action/check"
)

func init() {
	rootCmd.AddCommand(newCheckCommand())
}

func newCheckCommand() *cobra.Command {
	var against string

	var checkCmd = &cobra.Command{
		Use:   "check <declarations.d.ts>",
		Short: "verify a generated catalog",
		Long:  "Regenerate the catalog and fail when it differs from a previously generated file",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}
			if err = check.Check(c.Context(), opts, args[0], against); err != nil {
				return err
			}
			c.Println("catalog is up to date")
			return nil
		},
	}
	checkCmd.Flags().StringVarP(&against, "against", "a", "", "previously generated catalog file")
	_ = checkCmd.MarkFlagRequired("against")
	return checkCmd
}

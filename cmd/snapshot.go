package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jinzhu/inflection"
	"github.com/spf13/cobra"

	"github.com/cmmoran/controlapigen/pkg/action/snapshot"
)

func init() {
	rootCmd.AddCommand(newSnapshotCommand())
}

func newSnapshotCommand() *cobra.Command {
	var manifestPath string

	var snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "manage versioned catalog snapshots",
	}
	snapshotCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "catalog/manifest.yaml", "snapshot manifest file")

	var dir, name, snapshotVersion string
	recordCmd := &cobra.Command{
		Use:   "record <declarations.d.ts>",
		Short: "generate and record a catalog snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}
			out, err := snapshot.Record(c.Context(), opts, args[0], manifestPath, dir, name, snapshotVersion)
			if err != nil {
				return err
			}
			opts.Logger.Info("snapshot recorded", "file", out, "version", snapshotVersion)
			c.Println(out)
			return nil
		},
	}
	recordCmd.Flags().StringVarP(&dir, "dir", "d", "catalog", "directory for snapshot files")
	recordCmd.Flags().StringVarP(&name, "name", "n", "controls", "snapshot name")
	recordCmd.Flags().StringVarP(&snapshotVersion, "version", "v", "", "snapshot version, e.g. 1.2.0")
	_ = recordCmd.MarkFlagRequired("version")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded snapshots",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			m, err := snapshot.List(manifestPath)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "VERSION\tNAME\tCONTROLS\tFILE\t")
			for _, s := range m.Snapshots {
				marker := ""
				switch s.Version {
				case m.CurrentVersion:
					marker = " (current)"
				case m.PreviousVersion:
					marker = " (previous)"
				}
				_, _ = fmt.Fprintf(tw, "%s%s\t%s\t%d\t%s\t\n", s.Version, marker, s.Name, s.Controls, s.File)
			}
			if err = tw.Flush(); err != nil {
				return err
			}
			c.Println(countNoun(len(m.Snapshots), "snapshot"), "recorded")
			return nil
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "diff the current snapshot against the previous one",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			diff, err := snapshot.DiffCurrentWithPrevious(manifestPath)
			if err != nil {
				return err
			}
			if diff == "" {
				c.Println("no changes")
				return nil
			}
			_, err = fmt.Fprint(c.OutOrStdout(), diff)
			return err
		},
	}

	snapshotCmd.AddCommand(recordCmd, listCmd, diffCmd)
	return snapshotCmd
}

// countNoun formats n with the singular or plural form of noun.
func countNoun(n int, noun string) string {
	if n != 1 {
		noun = inflection.Plural(noun)
	}
	return fmt.Sprintf("%d %s", n, noun)
}

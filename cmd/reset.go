package cmd

import (
	"fmt"

	"github.com/grovetools/toolchange/tracker"
	"github.com/spf13/cobra"
)

// NewResetCmd creates the `reset` command.
func NewResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Move the cursor back to the first tool change",
		Long: `Rewrites the state file with the cursor at zero, keeping the scanned list.
Use it when a print is restarted from the beginning without rescanning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			st, err := e.store.Load()
			if err != nil {
				return err
			}

			next := tracker.Reset(st)
			if err := e.store.Save(next); err != nil {
				return err
			}
			e.logger.WithField("total_changes", next.TotalChanges).Info("Reset tool change tracking")

			report := tracker.NewReport(next)
			if err := writeDisplay(cmd, e, report); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Render(e.format))
			return nil
		},
	}

	cmd.Flags().Bool("display", false, "Also write the printer display snippet")

	return cmd
}

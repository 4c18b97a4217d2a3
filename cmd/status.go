package cmd

import (
	"fmt"

	"github.com/grovetools/toolchange/tracker"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the `status` command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the next pending tool change",
		Long: `Prints the next pending tool change without modifying the state file.

Examples:
  toolchange status
  toolchange status --format machine --display`,
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

			report := tracker.NewReport(st)
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

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/tracker"
	"github.com/grovetools/toolchange/tui/components/table"
	"github.com/grovetools/toolchange/tui/theme"
	"github.com/spf13/cobra"
)

// NewListCmd creates the `list` command.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tracked tool change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			st, err := e.store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if e.format == tracker.FormatMachine {
				data, err := json.Marshal(st)
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeInternal, "marshal state")
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if st.TotalChanges == 0 {
				fmt.Fprintln(out, "No tool changes tracked.")
				return nil
			}

			opts := table.DefaultOptions()
			opts.Highlight = st.CurrentChange
			opts.MuteBefore = true
			tbl := table.NewStyledTable(opts).
				Headers("", "#", "Tool", "Color", "Brand", "Material", "Line")

			for i, change := range st.Changes {
				marker := theme.IconPending
				switch {
				case i < st.CurrentChange:
					marker = theme.IconSuccess
				case i == st.CurrentChange:
					marker = theme.IconArrow
				}
				tbl.Row(
					marker,
					strconv.Itoa(i+1),
					"T"+strconv.Itoa(change.ToolNumber),
					theme.Swatch(change.Color)+" "+change.Color,
					change.Brand,
					change.Material,
					strconv.Itoa(change.Line),
				)
			}

			fmt.Fprintln(out, tbl.String())
			fmt.Fprintln(out, tracker.NewReport(st).Human())
			return nil
		},
	}
}

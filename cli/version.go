package cli

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/tracker"
	"github.com/grovetools/toolchange/version"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the standard version command.
// With --format machine the build information is printed as JSON.
func NewVersionCommand(componentName string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Print the version of %s", componentName),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := tracker.ParseFormat(GetOptions(cmd).Format)
			if err != nil {
				return err
			}
			info := version.GetInfo()
			out := cmd.OutOrStdout()

			if format == tracker.FormatMachine {
				data, err := json.Marshal(info)
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeInternal, "marshal version info")
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "%s %s\n", componentName, info.Version)
			fmt.Fprintln(out, info.String())
			return nil
		},
	}
}

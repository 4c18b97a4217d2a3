package cmd

import (
	"fmt"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/state"
	"github.com/spf13/cobra"
)

// NewSchemaCmd creates the `schema` command.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the state file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := state.GenerateSchema()
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "generate schema")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

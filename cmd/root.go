// Package cmd implements the toolchange command tree.
package cmd

import (
	"fmt"

	"github.com/grovetools/toolchange/cli"
	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/pkg/profiling"
	"github.com/grovetools/toolchange/tracker"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the toolchange command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"toolchange",
		"Track manual filament changes during a multi-material print",
	)
	root.Long = `Scans a G-code file for manual tool change markers before a print starts,
keeps a cursor of how many changes have happened, and reports the next one to
the printer display and to shell macros.

Examples:
  # Scan the newest file in the printer's gcodes directory
  toolchange scan

  # From the filament change macro
  toolchange advance

  # Read the next change as JSON
  toolchange status --format machine`

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(root)
	root.PersistentPreRunE = profiler.PreRun
	root.PersistentPostRun = profiler.PostRun

	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.InvalidArgument(err.Error())
	})

	root.AddCommand(
		NewScanCmd(),
		NewAdvanceCmd(),
		NewStatusCmd(),
		NewResetCmd(),
		NewListCmd(),
		NewWatchCmd(),
		NewMonitorCmd(),
		NewLogsCmd(),
		NewPathsCmd(),
		NewConfigCmd(),
		NewSchemaCmd(),
		cli.NewVersionCommand("toolchange"),
	)
	cli.ApplyStyledHelpRecursive(root)

	return root
}

// Execute runs root with args and returns the process exit code. Errors go
// to stdout as a record in machine format and to stderr otherwise.
func Execute(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return errors.ExitOK
	}

	// Commands return coded errors; anything else came from cobra's own
	// argument and command validation.
	if errors.GetCode(err) == "" {
		err = errors.InvalidArgument(err.Error())
	}

	verbose, _ := root.PersistentFlags().GetBool("verbose")
	formatFlag, _ := root.PersistentFlags().GetString("format")
	if format, ferr := tracker.ParseFormat(formatFlag); ferr == nil && format == tracker.FormatMachine {
		fmt.Fprintln(root.OutOrStdout(), tracker.ErrorRecord(err))
	} else {
		cli.NewErrorHandler(root.ErrOrStderr(), verbose).Handle(err)
	}

	return errors.ExitCode(err)
}

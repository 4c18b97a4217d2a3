package cmd

import (
	"fmt"

	"github.com/grovetools/toolchange/tracker"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewAdvanceCmd creates the `advance` command.
func NewAdvanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Record that the next tool change has happened",
		Long: `Moves the cursor forward by one. Call it once per physical filament swap,
typically from the printer's filament change macro. Advancing past the last
change is logged and otherwise ignored.

In human format the change that just happened is printed. In machine format
the status of the following change is printed.`,
		Args: cobra.NoArgs,
		RunE: runAdvance,
	}

	cmd.Flags().Bool("display", false, "Also write the printer display snippet")

	return cmd
}

func runAdvance(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	st, err := e.store.Load()
	if err != nil {
		return err
	}

	next, advanced := tracker.Advance(st, e.logger)
	if advanced {
		if err := e.store.Save(next); err != nil {
			return err
		}
		e.logger.WithFields(logrus.Fields{
			"current_change": next.CurrentChange,
			"total_changes":  next.TotalChanges,
		}).Info("Advanced tool change")
	}

	report := tracker.NewReport(next)
	if err := writeDisplay(cmd, e, report); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case e.format == tracker.FormatMachine:
		fmt.Fprintln(out, report.Machine())
	case advanced:
		occurred := next.Changes[next.CurrentChange-1]
		fmt.Fprintln(out, tracker.Describe(next.CurrentChange, next.TotalChanges, occurred))
	default:
		fmt.Fprintln(out, tracker.CompletedMessage)
	}
	return nil
}

// writeDisplay writes the display snippet when --display is set or the
// config enables it.
func writeDisplay(cmd *cobra.Command, e *env, report tracker.Report) error {
	enabled := e.cfg.Display.Enabled
	if f := cmd.Flags().Lookup("display"); f != nil && f.Changed {
		enabled, _ = cmd.Flags().GetBool("display")
	}
	if !enabled {
		return nil
	}

	path := e.cfg.ResolveDisplayPath()
	if err := report.WriteDisplay(path, e.cfg.Display.Macro); err != nil {
		return err
	}
	e.logger.WithField("path", path).Debug("Wrote display snippet")
	return nil
}

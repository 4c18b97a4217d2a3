package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/pkg/profiling"
	"github.com/grovetools/toolchange/scanner"
	"github.com/grovetools/toolchange/state"
	"github.com/grovetools/toolchange/tracker"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the `scan` command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Scan a G-code file and reset tracking to its first tool change",
		Long: `Reads a G-code file, records every manual tool change marker in file
order, and replaces the state file with the new list and a cursor of zero.
Without a file argument the most recently modified G-code file in the
printer's gcodes directory is scanned.

Examples:
  toolchange scan ~/printer_data/gcodes/benchy.gcode
  toolchange scan --dry-run --format machine
  toolchange scan --display`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	cmd.Flags().Bool("dry-run", false, "Print the result without writing the state file")
	cmd.Flags().Bool("display", false, "Also write the printer display snippet")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	path, err := scanTarget(e, args)
	if err != nil {
		return err
	}

	matcher, err := scanner.NewMatcher(e.cfg.Scan.Markers)
	if err != nil {
		return err
	}
	s, err := scanner.New(scanner.Options{
		Matcher:    matcher,
		Colors:     e.cfg.ToolColor,
		Extensions: e.cfg.Scan.Extensions,
		Logger:     e.logger,
	})
	if err != nil {
		return err
	}

	timer := profiling.Start("scan " + filepath.Base(path))
	changes, err := s.ScanFile(path)
	timer.Stop()
	if err != nil {
		return err
	}
	st := state.New(changes, path)

	e.logger.WithFields(logrus.Fields{
		"file":          path,
		"total_changes": st.TotalChanges,
		"dry_run":       dryRun,
	}).Info("Scan complete")

	if !dryRun {
		timer := profiling.Start("save state")
		err := e.store.Save(st)
		timer.Stop()
		if err != nil {
			return err
		}
		if err := writeDisplay(cmd, e, tracker.NewReport(st)); err != nil {
			return err
		}
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

	fmt.Fprintf(out, "PRE_SCAN_COMPLETE: %d tool changes found.\n", st.TotalChanges)
	if dryRun {
		fmt.Fprintln(out, "Dry run: state file not written.")
		for i, change := range st.Changes {
			fmt.Fprintln(out, tracker.Describe(i+1, st.TotalChanges, change))
		}
		return nil
	}
	fmt.Fprintf(out, "Data saved to: %s\n", e.store.Path())
	return nil
}

// scanTarget returns the absolute path to scan: the argument when given,
// otherwise the newest G-code file in the configured directory.
func scanTarget(e *env, args []string) (string, error) {
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", errors.InvalidArgument(fmt.Sprintf("invalid path %q", args[0]))
		}
		return abs, nil
	}

	dir := e.cfg.ResolveGcodeDir()
	if dir == "" {
		return "", errors.InvalidArgument("no G-code file given and no gcodes directory could be resolved")
	}
	path, err := scanner.LatestFile(dir, scanner.LocateOptions{
		Extensions: e.cfg.Scan.Extensions,
		Include:    e.cfg.Scan.Include,
		Exclude:    e.cfg.Scan.Exclude,
	})
	if err != nil {
		return "", err
	}
	e.logger.WithField("file", path).Debug("Selected newest G-code file")
	return path, nil
}

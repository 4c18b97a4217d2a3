package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/toolchange/pkg/watcher"
	"github.com/grovetools/toolchange/tracker"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the `watch` command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the status every time the state file changes",
		Long: `Prints the current status, then a new status line each time the state
file is rewritten by scan, advance or reset. Missing or corrupt data is
reported and watching continues. Stops on Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().Bool("display", false, "Also write the printer display snippet on every change")
	cmd.Flags().Duration("debounce", watcher.DefaultDebounce, "Quiet period before a change is reported")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")

	w, err := watcher.New(e.store.Path(), debounce, e.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := watchContext(cmd.Context())
	defer stop()
	go w.Run(ctx)

	e.logger.WithField("state_file", e.store.Path()).Debug("Watching state file")
	render := func() {
		st, err := e.store.Load()
		if err != nil {
			printWatchError(cmd, e, err)
			return
		}
		report := tracker.NewReport(st)
		if err := writeDisplay(cmd, e, report); err != nil {
			e.logger.WithError(err).Warn("Failed to write display snippet")
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Render(e.format))
	}

	render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes():
			render()
		}
	}
}

// printWatchError reports a load failure without ending the watch.
func printWatchError(cmd *cobra.Command, e *env, err error) {
	if e.format == tracker.FormatMachine {
		fmt.Fprintln(cmd.OutOrStdout(), tracker.ErrorRecord(err))
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", time.Now().Format("15:04:05"), err)
}

// watchContext is used by commands that stop on SIGINT or SIGTERM.
func watchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

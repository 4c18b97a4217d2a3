package cmd

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/pkg/watcher"
	"github.com/grovetools/toolchange/tui"
	"github.com/grovetools/toolchange/tui/monitor"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewMonitorCmd creates the `monitor` command.
func NewMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Interactive view of the tool changes that follows the printer",
		Long: `Opens a full screen view of every tracked tool change with the next one
highlighted. The view reloads whenever the state file changes. It never
modifies the state file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.InvalidArgument("monitor needs an interactive terminal; use 'toolchange watch' instead")
			}

			w, err := watcher.New(e.store.Path(), watcher.DefaultDebounce, e.logger)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := watchContext(cmd.Context())
			defer stop()
			go w.Run(ctx)

			tui.InitializeTUI()
			program := tea.NewProgram(
				monitor.New(e.store, w.Changes()),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
			)
			if _, err := program.Run(); err != nil && ctx.Err() == nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "monitor failed")
			}
			return nil
		},
	}
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

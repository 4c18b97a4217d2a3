package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/grovetools/toolchange/config"
	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/logging"
	"github.com/grovetools/toolchange/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists every location toolchange reads or writes.
type PathsOutput struct {
	StateFile        string `json:"state_file"`
	PrinterConfigDir string `json:"printer_config_dir"`
	GcodeDir         string `json:"gcode_dir"`
	DisplayFile      string `json:"display_file"`
	ConfigDir        string `json:"config_dir"`
	StateDir         string `json:"state_dir"`
	CacheDir         string `json:"cache_dir"`
	LogFile          string `json:"log_file"`
}

// NewPathsCmd creates the `paths` command.
func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved file locations as JSON",
		Long: `Print the resolved file locations as JSON.

- state_file: the tracking document (--state-file, TOOLCHANGE_STATE_FILE,
  state_file in config, the printer config dir, then the temp dir)
- printer_config_dir: the Klipper config directory, empty when none was found
- gcode_dir: searched by 'scan' when no file is given
- display_file: the display snippet written by --display
- config_dir, state_dir, cache_dir: toolchange's own XDG directories
- log_file: today's log file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			printerDir := e.cfg.PrinterConfigDir
			if printerDir == "" {
				printerDir = config.ResolvePrinterConfigDir()
			}

			output := PathsOutput{
				StateFile:        e.store.Path(),
				PrinterConfigDir: printerDir,
				GcodeDir:         e.cfg.ResolveGcodeDir(),
				DisplayFile:      e.cfg.ResolveDisplayPath(),
				ConfigDir:        paths.ConfigDir(),
				StateDir:         paths.StateDir(),
				CacheDir:         paths.CacheDir(),
				LogFile:          logging.LogFilePath("toolchange", logging.FromConfig(e.cfg), time.Now()),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "marshal paths")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}
}

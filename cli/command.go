package cli

import (
	"github.com/grovetools/toolchange/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the global flags shared by every toolchange command.
type CommandOptions struct {
	ConfigFile string
	StateFile  string
	Verbose    bool
	Format     string
}

// NewStandardCommand creates a root command with the standard toolchange flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to a toolchange.yml or toolchange.toml config file")
	cmd.PersistentFlags().String("state-file", "", "Path to the tracking state file")
	cmd.PersistentFlags().String("format", "human", "Output format: human or machine")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger returns the toolchange logger. --verbose raises it to debug and
// copies its lines to stderr.
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	entry := logging.NewLogger("toolchange")

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logging.EnableDebug(entry)
	}

	return entry
}

// GetOptions extracts the global options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	stateFile, _ := cmd.Flags().GetString("state-file")
	verbose, _ := cmd.Flags().GetBool("verbose")
	format, _ := cmd.Flags().GetString("format")

	return CommandOptions{
		ConfigFile: configFile,
		StateFile:  stateFile,
		Verbose:    verbose,
		Format:     format,
	}
}

package cmd

import (
	"os"

	"github.com/grovetools/toolchange/cli"
	"github.com/grovetools/toolchange/config"
	"github.com/grovetools/toolchange/logging"
	"github.com/grovetools/toolchange/pkg/profiling"
	"github.com/grovetools/toolchange/state"
	"github.com/grovetools/toolchange/tracker"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// env is what every command needs once flags and config are resolved.
type env struct {
	opts   cli.CommandOptions
	cfg    *config.Config
	store  *state.Store
	format tracker.Format
	logger *logrus.Entry
}

// loadEnv validates --format, loads the layered config, configures logging
// from it and resolves the state file.
func loadEnv(cmd *cobra.Command) (*env, error) {
	opts := cli.GetOptions(cmd)

	format, err := tracker.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	timer := profiling.Start("load config")
	cwd, _ := os.Getwd()
	cfg, err := config.Load(config.Options{
		ConfigFile: opts.ConfigFile,
		StartDir:   cwd,
	})
	timer.Stop()
	if err != nil {
		return nil, err
	}

	logging.Configure(logging.FromConfig(cfg))
	logger := cli.GetLogger(cmd)

	statePath := cfg.ResolveStateFile(opts.StateFile)
	logger.WithField("state_file", statePath).Debug("Resolved state file")

	return &env{
		opts:   opts,
		cfg:    cfg,
		store:  state.NewStore(statePath),
		format: format,
		logger: logger,
	}, nil
}

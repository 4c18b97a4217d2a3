package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/toolchange/cli"
	"github.com/grovetools/toolchange/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd creates the `config` command.
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display the layered configuration",
		Long: `Shows how the final configuration is built by merging layers:
1. Global config (~/.config/toolchange/toolchange.yml)
2. Project config (toolchange.yml found upward from the working directory,
   in the printer config dir, or given with --config)
3. Environment (TOOLCHANGE_STATE_FILE, TOOLCHANGE_GCODE_DIR, PRINTER_CONFIG_DIR)
This is useful for debugging configuration issues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cwd, _ := os.Getwd()

			layered, err := config.LoadLayered(config.Options{
				ConfigFile: opts.ConfigFile,
				StartDir:   cwd,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printLayer(out, "GLOBAL CONFIG", layered.FilePaths[config.SourceGlobal], layered.Global)
			printLayer(out, "PROJECT CONFIG", layered.FilePaths[config.SourceProject], layered.Project)
			printLayer(out, "ENVIRONMENT", "", layered.Env)
			printLayer(out, "FINAL MERGED CONFIG", "", layered.Final)
			return nil
		},
	}
}

func printLayer(out io.Writer, title, path string, layer interface{}) {
	switch v := layer.(type) {
	case nil:
		return
	case map[string]interface{}:
		if len(v) == 0 {
			return
		}
	}

	fmt.Fprintf(out, "--- # %s\n", title)
	if path != "" {
		fmt.Fprintf(out, "# Source: %s\n", path)
	}
	data, err := yaml.Marshal(layer)
	if err != nil {
		fmt.Fprintf(out, "# unprintable: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(data))
}

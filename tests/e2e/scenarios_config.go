package main

import (
	"path/filepath"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// ConfigLayeringScenario verifies that the project config overrides the global one.
func ConfigLayeringScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "toolchange-config-layering",
		Description: "Global and project toolchange.yml files are merged with the project winning.",
		Tags:        []string{"toolchange", "config"},
		Steps: []harness.Step{
			harness.NewStep("Write layered configs and print them", func(ctx *harness.Context) error {
				globalDir := filepath.Join(ctx.HomeDir(), ".config", "toolchange")
				if err := fs.CreateDir(globalDir); err != nil {
					return err
				}
				globalYAML := "gcode_dir: /global/gcodes\ndisplay:\n  macro: _GLOBAL_STATUS\n"
				if err := fs.WriteString(filepath.Join(globalDir, "toolchange.yml"), globalYAML); err != nil {
					return err
				}
				projectYAML := "display:\n  macro: _PROJECT_STATUS\n"
				if err := fs.WriteString(filepath.Join(ctx.RootDir, "toolchange.yml"), projectYAML); err != nil {
					return err
				}

				stdout, _, code, err := toolchange(ctx, "config")
				if err != nil {
					return err
				}
				if err := assert.Equal(0, code, "config should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(stdout, "FINAL MERGED CONFIG", "final config block should exist"); err != nil {
					return err
				}
				if err := assert.Contains(stdout, "macro: _PROJECT_STATUS", "project macro should win"); err != nil {
					return err
				}
				return assert.Contains(stdout, "gcode_dir: /global/gcodes", "global gcode dir should be kept")
			}),
		},
	}
}

// DisplaySnippetScenario checks that --display writes the Klipper macro section.
func DisplaySnippetScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "toolchange-display-snippet",
		Description: "status --display writes the gcode_macro snippet for the printer display.",
		Tags:        []string{"toolchange", "display"},
		Steps: []harness.Step{
			harness.NewStep("Write the display snippet", func(ctx *harness.Context) error {
				gcode, stateFile, err := setupPrint(ctx)
				if err != nil {
					return err
				}
				displayFile := filepath.Join(ctx.RootDir, "display.cfg")
				configFile := filepath.Join(ctx.RootDir, "display.yml")
				if err := fs.WriteString(configFile, "display:\n  path: "+displayFile+"\n"); err != nil {
					return err
				}

				if _, _, code, err := toolchange(ctx, "scan", gcode, "--state-file", stateFile); err != nil {
					return err
				} else if err := assert.Equal(0, code, "scan should exit successfully"); err != nil {
					return err
				}
				_, _, code, err := toolchange(ctx, "status", "--display", "--config", configFile, "--state-file", stateFile)
				if err != nil {
					return err
				}
				if err := assert.Equal(0, code, "status should exit successfully"); err != nil {
					return err
				}

				content, err := fs.ReadString(displayFile)
				if err != nil {
					return err
				}
				return assert.Contains(content, "[gcode_macro _TOOL_CHANGE_STATUS]", "snippet should define the macro")
			}),
		},
	}
}

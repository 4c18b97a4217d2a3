package main

import (
	"fmt"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/harness"
)

// TrackingLifecycleScenario scans a print and advances through every change.
func TrackingLifecycleScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "toolchange-tracking-lifecycle",
		Description: "Scans a three color print, advances past the last change and checks the status at each step.",
		Tags:        []string{"toolchange", "tracking"},
		Steps: []harness.Step{
			harness.NewStep("Scan and advance through all changes", func(ctx *harness.Context) error {
				gcode, stateFile, err := setupPrint(ctx)
				if err != nil {
					return err
				}

				stdout, _, code, err := toolchange(ctx, "scan", gcode, "--state-file", stateFile)
				if err != nil {
					return err
				}
				if err := assert.Equal(0, code, "scan should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(stdout, "PRE_SCAN_COMPLETE: 3 tool changes found.", "scan should report the count"); err != nil {
					return err
				}

				expected := []string{
					"Tool Change 1 of 3 - Red (T0) at line 3",
					"Tool Change 2 of 3 - Blue (T1) at line 6",
					"Tool Change 3 of 3 - Green (T2) at line 9",
					"Tool changes completed.",
				}
				for i, want := range expected {
					stdout, _, code, err := toolchange(ctx, "advance", "--state-file", stateFile)
					if err != nil {
						return err
					}
					if err := assert.Equal(0, code, fmt.Sprintf("advance %d should exit successfully", i+1)); err != nil {
						return err
					}
					if err := assert.Equal(want, stdout, fmt.Sprintf("advance %d output", i+1)); err != nil {
						return err
					}
				}
				return nil
			}),
			harness.NewStep("Machine status after the last change", func(ctx *harness.Context) error {
				_, stateFile, err := setupPrint(ctx)
				if err != nil {
					return err
				}
				stdout, _, code, err := toolchange(ctx, "status", "--format", "machine", "--state-file", stateFile)
				if err != nil {
					return err
				}
				if err := assert.Equal(0, code, "status should exit successfully"); err != nil {
					return err
				}
				return assert.Equal(`{"status":"completed","current_change":3,"total_changes":3}`, stdout, "completed record")
			}),
			harness.NewStep("Reset returns to the first change", func(ctx *harness.Context) error {
				_, stateFile, err := setupPrint(ctx)
				if err != nil {
					return err
				}
				stdout, _, code, err := toolchange(ctx, "reset", "--state-file", stateFile)
				if err != nil {
					return err
				}
				if err := assert.Equal(0, code, "reset should exit successfully"); err != nil {
					return err
				}
				return assert.Equal("Tool Change 1 of 3 - Red (T0) at line 3", stdout, "reset status")
			}),
		},
	}
}

// VersionScenario tests the 'version' command.
func VersionScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "toolchange-version",
		Steps: []harness.Step{
			harness.NewStep("Run 'toolchange version'", func(ctx *harness.Context) error {
				stdout, _, code, err := toolchange(ctx, "version")
				if err != nil {
					return err
				}
				if err := assert.Equal(0, code, "toolchange version should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(stdout, "toolchange ", "Output should start with the binary name"); err != nil {
					return err
				}
				return assert.Contains(stdout, "Commit:", "Output should contain Commit")
			}),
		},
	}
}

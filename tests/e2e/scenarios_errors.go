package main

import (
	"path/filepath"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// MissingStateScenario checks the exit code and error record without a prior scan.
func MissingStateScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "toolchange-missing-state",
		Description: "Status and advance report NOT_FOUND with exit code 1 when no scan has run.",
		Tags:        []string{"toolchange", "errors"},
		Steps: []harness.Step{
			harness.NewStep("Status without a state file", func(ctx *harness.Context) error {
				stateFile := filepath.Join(ctx.RootDir, "missing.json")
				stdout, _, code, err := toolchange(ctx, "status", "--format", "machine", "--state-file", stateFile)
				if err != nil {
					return err
				}
				if err := assert.Equal(1, code, "missing state should exit 1"); err != nil {
					return err
				}
				return assert.Contains(stdout, `"code":"NOT_FOUND"`, "error record should carry the code")
			}),
		},
	}
}

// CorruptStateScenario checks that a damaged state file is reported and left alone.
func CorruptStateScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "toolchange-corrupt-state",
		Description: "A state file whose cursor is past the end exits 2 and is not modified.",
		Tags:        []string{"toolchange", "errors"},
		Steps: []harness.Step{
			harness.NewStep("Advance on a corrupt state file", func(ctx *harness.Context) error {
				stateFile := filepath.Join(ctx.RootDir, "corrupt.json")
				content := `{"current_change":4,"total_changes":1,"changes":[{"tool_number":0,"color":"Red","line":3}]}`
				if err := fs.WriteString(stateFile, content); err != nil {
					return err
				}

				_, stderr, code, err := toolchange(ctx, "advance", "--state-file", stateFile)
				if err != nil {
					return err
				}
				if err := assert.Equal(2, code, "corrupt state should exit 2"); err != nil {
					return err
				}
				return assert.Contains(stderr, "Error:", "the error should be printed to stderr")
			}),
		},
	}
}

// InvalidArgumentScenario checks that usage errors exit 3.
func InvalidArgumentScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "toolchange-invalid-argument",
		Description: "An unknown --format value exits 3.",
		Tags:        []string{"toolchange", "errors"},
		Steps: []harness.Step{
			harness.NewStep("Unknown format", func(ctx *harness.Context) error {
				_, stderr, code, err := toolchange(ctx, "status", "--format", "xml")
				if err != nil {
					return err
				}
				if err := assert.Equal(3, code, "invalid format should exit 3"); err != nil {
					return err
				}
				return assert.Contains(stderr, "invalid format", "the error should name the problem")
			}),
		},
	}
}

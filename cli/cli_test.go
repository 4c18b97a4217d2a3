package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/grovetools/toolchange/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOptions(t *testing.T) {
	root := NewStandardCommand("toolchange", "test")
	child := &cobra.Command{Use: "status", RunE: func(*cobra.Command, []string) error { return nil }}
	root.AddCommand(child)

	root.SetArgs([]string{"status", "--state-file", "/tmp/s.json", "-v", "--format", "machine", "-c", "/tmp/c.yml"})
	require.NoError(t, root.Execute())

	opts := GetOptions(child)
	assert.Equal(t, CommandOptions{
		ConfigFile: "/tmp/c.yml",
		StateFile:  "/tmp/s.json",
		Verbose:    true,
		Format:     "machine",
	}, opts)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "not found",
			err:      errors.StateNotFound("/cfg/tool_changes.json"),
			contains: []string{"no data found", "/cfg/tool_changes.json"},
		},
		{
			name:     "corrupt",
			err:      errors.CorruptState("/cfg/tool_changes.json", "invalid JSON", nil),
			contains: []string{"corrupt data: invalid JSON", "toolchange scan"},
		},
		{
			name:     "invalid argument",
			err:      errors.InvalidFormat("xml"),
			contains: []string{"invalid format", "--help"},
		},
		{
			name:     "plain",
			err:      fmt.Errorf("boom"),
			contains: []string{"boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			returned := NewErrorHandler(&buf, false).Handle(tt.err)
			assert.Equal(t, tt.err, returned)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestErrorHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	err := errors.SourceNotFound("/g/x.gcode", fmt.Errorf("permission denied"))
	NewErrorHandler(&buf, true).Handle(err)
	assert.Contains(t, buf.String(), "Caused by: permission denied")
	assert.Contains(t, buf.String(), `"code": "NOT_FOUND"`)
}

func TestWrapText(t *testing.T) {
	wrapped := wrapText("one two three four five six", 10)
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), 10)
	}
	assert.Equal(t, "short\nkeep", wrapText("short\nkeep", 10))
}

func TestStyledHelp(t *testing.T) {
	root := NewStandardCommand("toolchange", "Track manual tool changes")
	root.AddCommand(&cobra.Command{Use: "status", Short: "Show the next tool change", Run: func(*cobra.Command, []string) {}})
	ApplyStyledHelpRecursive(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "TOOLCHANGE")
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "--state-file")
}

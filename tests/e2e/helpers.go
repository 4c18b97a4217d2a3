package main

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// findToolchangeBinary finds the toolchange binary under test.
// Build it into a directory on PATH first: go build -o bin/ ./cmd/toolchange
func findToolchangeBinary() (string, error) {
	path, err := exec.LookPath("toolchange")
	if err != nil {
		return "", fmt.Errorf("could not find 'toolchange' binary in PATH. Build it with 'go build -o bin/ ./cmd/toolchange' and add bin to PATH")
	}
	return path, nil
}

// threeColorGcode is a short print with Red, Blue and Green changes at lines 3, 6 and 9.
const threeColorGcode = `G28
G1 X10 Y10 E0.1
; MANUAL_TOOL_CHANGE T0 COLOR=Red
G1 X20 Y10 E0.2
G1 X20 Y20 E0.3
; MANUAL_TOOL_CHANGE T1 COLOR=Blue
G1 X10 Y20 E0.4
G1 X10 Y10 E0.5
; MANUAL_TOOL_CHANGE T2 COLOR=Green
G1 X15 Y15 E0.6
`

// setupPrint writes the three color print and returns it with the state file path.
func setupPrint(ctx *harness.Context) (gcode, stateFile string, err error) {
	gcode = filepath.Join(ctx.RootDir, "gcodes", "print.gcode")
	if err := fs.WriteString(gcode, threeColorGcode); err != nil {
		return "", "", err
	}
	return gcode, filepath.Join(ctx.RootDir, "printer_data", "config", "tool_changes.json"), nil
}

// toolchange runs the binary with args and returns trimmed stdout, stderr and the exit code.
func toolchange(ctx *harness.Context, args ...string) (string, string, int, error) {
	binary, err := findToolchangeBinary()
	if err != nil {
		return "", "", 0, err
	}
	cmd := ctx.Command(binary, args...).Dir(ctx.RootDir)
	result := cmd.Run()
	ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
	return strings.TrimSpace(result.Stdout), result.Stderr, result.ExitCode, nil
}

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// GcodeLines builds a G-code body of total lines. Lines listed in markers
// (1-based) get that text; every other line is an ordinary move.
func GcodeLines(total int, markers map[int]string) string {
	var b strings.Builder
	for line := 1; line <= total; line++ {
		if text, ok := markers[line]; ok {
			b.WriteString(text)
		} else {
			b.WriteString(fmt.Sprintf("G1 X%d.%d Y%d.%d E0.0%d", line%200, line%10, (line*7)%200, line%10, line%9))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ThreeColorPrint is a 400 line print with Red, Blue and Green changes at
// lines 10, 120 and 340.
func ThreeColorPrint() string {
	return GcodeLines(400, map[int]string{
		10:  "; MANUAL_TOOL_CHANGE T0 COLOR=Red",
		120: "; MANUAL_TOOL_CHANGE T1 COLOR=Blue",
		340: "; MANUAL_TOOL_CHANGE T2 COLOR=Green",
	})
}

// WriteFile writes content under dir, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "failed to write %s", name)
	return path
}

// SetModTime sets both access and modification time of path.
func SetModTime(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mod, mod))
}

// ReadFile returns the content of path as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

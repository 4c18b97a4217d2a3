package scanner

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/toolchange/config"
	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/state"
	"github.com/grovetools/toolchange/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(t *testing.T, rules []config.MarkerRule) *Scanner {
	t.Helper()
	m, err := NewMatcher(rules)
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.SetDefaults()
	s, err := New(Options{Matcher: m, Colors: cfg.ToolColor, Extensions: config.DefaultExtensions})
	require.NoError(t, err)
	return s
}

func TestScanThreeColorPrint(t *testing.T) {
	s := newTestScanner(t, nil)
	path := testutil.WriteFile(t, t.TempDir(), "benchy.gcode", testutil.ThreeColorPrint())

	changes, err := s.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, state.ToolChangeEvent{ToolNumber: 0, Color: "Red", Line: 10}, changes[0])
	assert.Equal(t, state.ToolChangeEvent{ToolNumber: 1, Color: "Blue", Line: 120}, changes[1])
	assert.Equal(t, state.ToolChangeEvent{ToolNumber: 2, Color: "Green", Line: 340}, changes[2])

	st := state.New(changes, path)
	assert.Equal(t, 3, st.TotalChanges)
	assert.Equal(t, 0, st.CurrentChange)
}

func TestScanNoMarkers(t *testing.T) {
	s := newTestScanner(t, nil)

	changes, err := s.Scan(strings.NewReader(testutil.GcodeLines(50, nil)))
	require.NoError(t, err)
	assert.NotNil(t, changes)
	assert.Empty(t, changes)
}

func TestScanToolColorFallback(t *testing.T) {
	s := newTestScanner(t, nil)
	gcode := testutil.GcodeLines(6, map[int]string{
		2: "; MANUAL_TOOL_CHANGE T1",
		4: "; MANUAL_TOOL_CHANGE T4",
		6: "; MANUAL_TOOL_CHANGE T9",
	})

	changes, err := s.Scan(strings.NewReader(gcode))
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, "blue", changes[0].Color)
	assert.Equal(t, "clear", changes[1].Color)
	assert.Equal(t, state.UnknownColor, changes[2].Color)
	assert.Equal(t, 9, changes[2].ToolNumber)
}

func TestScanCRLF(t *testing.T) {
	s := newTestScanner(t, nil)
	gcode := "G28\r\n; MANUAL_TOOL_CHANGE T3 COLOR=Purple\r\nG1 X1\r\n"

	changes, err := s.Scan(strings.NewReader(gcode))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "Purple", changes[0].Color)
	assert.Equal(t, 2, changes[0].Line)
}

func TestScanLastLineWithoutNewline(t *testing.T) {
	s := newTestScanner(t, nil)

	changes, err := s.Scan(strings.NewReader("G28\nM600"))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 2, changes[0].Line)
	assert.Equal(t, 0, changes[0].ToolNumber)
}

func TestMatcherDefaultRules(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"comment", "macro", "m600"}, m.Rules())

	tests := []struct {
		name  string
		line  string
		match bool
		want  Marker
	}{
		{
			name:  "comment marker",
			line:  "; MANUAL_TOOL_CHANGE T2",
			match: true,
			want:  Marker{Rule: "comment", Tool: 2},
		},
		{
			name:  "comment marker with quoted metadata",
			line:  `; MANUAL_TOOL_CHANGE T1 COLOR="Galaxy Black" BRAND=Prusament MATERIAL=PETG`,
			match: true,
			want:  Marker{Rule: "comment", Tool: 1, Color: "Galaxy Black", Brand: "Prusament", Material: "PETG"},
		},
		{
			name:  "lower case metadata keys",
			line:  "; MANUAL_TOOL_CHANGE T0 colour=white brand='Polymaker Pro' material=PLA",
			match: true,
			want:  Marker{Rule: "comment", Tool: 0, Color: "white", Brand: "Polymaker Pro", Material: "PLA"},
		},
		{
			name:  "klipper macro call",
			line:  "MANUAL_TOOL_CHANGE T=3 COLOR=Orange",
			match: true,
			want:  Marker{Rule: "macro", Tool: 3, Color: "Orange"},
		},
		{
			name:  "klipper macro call without tool",
			line:  "manual_tool_change COLOR=Red",
			match: true,
			want:  Marker{Rule: "macro", Tool: 0, Color: "Red"},
		},
		{
			name:  "m600 with tool and comment metadata",
			line:  "M600 T1 ; color=Blue material=ABS",
			match: true,
			want:  Marker{Rule: "m600", Tool: 1, Color: "Blue", Material: "ABS"},
		},
		{
			name:  "plain m600",
			line:  "  M600",
			match: true,
			want:  Marker{Rule: "m600", Tool: 0},
		},
		{
			name:  "commented out m600",
			line:  "; M600",
			match: false,
		},
		{
			name:  "similar gcode",
			line:  "M6000 T1",
			match: false,
		},
		{
			name:  "macro mentioned in a comment without tool",
			line:  "; MANUAL_TOOL_CHANGE",
			match: false,
		},
		{
			name:  "ordinary move",
			line:  "G1 X10 Y10 E0.5",
			match: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Match(tt.line)
			assert.Equal(t, tt.match, ok)
			if tt.match {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMatcherCustomRules(t *testing.T) {
	m, err := NewMatcher([]config.MarkerRule{
		{Pattern: `^;COLOR_CHANGE,T(?P<tool>\d+),(?P<color>#[0-9A-Fa-f]{6})`},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"rule1"}, m.Rules())

	got, ok := m.Match(";COLOR_CHANGE,T1,#FF0000")
	require.True(t, ok)
	assert.Equal(t, Marker{Rule: "rule1", Tool: 1, Color: "#FF0000"}, got)

	_, ok = m.Match("; MANUAL_TOOL_CHANGE T1")
	assert.False(t, ok, "custom rules replace the defaults")
}

func TestMatcherNamedGroupWinsOverMetadata(t *testing.T) {
	m, err := NewMatcher([]config.MarkerRule{
		{Name: "named", Pattern: `^TC (?P<color>\w+)`},
	})
	require.NoError(t, err)

	got, ok := m.Match("TC Red COLOR=Blue T=4")
	require.True(t, ok)
	assert.Equal(t, "Red", got.Color)
	assert.Equal(t, 4, got.Tool)
}

func TestNewMatcherInvalidPattern(t *testing.T) {
	_, err := NewMatcher([]config.MarkerRule{{Pattern: "T(["}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestScanFileErrors(t *testing.T) {
	s := newTestScanner(t, nil)
	dir := t.TempDir()

	_, err := s.ScanFile(filepath.Join(dir, "missing.gcode"))
	require.Error(t, err)
	assert.Equal(t, errors.ExitNotFound, errors.ExitCode(err))

	txt := testutil.WriteFile(t, dir, "notes.txt", "; MANUAL_TOOL_CHANGE T1\n")
	_, err = s.ScanFile(txt)
	require.Error(t, err)
	assert.Equal(t, errors.ExitInvalidArgument, errors.ExitCode(err))

	upper := testutil.WriteFile(t, dir, "PART.GCODE", "; MANUAL_TOOL_CHANGE T1\n")
	changes, err := s.ScanFile(upper)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestCheckExtension(t *testing.T) {
	assert.NoError(t, CheckExtension("a.gco", config.DefaultExtensions))
	assert.NoError(t, CheckExtension("a.G", config.DefaultExtensions))
	assert.Error(t, CheckExtension("a.gcode.bak", config.DefaultExtensions))
	assert.NoError(t, CheckExtension("anything", nil))
}

func TestLatestFile(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	old := testutil.WriteFile(t, dir, "old.gcode", "G28\n")
	newer := testutil.WriteFile(t, dir, "sub/newer.gcode", "G28\n")
	newest := testutil.WriteFile(t, dir, "archive/newest.gcode", "G28\n")
	notes := testutil.WriteFile(t, dir, "notes.txt", "hi\n")
	hidden := testutil.WriteFile(t, dir, ".thumbs/hidden.gcode", "G28\n")

	testutil.SetModTime(t, old, base)
	testutil.SetModTime(t, newer, base.Add(10*time.Minute))
	testutil.SetModTime(t, newest, base.Add(20*time.Minute))
	testutil.SetModTime(t, notes, base.Add(30*time.Minute))
	testutil.SetModTime(t, hidden, base.Add(40*time.Minute))

	got, err := LatestFile(dir, LocateOptions{Extensions: config.DefaultExtensions})
	require.NoError(t, err)
	assert.Equal(t, newest, got)

	got, err = LatestFile(dir, LocateOptions{
		Extensions: config.DefaultExtensions,
		Exclude:    []string{"archive"},
	})
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	got, err = LatestFile(dir, LocateOptions{
		Extensions: config.DefaultExtensions,
		Include:    []string{"*.gcode"},
	})
	require.NoError(t, err)
	assert.Equal(t, old, got)
}

func TestLatestFileEmpty(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "readme.md", "x\n")

	_, err := LatestFile(dir, LocateOptions{Extensions: config.DefaultExtensions})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))

	_, err = LatestFile(filepath.Join(dir, "nope"), LocateOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
}

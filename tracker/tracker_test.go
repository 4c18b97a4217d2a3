package tracker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/state"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeChanges() *state.TrackingState {
	return state.New([]state.ToolChangeEvent{
		{ToolNumber: 0, Color: "Red", Line: 10},
		{ToolNumber: 1, Color: "Blue", Line: 120},
		{ToolNumber: 2, Color: "Green", Line: 340},
	}, "/tmp/print.gcode")
}

func TestAdvanceCapsAtTotal(t *testing.T) {
	logger, hook := test.NewNullLogger()
	entry := logrus.NewEntry(logger)

	st := threeChanges()
	for i := 1; i <= 3; i++ {
		var advanced bool
		st, advanced = Advance(st, entry)
		assert.True(t, advanced)
		assert.Equal(t, i, st.CurrentChange)
	}
	assert.Empty(t, hook.AllEntries())

	st, advanced := Advance(st, entry)
	assert.False(t, advanced)
	assert.Equal(t, 3, st.CurrentChange)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	st := threeChanges()
	next, _ := Advance(st, nil)
	assert.Equal(t, 0, st.CurrentChange)
	assert.Equal(t, 1, next.CurrentChange)
}

func TestAdvanceEmpty(t *testing.T) {
	st := state.New(nil, "")
	next, advanced := Advance(st, nil)
	assert.False(t, advanced)
	assert.Equal(t, 0, next.CurrentChange)
}

func TestReset(t *testing.T) {
	st := threeChanges()
	st.CurrentChange = 2
	assert.Equal(t, 0, Reset(st).CurrentChange)
	assert.Equal(t, 2, st.CurrentChange)
}

func TestReportHuman(t *testing.T) {
	st := threeChanges()
	st.CurrentChange = 1
	assert.Equal(t, "Tool Change 2 of 3 - Blue (T1) at line 120", NewReport(st).Human())

	st.CurrentChange = 3
	assert.Equal(t, CompletedMessage, NewReport(st).Human())

	assert.Equal(t, CompletedMessage, NewReport(state.New(nil, "")).Human())
}

func TestDescribeBrandMaterial(t *testing.T) {
	event := state.ToolChangeEvent{ToolNumber: 1, Color: "Galaxy Black", Brand: "Prusament", Material: "PETG", Line: 7}
	assert.Equal(t, "Tool Change 1 of 2 - Galaxy Black (T1) at line 7 [Prusament PETG]", Describe(1, 2, event))

	event.Brand = ""
	assert.Equal(t, "Tool Change 1 of 2 - Galaxy Black (T1) at line 7 [PETG]", Describe(1, 2, event))
}

func TestReportMachine(t *testing.T) {
	st := threeChanges()
	st.CurrentChange = 1
	assert.JSONEq(t,
		`{"status":"pending","change_number":2,"total_changes":3,"tool_number":1,"color":"Blue","line":120}`,
		NewReport(st).Machine())

	st.Changes[1].Brand = "Prusament"
	st.Changes[1].Material = "PLA"
	var pending map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(NewReport(st).Machine()), &pending))
	assert.Equal(t, "Prusament", pending["brand"])
	assert.Equal(t, "PLA", pending["material"])

	st.CurrentChange = 3
	assert.JSONEq(t,
		`{"status":"completed","current_change":3,"total_changes":3}`,
		NewReport(st).Render(FormatMachine))
}

func TestErrorRecord(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", errors.StateNotFound("/tmp/x.json"), "NOT_FOUND"},
		{"corrupt", errors.CorruptState("/tmp/x.json", "invalid JSON", nil), "CORRUPT_DATA"},
		{"plain error", os.ErrPermission, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var record map[string]string
			require.NoError(t, json.Unmarshal([]byte(ErrorRecord(tt.err)), &record))
			assert.Equal(t, "error", record["status"])
			assert.Equal(t, tt.code, record["code"])
			assert.NotEmpty(t, record["message"])
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatHuman, "human": FormatHuman, "Machine": FormatMachine, "json": FormatMachine} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.Equal(t, errors.ExitInvalidArgument, errors.ExitCode(err))
}

func TestDisplaySnippet(t *testing.T) {
	st := threeChanges()
	st.CurrentChange = 1
	st.Changes[1].Brand = "Brand; with #comment"

	snippet := NewReport(st).DisplaySnippet("_TOOL_CHANGE_STATUS")
	assert.True(t, strings.HasPrefix(snippet, "# Written by toolchange"))
	assert.Contains(t, snippet, "[gcode_macro _TOOL_CHANGE_STATUS]\n")
	assert.Contains(t, snippet, `variable_status: "pending"`)
	assert.Contains(t, snippet, "variable_change_number: 2\n")
	assert.Contains(t, snippet, "variable_total_changes: 3\n")
	assert.Contains(t, snippet, "variable_tool_number: 1\n")
	assert.Contains(t, snippet, `variable_color: "Blue"`)
	assert.Contains(t, snippet, `variable_brand: "Brand with comment"`)
	assert.Contains(t, snippet, `variable_material: ""`)
	assert.Contains(t, snippet, "variable_line: 120\n")
	assert.Contains(t, snippet, "{% if status == \"pending\" %}")

	st.CurrentChange = 3
	done := NewReport(st).DisplaySnippet("X")
	assert.Contains(t, done, `variable_status: "completed"`)
	assert.Contains(t, done, "variable_change_number: 0\n")
}

func TestWriteDisplayOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "tool_change_display.cfg")
	st := threeChanges()

	require.NoError(t, NewReport(st).WriteDisplay(path, "M"))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, NewReport(st).WriteDisplay(path, "M"))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	st.CurrentChange = 2
	require.NoError(t, NewReport(st).WriteDisplay(path, "M"))
	third, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(third), `variable_color: "Green"`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package tracker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grovetools/toolchange/state"
)

// displayTemplate is a Klipper config fragment. The variables are read by
// display macros as printer["gcode_macro <name>"].<variable>.
const displayTemplate = `# Written by toolchange on every status update. Do not edit.
[gcode_macro %s]
description: Current manual tool change
variable_status: %s
variable_change_number: %d
variable_total_changes: %d
variable_tool_number: %d
variable_color: %s
variable_brand: %s
variable_material: %s
variable_line: %d
gcode:
  {%% if status == "pending" %%}
  RESPOND MSG="Tool change {change_number} of {total_changes}: {color} (T{tool_number})"
  {%% else %%}
  RESPOND MSG="%s"
  {%% endif %%}
`

// DisplaySnippet renders the report as a gcode_macro section named macro.
func (r Report) DisplaySnippet(macro string) string {
	status := "pending"
	if r.Completed {
		status = "completed"
	}
	return fmt.Sprintf(displayTemplate,
		macro,
		klipperString(status),
		r.ChangeNumber,
		r.TotalChanges,
		r.Event.ToolNumber,
		klipperString(r.Event.Color),
		klipperString(r.Event.Brand),
		klipperString(r.Event.Material),
		r.Event.Line,
		CompletedMessage,
	)
}

// WriteDisplay atomically replaces path with the display snippet.
func (r Report) WriteDisplay(path, macro string) error {
	return state.WriteFileAtomic(path, []byte(r.DisplaySnippet(macro)), 0644)
}

// klipperString quotes s as a Python string literal. Klipper strips
// inline comments starting at ';' or '#', so both are dropped from values.
func klipperString(s string) string {
	s = strings.NewReplacer(";", "", "#", "").Replace(s)
	return strconv.Quote(s)
}

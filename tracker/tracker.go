// Package tracker advances and reports progress through a scanned list of
// tool changes.
package tracker

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/state"
	"github.com/sirupsen/logrus"
)

// Format selects how a status is rendered.
type Format string

const (
	FormatHuman   Format = "human"
	FormatMachine Format = "machine"
)

// CompletedMessage is the human status once every change has happened.
const CompletedMessage = "Tool changes completed."

// ParseFormat validates a --format value. Empty means human.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatHuman:
		return FormatHuman, nil
	case FormatMachine, "json":
		return FormatMachine, nil
	default:
		return "", errors.InvalidFormat(s)
	}
}

// Advance returns a copy of st with the cursor moved forward by one, capped
// at the total. advanced is false when st was already complete.
func Advance(st *state.TrackingState, logger *logrus.Entry) (*state.TrackingState, bool) {
	next := *st
	if st.Completed() {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"current_change": st.CurrentChange,
				"total_changes":  st.TotalChanges,
			}).Warn("Advance requested past the last tracked tool change")
		}
		return &next, false
	}
	next.CurrentChange++
	return &next, true
}

// Reset returns a copy of st with the cursor back at the first change.
func Reset(st *state.TrackingState) *state.TrackingState {
	next := *st
	next.CurrentChange = 0
	return &next
}

// Report is the projection of a state onto its next pending change.
type Report struct {
	Completed     bool
	CurrentChange int
	TotalChanges  int
	// ChangeNumber is the 1-based number of Event. Zero when Completed.
	ChangeNumber int
	Event        state.ToolChangeEvent
}

// NewReport builds the report for st.
func NewReport(st *state.TrackingState) Report {
	r := Report{
		CurrentChange: st.CurrentChange,
		TotalChanges:  st.TotalChanges,
	}
	event, ok := st.Current()
	if !ok {
		r.Completed = true
		return r
	}
	r.ChangeNumber = st.CurrentChange + 1
	r.Event = event
	return r
}

// Describe renders one change as "Tool Change n of total - color (Tt) at line l",
// followed by " [brand material]" when either is known.
func Describe(number, total int, event state.ToolChangeEvent) string {
	text := fmt.Sprintf("Tool Change %d of %d - %s (T%d) at line %d",
		number, total, event.Color, event.ToolNumber, event.Line)
	if extra := strings.TrimSpace(event.Brand + " " + event.Material); extra != "" {
		text += " [" + extra + "]"
	}
	return text
}

// Human renders the report as a single line of text.
func (r Report) Human() string {
	if r.Completed {
		return CompletedMessage
	}
	return Describe(r.ChangeNumber, r.TotalChanges, r.Event)
}

type completedRecord struct {
	Status        string `json:"status"`
	CurrentChange int    `json:"current_change"`
	TotalChanges  int    `json:"total_changes"`
}

type pendingRecord struct {
	Status       string `json:"status"`
	ChangeNumber int    `json:"change_number"`
	TotalChanges int    `json:"total_changes"`
	ToolNumber   int    `json:"tool_number"`
	Color        string `json:"color"`
	Brand        string `json:"brand,omitempty"`
	Material     string `json:"material,omitempty"`
	Line         int    `json:"line"`
}

type errorRecord struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Machine renders the report as a compact JSON record.
func (r Report) Machine() string {
	var record interface{}
	if r.Completed {
		record = completedRecord{
			Status:        "completed",
			CurrentChange: r.CurrentChange,
			TotalChanges:  r.TotalChanges,
		}
	} else {
		record = pendingRecord{
			Status:       "pending",
			ChangeNumber: r.ChangeNumber,
			TotalChanges: r.TotalChanges,
			ToolNumber:   r.Event.ToolNumber,
			Color:        r.Event.Color,
			Brand:        r.Event.Brand,
			Material:     r.Event.Material,
			Line:         r.Event.Line,
		}
	}
	return mustMarshal(record)
}

// Render renders the report in the given format.
func (r Report) Render(format Format) string {
	if format == FormatMachine {
		return r.Machine()
	}
	return r.Human()
}

// ErrorRecord renders err as the machine error record. Errors without a
// code are reported as INTERNAL_ERROR.
func ErrorRecord(err error) string {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	message := err.Error()
	if tcErr, ok := errors.As(err); ok {
		message = tcErr.Message
	}
	return mustMarshal(errorRecord{
		Status:  "error",
		Code:    string(code),
		Message: message,
	})
}

// mustMarshal encodes records whose fields are all plain values; the
// encoder cannot fail on them.
func mustMarshal(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("tracker: marshal %T: %v", v, err))
	}
	return string(data)
}

// Package state persists the tool change tracking document.
//
// The document is a single JSON file holding the ordered list of tool changes
// found by a scan and a cursor marking how many of them have happened. Every
// command is a short-lived process that loads the file, optionally mutates it
// and saves it again, so Save always replaces the file atomically.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/grovetools/toolchange/errors"
)

// UnknownColor is the color label used when neither the marker nor the
// tool color table names one.
const UnknownColor = "Unknown"

// ToolChangeEvent is one tracked filament swap.
type ToolChangeEvent struct {
	ToolNumber int    `json:"tool_number" jsonschema:"required,minimum=0,description=Tool or extruder slot requested"`
	Color      string `json:"color" jsonschema:"description=Human color label"`
	Brand      string `json:"brand" jsonschema:"description=Filament brand when encoded in the source file"`
	Material   string `json:"material" jsonschema:"description=Filament material when encoded in the source file"`
	Line       int    `json:"line" jsonschema:"required,minimum=1,description=1-based line of the marker in the scanned file"`
}

// TrackingState is the persisted document.
type TrackingState struct {
	CurrentChange int               `json:"current_change" jsonschema:"required,minimum=0,description=Number of changes that have already happened"`
	TotalChanges  int               `json:"total_changes" jsonschema:"required,minimum=0,description=Always the length of changes"`
	Changes       []ToolChangeEvent `json:"changes" jsonschema:"required,description=Tool changes in file order"`
	SourceFile    string            `json:"source_file,omitempty" jsonschema:"description=G-code file the changes were scanned from"`
	ScannedAt     *time.Time        `json:"scanned_at,omitempty" jsonschema:"description=When the scan ran"`
}

// New returns a fresh state for the given changes with the cursor at zero.
func New(changes []ToolChangeEvent, sourceFile string) *TrackingState {
	if changes == nil {
		changes = []ToolChangeEvent{}
	}
	now := time.Now().UTC().Truncate(time.Second)
	return &TrackingState{
		CurrentChange: 0,
		TotalChanges:  len(changes),
		Changes:       changes,
		SourceFile:    sourceFile,
		ScannedAt:     &now,
	}
}

// Completed reports whether every tracked change has happened.
func (s *TrackingState) Completed() bool {
	return s.CurrentChange >= s.TotalChanges
}

// Current returns the next pending change, or false in the terminal state.
func (s *TrackingState) Current() (ToolChangeEvent, bool) {
	if s.Completed() || s.CurrentChange < 0 || s.CurrentChange >= len(s.Changes) {
		return ToolChangeEvent{}, false
	}
	return s.Changes[s.CurrentChange], true
}

// Check verifies the cross-field invariants that the schema cannot express.
func (s *TrackingState) Check() error {
	if s.TotalChanges != len(s.Changes) {
		return fmt.Errorf("total_changes is %d but %d changes are listed", s.TotalChanges, len(s.Changes))
	}
	if s.CurrentChange < 0 || s.CurrentChange > s.TotalChanges {
		return fmt.Errorf("current_change %d is outside 0..%d", s.CurrentChange, s.TotalChanges)
	}
	return nil
}

// Store reads and writes the tracking document at a fixed path.
type Store struct {
	path string
}

// NewStore returns a Store for the given state file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the state file is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads and validates the state file.
// A missing file is a NOT_FOUND error; anything unusable is CORRUPT_DATA.
func (s *Store) Load() (*TrackingState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.StateNotFound(s.path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeNotFound, "read state file").
			WithDetail("path", s.path)
	}
	return Decode(data, s.path)
}

// Decode parses and validates a state document. path is used for error details only.
func Decode(data []byte, path string) (*TrackingState, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.CorruptState(path, "invalid JSON", err)
	}

	validator, err := DefaultValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(raw); err != nil {
		return nil, errors.CorruptState(path, err.Error(), nil)
	}

	var st TrackingState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.CorruptState(path, "unexpected field types", err)
	}
	if st.Changes == nil {
		st.Changes = []ToolChangeEvent{}
	}
	for i := range st.Changes {
		if !hasColor(raw, i) {
			st.Changes[i].Color = UnknownColor
		}
	}
	if err := st.Check(); err != nil {
		return nil, errors.CorruptState(path, err.Error(), nil)
	}
	return &st, nil
}

// hasColor reports whether change i of the raw document carries a color
// key. An explicit empty color is kept as written.
func hasColor(raw interface{}, i int) bool {
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return false
	}
	changes, ok := doc["changes"].([]interface{})
	if !ok || i >= len(changes) {
		return false
	}
	change, ok := changes[i].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = change["color"]
	return ok
}

// Save writes the state atomically: the document goes to a temp file in the
// same directory which is then renamed over the target. Readers see either
// the old or the new file, never a partial one.
func (s *Store) Save(st *TrackingState) error {
	if st.Changes == nil {
		st.Changes = []ToolChangeEvent{}
	}
	st.TotalChanges = len(st.Changes)
	if err := st.Check(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "refusing to save inconsistent state")
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "marshal state")
	}
	data = append(data, '\n')

	return WriteFileAtomic(s.path, data, 0644)
}

// WriteFileAtomic replaces path with data via a temp file and rename.
// Under sudo the file is handed to SUDO_USER before it becomes visible.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create state directory").
			WithDetail("dir", dir)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create temp file").
			WithDetail("dir", dir)
	}

	successful := false
	defer func() {
		if !successful {
			os.Remove(tempFile.Name())
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "write temp file")
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "sync temp file")
	}
	if err := tempFile.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "close temp file")
	}
	if err := os.Chmod(tempFile.Name(), perm); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "set file mode")
	}
	if uid, gid, ok := sudoOwner(); ok {
		if err := os.Chown(tempFile.Name(), uid, gid); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "set file owner").
				WithDetail("uid", uid)
		}
	}

	if err := os.Rename(tempFile.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "replace file").
			WithDetail("path", path)
	}

	successful = true
	return nil
}

// Remove deletes the state file. A missing file is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrCodeInternal, "remove state file").
			WithDetail("path", s.path)
	}
	return nil
}

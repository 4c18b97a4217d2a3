// Package scanner finds tool change markers in G-code files.
package scanner

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/state"
	"github.com/sirupsen/logrus"
)

// ColorLookup returns the configured color for a tool, or "" when unknown.
type ColorLookup func(tool int) string

// Scanner turns a G-code stream into an ordered list of tool changes.
type Scanner struct {
	matcher    *Matcher
	colors     ColorLookup
	extensions []string
	logger     *logrus.Entry
}

// Options configures a Scanner.
type Options struct {
	Matcher    *Matcher
	Colors     ColorLookup
	Extensions []string
	Logger     *logrus.Entry
}

// New creates a Scanner. A nil matcher uses DefaultRules.
func New(opts Options) (*Scanner, error) {
	m := opts.Matcher
	if m == nil {
		var err error
		if m, err = NewMatcher(nil); err != nil {
			return nil, err
		}
	}
	colors := opts.Colors
	if colors == nil {
		colors = func(int) string { return "" }
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scanner{
		matcher:    m,
		colors:     colors,
		extensions: opts.Extensions,
		logger:     logger,
	}, nil
}

// Scan reads r line by line and returns one event per marker, in file order.
// Line numbers are 1-based. Zero markers yields an empty, non-nil slice.
func (s *Scanner) Scan(r io.Reader) ([]state.ToolChangeEvent, error) {
	changes := []state.ToolChangeEvent{}
	reader := bufio.NewReader(r)
	lineNum := 0

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			lineNum++
			if marker, ok := s.matcher.Match(strings.TrimRight(line, "\r\n")); ok {
				event := s.toEvent(marker, lineNum)
				s.logger.WithFields(logrus.Fields{
					"line": lineNum,
					"tool": event.ToolNumber,
					"rule": marker.Rule,
				}).Debug("Found tool change marker")
				changes = append(changes, event)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeNotFound, "read G-code").
				WithDetail("line", lineNum)
		}
	}

	return changes, nil
}

func (s *Scanner) toEvent(marker Marker, line int) state.ToolChangeEvent {
	color := marker.Color
	if color == "" {
		color = s.colors(marker.Tool)
	}
	if color == "" {
		color = state.UnknownColor
	}
	return state.ToolChangeEvent{
		ToolNumber: marker.Tool,
		Color:      color,
		Brand:      marker.Brand,
		Material:   marker.Material,
		Line:       line,
	}
}

// ScanFile checks the extension of path, then scans it.
func (s *Scanner) ScanFile(path string) ([]state.ToolChangeEvent, error) {
	if err := CheckExtension(path, s.extensions); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.SourceNotFound(path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.SourceNotFound(path, err)
	}
	if info.IsDir() {
		return nil, errors.InvalidArgument("G-code path is a directory").WithDetail("path", path)
	}

	s.logger.WithField("file", path).Debug("Scanning G-code file")
	return s.Scan(file)
}

// CheckExtension returns INVALID_ARGUMENT unless path ends with one of
// extensions, compared case-insensitively. An empty list accepts any path.
func CheckExtension(path string, extensions []string) error {
	if len(extensions) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range extensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return errors.NotGcodeFile(path, extensions)
}

package errors

import (
	"fmt"
	"strings"
)

// StateNotFound reports that no tracking data exists at path.
func StateNotFound(path string) *ToolchangeError {
	return New(ErrCodeNotFound, "no data found: run 'toolchange scan' before printing").
		WithDetail("path", path)
}

// SourceNotFound reports a missing or unreadable G-code file.
func SourceNotFound(path string, cause error) *ToolchangeError {
	return Wrap(cause, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path)).
		WithDetail("path", path)
}

// NoGcodeFiles reports an empty G-code directory.
func NoGcodeFiles(dir string) *ToolchangeError {
	return New(ErrCodeNotFound, fmt.Sprintf("no G-code files found in %s", dir)).
		WithDetail("dir", dir)
}

// CorruptState reports a state file that exists but cannot be used.
func CorruptState(path string, reason string, cause error) *ToolchangeError {
	return Wrap(cause, ErrCodeCorruptData, fmt.Sprintf("corrupt data: %s", reason)).
		WithDetail("path", path).
		WithDetail("hint", "run 'toolchange scan' to rebuild the tracking data")
}

// DependencyMissing reports an unavailable runtime capability.
func DependencyMissing(name string, cause error) *ToolchangeError {
	return Wrap(cause, ErrCodeDependencyMissing, fmt.Sprintf("required dependency unavailable: %s", name)).
		WithDetail("dependency", name)
}

// InvalidArgument reports a bad command invocation.
func InvalidArgument(reason string) *ToolchangeError {
	return New(ErrCodeInvalidArgument, reason)
}

// NotGcodeFile reports a scan target without a recognised G-code extension.
func NotGcodeFile(path string, extensions []string) *ToolchangeError {
	return New(ErrCodeInvalidArgument, fmt.Sprintf("not a G-code file: %s", path)).
		WithDetail("path", path).
		WithDetail("extensions", strings.Join(extensions, ","))
}

// InvalidFormat reports an unknown --format value.
func InvalidFormat(format string) *ToolchangeError {
	return New(ErrCodeInvalidArgument, fmt.Sprintf("invalid format %q: must be human or machine", format)).
		WithDetail("format", format)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *ToolchangeError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/grovetools/toolchange/errors"
	"github.com/mitchellh/mapstructure"
)

// Config is the resolved toolchange configuration.
type Config struct {
	// StateFile is the tracking document location. Empty means derive it
	// from PrinterConfigDir, then fall back to the temp directory.
	StateFile string `yaml:"state_file,omitempty" toml:"state_file,omitempty"`

	// PrinterConfigDir is the Klipper config directory (…/printer_data/config).
	PrinterConfigDir string `yaml:"printer_config_dir,omitempty" toml:"printer_config_dir,omitempty"`

	// GcodeDir is searched for the newest G-code file when scan gets no path.
	GcodeDir string `yaml:"gcode_dir,omitempty" toml:"gcode_dir,omitempty"`

	Scan       ScanConfig     `yaml:"scan" toml:"scan"`
	ToolColors map[int]string `yaml:"tool_colors,omitempty" toml:"tool_colors,omitempty"`
	Display    DisplayConfig  `yaml:"display" toml:"display"`

	// Extensions holds sections this package does not own, such as "logging".
	Extensions map[string]interface{} `yaml:",inline" toml:"-"`
}

// ScanConfig controls marker recognition and file selection.
type ScanConfig struct {
	// Markers replaces the built-in marker rules when non-empty.
	Markers []MarkerRule `yaml:"markers,omitempty" toml:"markers,omitempty"`
	// Extensions are the accepted G-code file suffixes.
	Extensions []string `yaml:"extensions,omitempty" toml:"extensions,omitempty"`
	// Include and Exclude are glob patterns relative to GcodeDir.
	Include []string `yaml:"include,omitempty" toml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
}

// MarkerRule is a named regular expression recognising one tool change.
// Optional named groups: tool, color, brand, material.
type MarkerRule struct {
	Name    string `yaml:"name" toml:"name"`
	Pattern string `yaml:"pattern" toml:"pattern"`
}

// DisplayConfig controls the printer display snippet written by status.
type DisplayConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty"`
	Macro   string `yaml:"macro,omitempty" toml:"macro,omitempty"`
}

// DefaultToolColors mirrors the slicer profile the marker convention came from.
var DefaultToolColors = map[int]string{
	0: "yellow",
	1: "blue",
	2: "silver",
	3: "green",
	4: "clear",
}

// DefaultExtensions are the G-code suffixes accepted by scan.
var DefaultExtensions = []string{".gcode", ".gco", ".g"}

const (
	// StateFileName is the state file name inside the printer config dir.
	StateFileName = "tool_changes.json"
	// FallbackStateFileName is used in the temp dir when no printer config dir exists.
	FallbackStateFileName = "tool_change_data.json"
	// DisplayFileName is the default display snippet name inside the printer config dir.
	DisplayFileName = "tool_change_display.cfg"
	// DefaultDisplayMacro is the gcode_macro section name of the display snippet.
	DefaultDisplayMacro = "_TOOL_CHANGE_STATUS"
)

// knownKeys are the top-level keys decoded into Config fields.
var knownKeys = map[string]bool{
	"state_file":         true,
	"printer_config_dir": true,
	"gcode_dir":          true,
	"scan":               true,
	"tool_colors":        true,
	"display":            true,
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if c.ToolColors == nil {
		c.ToolColors = make(map[int]string, len(DefaultToolColors))
		for k, v := range DefaultToolColors {
			c.ToolColors[k] = v
		}
	}
	if c.Display.Macro == "" {
		c.Display.Macro = DefaultDisplayMacro
	}
}

var macroNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the configuration for values that would fail later.
func (c *Config) Validate() error {
	for i, rule := range c.Scan.Markers {
		if strings.TrimSpace(rule.Pattern) == "" {
			return errors.ConfigInvalid(fmt.Sprintf("scan.markers[%d] has an empty pattern", i))
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, fmt.Sprintf("scan.markers[%d] pattern does not compile", i)).
				WithDetail("pattern", rule.Pattern)
		}
	}
	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.ConfigInvalid(fmt.Sprintf("scan.extensions entry %q must start with a dot", ext))
		}
	}
	for tool := range c.ToolColors {
		if tool < 0 {
			return errors.ConfigInvalid(fmt.Sprintf("tool_colors has negative tool number %d", tool))
		}
	}
	if !macroNameRegex.MatchString(c.Display.Macro) {
		return errors.ConfigInvalid(fmt.Sprintf("display.macro %q is not a valid macro name", c.Display.Macro))
	}
	return nil
}

// ToolColor returns the configured color for a tool, or "" if none.
func (c *Config) ToolColor(tool int) string {
	return c.ToolColors[tool]
}

// UnmarshalExtension decodes a specific extension's configuration into the
// provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		return nil
	}

	decoder, err := newDecoder(target)
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

// newDecoder builds the mapstructure decoder shared by YAML and TOML input.
// Weak typing lets TOML's string table keys fill map[int]string.
func newDecoder(target interface{}) (*mapstructure.Decoder, error) {
	return mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
}

// ConfigSource identifies the origin of a configuration layer.
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceGlobal  ConfigSource = "global"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// LayeredConfig holds the raw settings from each source alongside the final
// merged configuration, for the config command.
type LayeredConfig struct {
	Global    map[string]interface{}
	Project   map[string]interface{}
	Env       map[string]interface{}
	Final     *Config
	FilePaths map[ConfigSource]string
}

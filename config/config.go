package config

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/toolchange/errors"
	"github.com/grovetools/toolchange/pkg/paths"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are the project config file names, in lookup order.
var configNames = []string{
	"toolchange.yml",
	"toolchange.yaml",
	"toolchange.toml",
	".toolchange.yml",
	".toolchange.yaml",
	".toolchange.toml",
}

// Environment variables that override file settings.
const (
	EnvStateFile        = "TOOLCHANGE_STATE_FILE"
	EnvGcodeDir         = "TOOLCHANGE_GCODE_DIR"
	EnvPrinterConfigDir = "PRINTER_CONFIG_DIR"
)

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit project config file; it must exist.
	ConfigFile string
	// StartDir is where the upward search for a project config begins.
	StartDir string
	Logger   *logrus.Logger
}

// LoadDefault loads configuration starting from the current directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	return Load(Options{StartDir: cwd})
}

// Load finds and loads the configuration with hierarchical merging:
// 1. Global config ($XDG_CONFIG_HOME/toolchange/toolchange.yml) - base layer
// 2. Project config (toolchange.yml found upward, in the printer config dir, or --config)
// 3. Environment variables - override all
func Load(opts Options) (*Config, error) {
	layered, err := LoadLayered(opts)
	if err != nil {
		return nil, err
	}
	return layered.Final, nil
}

// LoadLayered loads every configuration layer, keeping the raw layers for
// inspection alongside the merged result.
func LoadLayered(opts Options) (*LayeredConfig, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	layered := &LayeredConfig{
		FilePaths: make(map[ConfigSource]string),
	}

	// 1. Global layer (optional)
	if globalPath := findInDir(paths.ConfigDir()); globalPath != "" {
		logger.WithField("path", globalPath).Debug("Loading global configuration")
		raw, err := readRaw(globalPath)
		if err != nil {
			logger.WithError(err).Warn("Failed to parse global configuration, continuing without it")
		} else {
			layered.Global = raw
			layered.FilePaths[SourceGlobal] = globalPath
		}
	}

	// 2. Project layer
	projectPath := opts.ConfigFile
	if projectPath != "" {
		projectPath = expandPath(projectPath)
		if _, err := os.Stat(projectPath); err != nil {
			return nil, errors.SourceNotFound(projectPath, err).
				WithDetail("kind", "configuration")
		}
	} else {
		startDir := opts.StartDir
		if startDir == "" {
			startDir, _ = os.Getwd()
		}
		projectPath = FindConfigFile(startDir)
		if projectPath == "" {
			if dir := ResolvePrinterConfigDir(); dir != "" {
				projectPath = findInDir(dir)
			}
		}
	}
	if projectPath != "" {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		raw, err := readRaw(projectPath)
		if err != nil {
			return nil, err
		}
		layered.Project = raw
		layered.FilePaths[SourceProject] = projectPath
	}

	// 3. Environment layer
	layered.Env = envLayer()

	merged := map[string]interface{}{}
	for _, layer := range []map[string]interface{}{layered.Global, layered.Project, layered.Env} {
		if layer != nil {
			merged = mergeMaps(merged, layer)
		}
	}

	cfg, err := decode(merged)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(cfg); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(data))
		}
	}

	layered.Final = cfg
	return layered, nil
}

// LoadFromBytes parses a single configuration document. format is "yaml" or "toml".
func LoadFromBytes(data []byte, format string) (*Config, error) {
	raw, err := parseRaw(data, format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse configuration")
	}
	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches from startDir up to the filesystem root for a
// toolchange config file. Returns "" when none exists.
func FindConfigFile(startDir string) string {
	dir := startDir
	for {
		if path := findInDir(dir); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// findInDir returns the first config file present in dir.
func findInDir(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// readRaw reads a config file into a generic map.
func readRaw(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	raw, err := parseRaw(data, format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config file").
			WithDetail("path", path)
	}
	return raw, nil
}

func parseRaw(data []byte, format string) (map[string]interface{}, error) {
	expanded := []byte(expandEnvVars(string(data)))
	raw := map[string]interface{}{}
	switch format {
	case "toml":
		if err := toml.NewDecoder(bytes.NewReader(expanded)).Decode(&raw); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(expanded, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// decode converts a merged generic map into Config. Keys Config does not
// own are kept verbatim in Extensions.
func decode(raw map[string]interface{}) (*Config, error) {
	known := make(map[string]interface{}, len(raw))
	extensions := make(map[string]interface{})
	for key, value := range raw {
		if knownKeys[key] {
			known[key] = value
		} else {
			extensions[key] = value
		}
	}

	var cfg Config
	decoder, err := newDecoder(&cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create config decoder")
	}
	if err := decoder.Decode(known); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}
	if len(extensions) > 0 {
		cfg.Extensions = extensions
	}
	return &cfg, nil
}

// envLayer returns settings taken from environment variables.
func envLayer() map[string]interface{} {
	layer := map[string]interface{}{}
	if v := os.Getenv(EnvStateFile); v != "" {
		layer["state_file"] = v
	}
	if v := os.Getenv(EnvGcodeDir); v != "" {
		layer["gcode_dir"] = v
	}
	if v := os.Getenv(EnvPrinterConfigDir); v != "" {
		if info, err := os.Stat(v); err == nil && info.IsDir() {
			layer["printer_config_dir"] = v
		}
	}
	if len(layer) == 0 {
		return nil
	}
	return layer
}

func (c *Config) expandPaths() {
	c.StateFile = expandPath(c.StateFile)
	c.PrinterConfigDir = expandPath(c.PrinterConfigDir)
	c.GcodeDir = expandPath(c.GcodeDir)
	c.Display.Path = expandPath(c.Display.Path)
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// expandPath expands a leading tilde to the real user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home := RealHome(); home != "" {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/toolchange/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SUDO_USER", "")
	t.Setenv("TOOLCHANGE_HOME", filepath.Join(home, ".toolchange"))
	t.Setenv(EnvStateFile, "")
	t.Setenv(EnvGcodeDir, "")
	t.Setenv(EnvPrinterConfigDir, "")
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(Options{StartDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, DefaultExtensions, cfg.Scan.Extensions)
	assert.Equal(t, "blue", cfg.ToolColor(1))
	assert.Equal(t, "", cfg.ToolColor(9))
	assert.Equal(t, DefaultDisplayMacro, cfg.Display.Macro)
	assert.Equal(t, filepath.Join(os.TempDir(), FallbackStateFileName), cfg.ResolveStateFile(""))
	assert.Equal(t, filepath.Join(home, "printer_data", "gcodes"), cfg.ResolveGcodeDir())
}

func TestLoadProjectYAML(t *testing.T) {
	isolate(t)
	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, "toolchange.yml"), `
state_file: /var/lib/toolchange/state.json
tool_colors:
  0: white
  7: orange
scan:
  extensions: [".gcode"]
  exclude: ["archive/**"]
  markers:
    - name: custom
      pattern: '^;COLOR_CHANGE T(?P<tool>\d+)'
display:
  enabled: true
  macro: MY_STATUS
logging:
  level: debug
`)

	nested := filepath.Join(projectDir, "sub", "dir")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := Load(Options{StartDir: nested})
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/toolchange/state.json", cfg.ResolveStateFile(""))
	assert.Equal(t, "/flag/path.json", cfg.ResolveStateFile("/flag/path.json"))
	assert.Equal(t, "white", cfg.ToolColor(0))
	assert.Equal(t, "orange", cfg.ToolColor(7))
	assert.Equal(t, []string{".gcode"}, cfg.Scan.Extensions)
	assert.Equal(t, []string{"archive/**"}, cfg.Scan.Exclude)
	require.Len(t, cfg.Scan.Markers, 1)
	assert.Equal(t, "custom", cfg.Scan.Markers[0].Name)
	assert.True(t, cfg.Display.Enabled)
	assert.Equal(t, "MY_STATUS", cfg.Display.Macro)

	type logCfg struct {
		Level string `yaml:"level"`
	}
	var lc logCfg
	require.NoError(t, cfg.UnmarshalExtension("logging", &lc))
	assert.Equal(t, "debug", lc.Level)
}

func TestLoadTOMLAndLayering(t *testing.T) {
	home := isolate(t)

	globalDir := filepath.Join(home, ".toolchange", "config")
	writeFile(t, filepath.Join(globalDir, "toolchange.toml"), `
gcode_dir = "/global/gcodes"

[tool_colors]
0 = "black"
1 = "red"

[display]
macro = "GLOBAL_MACRO"
`)

	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, "toolchange.toml"), `
[tool_colors]
1 = "purple"

[display]
enabled = true
`)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(os.Stderr)

	layered, err := LoadLayered(Options{StartDir: projectDir, Logger: logger})
	require.NoError(t, err)
	cfg := layered.Final

	assert.Equal(t, "/global/gcodes", cfg.ResolveGcodeDir())
	assert.Equal(t, "black", cfg.ToolColor(0))
	assert.Equal(t, "purple", cfg.ToolColor(1))
	assert.True(t, cfg.Display.Enabled)
	assert.Equal(t, "GLOBAL_MACRO", cfg.Display.Macro)
	assert.Equal(t, filepath.Join(globalDir, "toolchange.toml"), layered.FilePaths[SourceGlobal])
	assert.Equal(t, filepath.Join(projectDir, "toolchange.toml"), layered.FilePaths[SourceProject])
}

func TestEnvironmentOverridesFiles(t *testing.T) {
	isolate(t)
	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, "toolchange.yml"), "state_file: /from/file.json\n")

	t.Setenv(EnvStateFile, "/from/env.json")
	t.Setenv(EnvGcodeDir, "/from/env/gcodes")

	cfg, err := Load(Options{StartDir: projectDir})
	require.NoError(t, err)
	assert.Equal(t, "/from/env.json", cfg.ResolveStateFile(""))
	assert.Equal(t, "/from/env/gcodes", cfg.ResolveGcodeDir())
}

func TestExplicitConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "gcode_dir: ${GCODE_ROOT:-/default/gcodes}\n")

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "/default/gcodes", cfg.GcodeDir)

	_, err = Load(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yml")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad marker regex", "scan:\n  markers:\n    - name: broken\n      pattern: '(unclosed'\n"},
		{"empty marker", "scan:\n  markers:\n    - name: empty\n      pattern: ''\n"},
		{"bad extension", "scan:\n  extensions: [gcode]\n"},
		{"bad macro", "display:\n  macro: 'has space'\n"},
		{"bad yaml", "scan: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.content), "yaml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid), "got %v", err)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TC_TEST_VAR", "value")
	assert.Equal(t, "a value b", expandEnvVars("a ${TC_TEST_VAR} b"))
	assert.Equal(t, "fallback", expandEnvVars("${TC_TEST_UNSET:-fallback}"))
	assert.Equal(t, "", expandEnvVars("${TC_TEST_UNSET}"))
}

func TestMergeMaps(t *testing.T) {
	base := map[string]interface{}{
		"display": map[string]interface{}{"enabled": false, "macro": "A"},
		"gcode_dir": "/base",
	}
	override := map[string]interface{}{
		"display": map[interface{}]interface{}{"enabled": true},
		"state_file": "/over.json",
	}

	merged := mergeMaps(base, override)
	display := merged["display"].(map[string]interface{})
	assert.Equal(t, true, display["enabled"])
	assert.Equal(t, "A", display["macro"])
	assert.Equal(t, "/base", merged["gcode_dir"])
	assert.Equal(t, "/over.json", merged["state_file"])

	// base is not mutated
	assert.Equal(t, false, base["display"].(map[string]interface{})["enabled"])
}

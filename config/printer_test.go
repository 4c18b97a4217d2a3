package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrinterConfigDirFromEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv(EnvPrinterConfigDir, dir)

	assert.Equal(t, dir, ResolvePrinterConfigDir())
}

func TestResolvePrinterConfigDirIgnoresMissingEnvDir(t *testing.T) {
	home := isolate(t)
	t.Setenv(EnvPrinterConfigDir, filepath.Join(home, "does-not-exist"))

	assert.Equal(t, "", ResolvePrinterConfigDir())
}

func TestResolvePrinterConfigDirFromMarkerFile(t *testing.T) {
	home := isolate(t)
	target := filepath.Join(home, "klipper-configs")
	require.NoError(t, os.MkdirAll(target, 0755))

	writeFile(t, filepath.Join(home, ".config", "toolchange", MarkerFileName),
		"# written by installer\nPRINTER_CONFIG_DIR=\""+target+"\"\n")

	assert.Equal(t, target, ResolvePrinterConfigDir())
}

func TestResolvePrinterConfigDirAutoScan(t *testing.T) {
	home := isolate(t)
	second := filepath.Join(home, "printer_2", "printer_data", "config")
	first := filepath.Join(home, "printer_1", "printer_data", "config")
	require.NoError(t, os.MkdirAll(second, 0755))
	require.NoError(t, os.MkdirAll(first, 0755))

	assert.Equal(t, first, ResolvePrinterConfigDir())

	// The plain single-printer layout wins over numbered ones.
	single := filepath.Join(home, "printer_data", "config")
	require.NoError(t, os.MkdirAll(single, 0755))
	assert.Equal(t, single, ResolvePrinterConfigDir())
}

func TestPathsDerivedFromPrinterConfigDir(t *testing.T) {
	home := isolate(t)
	printerDir := filepath.Join(home, "printer_data", "config")
	gcodes := filepath.Join(home, "printer_data", "gcodes")
	require.NoError(t, os.MkdirAll(printerDir, 0755))
	require.NoError(t, os.MkdirAll(gcodes, 0755))

	cfg, err := Load(Options{StartDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(printerDir, StateFileName), cfg.ResolveStateFile(""))
	assert.Equal(t, gcodes, cfg.ResolveGcodeDir())
	assert.Equal(t, filepath.Join(printerDir, DisplayFileName), cfg.ResolveDisplayPath())
}

func TestProjectConfigInPrinterConfigDir(t *testing.T) {
	home := isolate(t)
	printerDir := filepath.Join(home, "printer_data", "config")
	writeFile(t, filepath.Join(printerDir, "toolchange.yml"), "tool_colors:\n  0: teal\n")

	cfg, err := Load(Options{StartDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "teal", cfg.ToolColor(0))
}

package config

import (
	"bufio"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/toolchange/pkg/paths"
)

// MarkerFileName is the installer-written file that records the printer config dir.
const MarkerFileName = ".toolchange-config"

// RealHome returns the home directory of the invoking user, looking through sudo.
func RealHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil && u.HomeDir != "" {
			return u.HomeDir
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}

// ResolvePrinterConfigDir locates the Klipper config directory.
//
// Priority:
// 1. PRINTER_CONFIG_DIR environment variable
// 2. PRINTER_CONFIG_DIR=... in a .toolchange-config file
// 3. ~/printer_data/config, then ~/printer*/printer_data/config
//
// Returns "" when nothing is found.
func ResolvePrinterConfigDir() string {
	if dir := os.Getenv(EnvPrinterConfigDir); isDir(dir) {
		return dir
	}

	home := RealHome()
	searchDirs := []string{"."}
	if home != "" {
		searchDirs = append(searchDirs,
			filepath.Join(home, "printer_data", "config"),
			filepath.Join(home, ".config", "toolchange"),
		)
	}
	if configDir := paths.ConfigDir(); configDir != "" {
		searchDirs = append(searchDirs, configDir)
	}
	for _, dir := range searchDirs {
		if value := readMarkerFile(filepath.Join(dir, MarkerFileName)); isDir(value) {
			return value
		}
	}

	if home == "" {
		return ""
	}
	if candidate := filepath.Join(home, "printer_data", "config"); isDir(candidate) {
		return candidate
	}
	entries, err := os.ReadDir(home)
	if err != nil {
		return ""
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "printer") {
			continue
		}
		if candidate := filepath.Join(home, entry.Name(), "printer_data", "config"); isDir(candidate) {
			return candidate
		}
	}
	return ""
}

// readMarkerFile returns the PRINTER_CONFIG_DIR value from a marker file.
func readMarkerFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if value, ok := strings.CutPrefix(line, EnvPrinterConfigDir+"="); ok {
			return expandPath(strings.Trim(strings.TrimSpace(value), `"'`))
		}
	}
	return ""
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// printerConfigDir returns the configured directory or the resolved one.
func (c *Config) printerConfigDir() string {
	if c.PrinterConfigDir != "" {
		return c.PrinterConfigDir
	}
	return ResolvePrinterConfigDir()
}

// ResolveStateFile returns the state file location. flagValue wins when set,
// then the configured/env value, then the printer config dir, then the temp dir.
func (c *Config) ResolveStateFile(flagValue string) string {
	if flagValue != "" {
		return expandPath(flagValue)
	}
	if c.StateFile != "" {
		return c.StateFile
	}
	if dir := c.printerConfigDir(); dir != "" {
		return filepath.Join(dir, StateFileName)
	}
	return filepath.Join(os.TempDir(), FallbackStateFileName)
}

// ResolveGcodeDir returns the directory searched for the newest G-code file.
// A printer config dir of the usual …/printer_data/config shape implies its
// sibling gcodes directory.
func (c *Config) ResolveGcodeDir() string {
	if c.GcodeDir != "" {
		return c.GcodeDir
	}
	if dir := c.printerConfigDir(); dir != "" && filepath.Base(dir) == "config" {
		sibling := filepath.Join(filepath.Dir(dir), "gcodes")
		if isDir(sibling) {
			return sibling
		}
	}
	if home := RealHome(); home != "" {
		return filepath.Join(home, "printer_data", "gcodes")
	}
	return ""
}

// ResolveDisplayPath returns where the display snippet is written.
func (c *Config) ResolveDisplayPath() string {
	if c.Display.Path != "" {
		return c.Display.Path
	}
	if dir := c.printerConfigDir(); dir != "" {
		return filepath.Join(dir, DisplayFileName)
	}
	return filepath.Join(os.TempDir(), DisplayFileName)
}

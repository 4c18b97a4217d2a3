// Package paths provides XDG-compliant path resolution for toolchange.
//
// Resolution order:
// 1. TOOLCHANGE_HOME (portable root) → $TOOLCHANGE_HOME/{config,state,cache}
// 2. XDG env vars → $XDG_*_HOME/toolchange
// 3. Platform defaults → ~/.config/toolchange, ~/.local/state/toolchange, etc.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "toolchange"

// baseDir resolves one XDG base directory.
func baseDir(homeSub, xdgVar string, fallback ...string) string {
	if home := os.Getenv("TOOLCHANGE_HOME"); home != "" {
		return filepath.Join(home, homeSub)
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(append(append([]string{homeDir}, fallback...), appName)...)
	}
	return ""
}

// ConfigDir returns the toolchange configuration directory.
// Used for the global toolchange.yml / toolchange.toml.
func ConfigDir() string {
	return baseDir("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir returns the toolchange state directory.
// Used for the tracker's own logs.
func StateDir() string {
	return baseDir("state", "XDG_STATE_HOME", ".local", "state")
}

// CacheDir returns the toolchange cache directory.
func CacheDir() string {
	return baseDir("cache", "XDG_CACHE_HOME", ".cache")
}

// LogDir returns the directory holding the tracker's own log files.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return filepath.Join(os.TempDir(), appName, "logs")
	}
	return filepath.Join(state, "logs")
}

// EnsureDirs creates all toolchange directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), CacheDir(), LogDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

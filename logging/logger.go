package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/toolchange/config"
	"github.com/grovetools/toolchange/pkg/paths"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// configured, when set, replaces the lookup of toolchange.yml.
	configured *Config
)

// Configure sets the logging configuration used by loggers created afterwards.
// The CLI calls it once the --config flag has been resolved.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	configured = &cfg
	loggers = make(map[string]*logrus.Entry)
}

// FromConfig extracts the logging section of a loaded configuration.
func FromConfig(cfg *config.Config) Config {
	var logCfg Config
	if cfg == nil {
		return logCfg
	}
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		logrus.Warnf("Failed to parse 'logging' config: %v", err)
	}
	return logCfg
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	var logCfg Config
	if configured != nil {
		logCfg = *configured
	} else if cfg, err := config.LoadDefault(); err == nil {
		logCfg = FromConfig(cfg)
	}

	entry := newEntry(component, logCfg)
	loggers[component] = entry
	return entry
}

func newEntry(component string, logCfg Config) *logrus.Entry {
	logger := logrus.New()

	// Configure Level
	levelStr := "info"
	if os.Getenv("TOOLCHANGE_LOG_LEVEL") != "" {
		levelStr = os.Getenv("TOOLCHANGE_LOG_LEVEL")
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("TOOLCHANGE_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	// File sink: a daily file under the state dir unless disabled
	if !logCfg.File.Disabled {
		logFilePath := LogFilePath(component, logCfg, time.Now())
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err == nil {
			file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				writers = append(writers, file)
			} else if logCfg.File.Path != "" {
				// Only warn if explicitly configured
				logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
			}
		}
	}

	sink := &sinkWriter{writers: writers, stderrMode: logCfg.Format.StructuredToStderr}
	if shouldLogToStderr(logCfg, logger.GetLevel()) {
		sink = sink.withStderr()
	}
	logger.SetOutput(sink)

	return logger.WithField("component", component)
}

// shouldLogToStderr decides whether structured logs reach stderr.
// In "auto" mode they do only when debugging. The printer firmware often
// shows stderr next to the status line, so the file sink is the default.
func shouldLogToStderr(logCfg Config, level logrus.Level) bool {
	switch logCfg.Format.StructuredToStderr {
	case "always":
		return true
	case "never":
		return false
	}
	return os.Getenv("TOOLCHANGE_DEBUG") == "1" || level >= logrus.DebugLevel
}

// EnableDebug raises entry's logger to debug level and adds stderr as a
// destination unless structured_to_stderr is "never".
func EnableDebug(entry *logrus.Entry) {
	logger := entry.Logger
	logger.SetLevel(logrus.DebugLevel)

	sink, ok := logger.Out.(*sinkWriter)
	if !ok || sink.stderr || sink.stderrMode == "never" {
		return
	}
	logger.SetOutput(sink.withStderr())
}

// sinkWriter fans a log line out to the file sink and, when enabled, stderr.
// It is replaced, never mutated, so logrus' output lock covers it.
type sinkWriter struct {
	writers    []io.Writer
	stderr     bool
	stderrMode string
}

func (s *sinkWriter) withStderr() *sinkWriter {
	writers := append(append([]io.Writer(nil), s.writers...), os.Stderr)
	return &sinkWriter{writers: writers, stderr: true, stderrMode: s.stderrMode}
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	for _, w := range s.writers {
		if _, err := w.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// LogFilePath returns the log file for a component on the given day.
func LogFilePath(component string, logCfg Config, now time.Time) string {
	if logCfg.File.Path != "" {
		return expandPath(logCfg.File.Path)
	}
	return filepath.Join(paths.LogDir(), fmt.Sprintf("%s-%s.log", component, now.Format("2006-01-02")))
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

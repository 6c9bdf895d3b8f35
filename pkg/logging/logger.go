package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	Logger   *slog.Logger
	loggerMu sync.RWMutex
	logFile  *os.File
	isInited bool
	initOnce sync.Once
)

// LogLevel represents logging verbosity
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (LogLevel, error) {
	switch lvl := LogLevel(strings.ToUpper(strings.TrimSpace(s))); lvl {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return lvl, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config holds logger configuration
type Config struct {
	Level      LogLevel
	OutputPath string // Empty for stderr, or file path
	Format     string // "json" or "text"
}

// Init initializes the global logger with the given configuration.
// Subsequent calls return an error until Close is called.
func Init(config Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return fmt.Errorf("logger already initialized; call Close() first to reinitialize")
	}

	var writer io.Writer = os.Stderr
	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o750); err != nil {
			return err
		}

		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		writer = file
		logFile = file
	}

	Logger = slog.New(newHandler(writer, config.Format, config.Level.slogLevel()))
	isInited = true
	return nil
}

// InitWithWriter installs a logger writing to w. Tests use it to capture output.
func InitWithWriter(w io.Writer, level LogLevel, format string) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	Logger = slog.New(newHandler(w, format, level.slogLevel()))
	isInited = true
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// InitDefault initializes the logger with INFO level text output on stderr.
// It is a no-op when a logger is already installed.
func InitDefault() {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return
	}

	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	isInited = true
}

// Close closes the logger and any open file handles.
// It's safe to call Close multiple times.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if !isInited {
		return nil
	}

	var err error
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}

	Logger = nil
	isInited = false

	initOnce = sync.Once{}
	return err
}

// GetLogger returns the current logger, lazily installing the default one.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	if isInited {
		logger := Logger
		loggerMu.RUnlock()
		return logger
	}
	loggerMu.RUnlock()

	initOnce.Do(InitDefault)

	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return Logger
}

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

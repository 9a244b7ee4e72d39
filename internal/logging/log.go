// Package logging provides structured logging for the application,
// grounded on the teacher's internal/log package from the wider example
// corpus: a Level/Category pair wrapping tea.LogToFile, gated by an
// enabled flag and minimum level rather than always writing.
package logging

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages by subsystem.
type Category string

const (
	CatPTY      Category = "pty"
	CatScreen   Category = "screen"
	CatEngine   Category = "engine"
	CatActivity Category = "activity"
	CatDispatch Category = "dispatch"
	CatParallel Category = "parallel"
	CatGit      Category = "git"
	CatPersist  Category = "persist"
	CatRouter   Category = "router"
	CatUI       Category = "ui"
	CatConfig   Category = "config"
)

// Logger writes structured log lines to a single file.
type Logger struct {
	mu       sync.Mutex
	file     io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init opens path (via tea.LogToFile, grounded on the teacher's
// InitWithTeaLog) and installs it as the global logger. Returns a cleanup
// function to close the file.
func Init(path, prefix string) (func(), error) {
	var initErr error
	once.Do(func() {
		f, err := tea.LogToFile(path, prefix)
		if err != nil {
			initErr = err
			return
		}
		defaultLogger = &Logger{file: f, writer: f, enabled: true, minLevel: LevelDebug}
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger already initialized")
	}
	return func() {
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}, nil
}

// SetEnabled toggles logging on/off at runtime.
func SetEnabled(enabled bool) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.mu.Lock()
	defaultLogger.enabled = enabled
	defaultLogger.mu.Unlock()
}

// SetMinLevel sets the minimum level that will be written.
func SetMinLevel(level Level) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.mu.Lock()
	defaultLogger.minLevel = level
	defaultLogger.mu.Unlock()
}

func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields...) }
func Info(cat Category, msg string, fields ...any)  { write(LevelInfo, cat, msg, fields...) }
func Warn(cat Category, msg string, fields ...any)  { write(LevelWarn, cat, msg, fields...) }
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields...) }

// ErrorErr logs an error value at Error level alongside any extra fields
// (spec.md §7 propagation policy: "all errors surface at most to a status
// area"; this is the non-fatal sink they surface to first).
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	if !defaultLogger.enabled || level < defaultLogger.minLevel {
		return
	}

	line := fmt.Sprintf("%s [%s] %s %s", time.Now().Format(time.RFC3339Nano), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		line += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	fmt.Fprintln(defaultLogger.writer, line)
}

// resetForTest clears the global logger so tests can re-init it; not
// exported outside the package's own tests.
func resetForTest() {
	once = sync.Once{}
	defaultLogger = nil
}

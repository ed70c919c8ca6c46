// Package logging is the process-wide log sink: colored lines on
// stderr plus a JSON-lines file per day under the log directory.
// Logging is fire-and-forget; a failing file sink never reaches the
// request path.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	colorOff    = "\033[0m"
	colorYellow = "\033[0;33m"
	colorRed    = "\033[0;31m"
)

// Logger writes to the console and, when configured, to a JSON file.
type Logger struct {
	console *log.Logger

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

type record struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// New returns a logger. When dir is non-empty the logger also appends
// to <dir>/<date>.log.json, creating the directory as needed; if that
// fails it warns and carries on console-only.
func New(dir string) *Logger {
	l := &Logger{console: log.New(os.Stderr, "", log.LstdFlags)}
	if dir == "" {
		return l
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Warn("log directory %s unavailable: %v", dir, err)
		return l
	}
	name := filepath.Join(dir, time.Now().Format("2006-01-02")+".log.json")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l.Warn("log file %s unavailable: %v", name, err)
		return l
	}
	l.file = f
	l.enc = json.NewEncoder(f)
	return l
}

// Info logs an informational event.
func (l *Logger) Info(format string, args ...any) {
	l.emit("", "info", format, args...)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(format string, args ...any) {
	l.emit(colorYellow, "warn", format, args...)
}

// Error logs a failure.
func (l *Logger) Error(format string, args ...any) {
	l.emit(colorRed, "error", format, args...)
}

func (l *Logger) emit(color, level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if color != "" {
		l.console.Print(color + msg + colorOff)
	} else {
		l.console.Print(msg)
	}
	if l.enc == nil {
		return
	}
	l.mu.Lock()
	// Encode errors are swallowed: the file sink is best-effort.
	_ = l.enc.Encode(record{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level,
		Message: msg,
	})
	l.mu.Unlock()
}

// Close closes the file sink, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.enc = nil
	return err
}

// Package logging provides the small leveled, optionally colored logger
// used by the engine and CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes timestamped leveled lines to stdout/stderr.
type Logger struct {
	mu      sync.Mutex
	color   bool
	verbose bool
	silent  bool
}

// ANSI color codes, empty when color is disabled.
type palette struct {
	blue, green, yellow, red, cyan, reset string
}

var colors = palette{
	blue:   "\033[1;94m",
	green:  "\033[1;92m",
	yellow: "\033[1;93m",
	red:    "\033[1;91m",
	cyan:   "\033[1;96m",
	reset:  "\033[0m",
}

// New creates a logger. Color is enabled only on a terminal, honoring
// NO_COLOR and TERM=dumb.
func New(verbose bool) *Logger {
	enable := isTerminal(os.Stdout) &&
		os.Getenv("NO_COLOR") == "" &&
		strings.ToLower(os.Getenv("TERM")) != "dumb"
	return &Logger{color: enable, verbose: verbose}
}

// Discard returns a logger that prints nothing. Useful in tests and when a
// caller drives its own progress display.
func Discard() *Logger {
	return &Logger{silent: true}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func (l *Logger) line(level, color, text string) {
	if l.silent {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	out := os.Stdout
	if level == "ERROR" {
		out = os.Stderr
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.color {
		io.WriteString(out, ts+" "+color+"["+level+"]"+colors.reset+" "+text+"\n")
	} else {
		io.WriteString(out, ts+" ["+level+"] "+text+"\n")
	}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", colors.blue, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", colors.green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", colors.yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level, to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", colors.red, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level only when verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line("DEBUG", colors.cyan, fmt.Sprintf(format, args...))
}

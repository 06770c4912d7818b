package logbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one timestamped operator action or system event.
type Entry struct {
	At      time.Time
	Level   Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %-5s %s", e.At.Format("15:04:05"), string(e.Level), e.Message)
}

// Logbook keeps an append-only audit trail of operator actions for the
// lifetime of the session. Entries live in memory; a mirror file can be
// attached so the trail survives the process for later diagnostics.
type Logbook struct {
	mu         sync.Mutex
	entries    []Entry
	mirrorPath string
	now        func() time.Time
}

// New creates an in-memory logbook.
func New() *Logbook {
	return &Logbook{now: time.Now}
}

// WithMirror attaches a file every entry is also appended to.
// The parent directory is created on first write.
func (l *Logbook) WithMirror(path string) *Logbook {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mirrorPath = path
	return l
}

// WithClock lets tests control timestamps.
func (l *Logbook) WithClock(clock func() time.Time) *Logbook {
	if l == nil || clock == nil {
		return l
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = clock
	return l
}

// Append records a single entry.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := Entry{
		At:      l.now(),
		Level:   level,
		Message: strings.TrimSpace(message),
	}
	l.entries = append(l.entries, entry)
	l.mirror(entry)
}

func (l *Logbook) mirror(entry Entry) {
	if l.mirrorPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.mirrorPath), 0o755); err != nil {
		return
	}
	file, err := os.OpenFile(l.mirrorPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	line := fmt.Sprintf("%s %-5s %s\n",
		entry.At.UTC().Format(time.RFC3339),
		string(entry.Level),
		entry.Message,
	)
	_, _ = file.WriteString(line)
}

// Entries returns a copy of the full trail in append order.
func (l *Logbook) Entries() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Tail returns up to maxLines of the most recent entries, rendered for display.
func (l *Logbook) Tail(maxLines int) []string {
	if l == nil || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	start := 0
	if len(l.entries) > maxLines {
		start = len(l.entries) - maxLines
	}
	lines := make([]string, 0, len(l.entries)-start)
	for _, entry := range l.entries[start:] {
		lines = append(lines, entry.String())
	}
	return lines
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}

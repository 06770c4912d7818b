package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentEntries(t *testing.T) {
	book := New()
	for i := 0; i < 5; i++ {
		book.Info("entrada-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entrada-2", "entrada-3", "entrada-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestEntriesAreTimestampedAndOrdered(t *testing.T) {
	tick := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	book := New().WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	book.Info("primera")
	book.Error("segunda")
	entries := book.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if !entries[1].At.After(entries[0].At) {
		t.Fatalf("entries out of order: %s then %s", entries[0].At, entries[1].At)
	}
	if entries[1].Level != LevelError {
		t.Fatalf("level = %s, want ERROR", entries[1].Level)
	}
}

func TestMirrorWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "acciones.log")
	book := New().WithMirror(path)
	book.Info("plantilla cargada")
	book.Warn("sin fecha")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "plantilla cargada") || !strings.Contains(content, "sin fecha") {
		t.Fatalf("mirror content missing entries:\n%s", content)
	}
	if strings.Count(content, "\n") != 2 {
		t.Fatalf("mirror should hold 2 lines, got:\n%s", content)
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines := book.Tail(5); lines != nil {
		t.Fatalf("expected nil tail from nil logbook, got %v", lines)
	}
}

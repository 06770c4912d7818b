package registry

import (
	"strings"
	"testing"

	"github.com/aulatools/sesiones/internal/logbook"
)

func newTestRegistry() (*Registry, *logbook.Logbook) {
	log := logbook.New()
	return New(log), log
}

func TestLoadSetsStateAndAudits(t *testing.T) {
	reg, log := newTestRegistry()
	if err := reg.Load(ChannelTemplate, []byte("docx"), OriginFile, "plantilla.docx"); err != nil {
		t.Fatalf("load template: %v", err)
	}
	state := reg.State(ChannelTemplate)
	if !state.Loaded || state.Origin != OriginFile || state.Label != "plantilla.docx" {
		t.Fatalf("template state = %+v", state)
	}
	entries := log.Entries()
	if len(entries) != 1 || !strings.Contains(entries[0].Message, "plantilla.docx") {
		t.Fatalf("audit trail = %+v", entries)
	}
}

func TestLoadRejectsBadInputs(t *testing.T) {
	reg, _ := newTestRegistry()
	if err := reg.Load(ChannelTemplate, "not-bytes", OriginFile, "x"); err == nil {
		t.Fatal("expected error for non-byte template payload")
	}
	if err := reg.Load(ChannelSession, map[string]any{}, OriginNone, "x"); err == nil {
		t.Fatal("expected error for OriginNone load")
	}
	if err := reg.Load(Channel("otro"), nil, OriginFile, "x"); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestLastLoadWinsAcrossOrigins(t *testing.T) {
	channels := []Channel{ChannelSession, ChannelRoster}
	pairs := [][2]Origin{
		{OriginFile, OriginDialog},
		{OriginDialog, OriginFile},
		{OriginFile, OriginFile},
		{OriginDialog, OriginDialog},
	}
	for _, ch := range channels {
		for _, pair := range pairs {
			reg, _ := newTestRegistry()
			if err := reg.Load(ch, map[string]any{"v": 1}, pair[0], "primero"); err != nil {
				t.Fatalf("first load: %v", err)
			}
			if err := reg.Load(ch, map[string]any{"v": 2}, pair[1], "segundo"); err != nil {
				t.Fatalf("second load: %v", err)
			}
			state := reg.State(ch)
			if state.Origin != pair[1] || state.Label != "segundo" {
				t.Fatalf("%s %v: residual state %+v", ch, pair, state)
			}
			payload, ok := reg.Payload(ch)
			if !ok {
				t.Fatalf("%s: payload not loaded", ch)
			}
			if payload.(map[string]any)["v"] != 2 {
				t.Fatalf("%s: stale payload %v", ch, payload)
			}
		}
	}
}

func TestClearRestoresEmptyInvariant(t *testing.T) {
	reg, _ := newTestRegistry()
	_ = reg.Load(ChannelSession, map[string]any{"projectName": "Aula"}, OriginDialog, "editor")
	if err := reg.Clear(ChannelSession); err != nil {
		t.Fatalf("clear: %v", err)
	}
	state := reg.State(ChannelSession)
	if state.Loaded || state.Origin != OriginNone || state.Label != "" {
		t.Fatalf("cleared state = %+v, invariant broken", state)
	}
	if _, ok := reg.Payload(ChannelSession); ok {
		t.Fatal("payload survived clear")
	}
}

func TestReadinessTracksAllFourPrerequisites(t *testing.T) {
	reg, _ := newTestRegistry()
	if got := reg.Readiness(); len(got) != 4 {
		t.Fatalf("empty registry missing = %v, want all four", got)
	}
	_ = reg.Load(ChannelTemplate, []byte("t"), OriginFile, "t.docx")
	reg.SetStartDate("2024-06-10")
	_ = reg.Load(ChannelSession, map[string]any{"projectName": "Aula"}, OriginFile, "s.json")
	_ = reg.Load(ChannelRoster, map[string]any{"alumnos": []any{}}, OriginDialog, "editor")
	if !reg.Ready() {
		t.Fatalf("expected ready, missing = %v", reg.Readiness())
	}
	_ = reg.Clear(ChannelRoster)
	missing := reg.Readiness()
	if len(missing) != 1 || missing[0] != ReqRoster {
		t.Fatalf("missing = %v, want [%s]", missing, ReqRoster)
	}
	reg.SetStartDate("")
	if reg.Ready() {
		t.Fatal("cleared date must break readiness")
	}
}

func TestSnapshotDoesNotExposeTemplateStorage(t *testing.T) {
	reg, _ := newTestRegistry()
	_ = reg.Load(ChannelTemplate, []byte("abc"), OriginFile, "t.docx")
	snap := reg.Snapshot()
	snap.Template[0] = 'X'
	again := reg.Snapshot()
	if string(again.Template) != "abc" {
		t.Fatalf("registry storage mutated through snapshot: %q", again.Template)
	}
}

func TestSessionDescriptor(t *testing.T) {
	reg, _ := newTestRegistry()
	if _, ok := reg.SessionDescriptor(); ok {
		t.Fatal("descriptor reported before load")
	}
	_ = reg.Load(ChannelSession, map[string]any{"projectName": "Aula"}, OriginFile, "s.json")
	descriptor, ok := reg.SessionDescriptor()
	if !ok || descriptor["projectName"] != "Aula" {
		t.Fatalf("descriptor = %v ok=%v", descriptor, ok)
	}
}

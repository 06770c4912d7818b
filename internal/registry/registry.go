// Package registry owns the authoritative value and provenance for
// every generation input: the template binary, the session descriptor,
// the class roster and the chosen start date. It is the single mutable
// resource of the client; all other components receive it by reference
// and mutate it one channel at a time, wholesale.
package registry

import (
	"fmt"
	"sync"

	"github.com/aulatools/sesiones/internal/logbook"
)

// Channel identifies one independently tracked input.
type Channel string

const (
	ChannelTemplate Channel = "plantilla"
	ChannelSession  Channel = "sesion"
	ChannelRoster   Channel = "clase"
)

// Origin records where a channel's current value came from.
type Origin string

const (
	OriginNone   Origin = "none"
	OriginFile   Origin = "archivo"
	OriginDialog Origin = "editor"
)

// Requirement names a prerequisite the readiness check can report missing.
type Requirement string

const (
	ReqTemplate  Requirement = "plantilla"
	ReqSession   Requirement = "datos de sesión"
	ReqRoster    Requirement = "datos de clase"
	ReqStartDate Requirement = "fecha de inicio"
)

// ChannelState describes presence and provenance for one channel.
// Invariant: Loaded == false implies Origin == OriginNone and Label == "".
type ChannelState struct {
	Loaded bool
	Origin Origin
	Label  string
}

// Snapshot is the read-only view a generation request is built from.
// Template bytes are cloned; JSON payloads are immutable values that
// are only ever replaced wholesale, never edited in place.
type Snapshot struct {
	Template      []byte
	TemplateState ChannelState
	Session       any
	SessionState  ChannelState
	Roster        any
	RosterState   ChannelState
	StartDate     string
}

// Registry tracks the three input channels plus the start date.
type Registry struct {
	mu  sync.RWMutex
	log *logbook.Logbook

	template      []byte
	templateState ChannelState
	session       any
	sessionState  ChannelState
	roster        any
	rosterState   ChannelState
	startDate     string
}

// New returns an empty registry that audits every mutation to log.
func New(log *logbook.Logbook) *Registry {
	empty := ChannelState{Origin: OriginNone}
	return &Registry{
		log:           log,
		templateState: empty,
		sessionState:  empty,
		rosterState:   empty,
	}
}

// Load replaces a channel's content unconditionally. The previous
// payload and provenance are discarded; there is no merging. The
// template channel only accepts raw bytes.
func (r *Registry) Load(ch Channel, payload any, origin Origin, label string) error {
	if origin != OriginFile && origin != OriginDialog {
		return fmt.Errorf("registry: origin %q cannot load %s", origin, ch)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	state := ChannelState{Loaded: true, Origin: origin, Label: label}
	switch ch {
	case ChannelTemplate:
		data, ok := payload.([]byte)
		if !ok {
			return fmt.Errorf("registry: template payload must be bytes, got %T", payload)
		}
		r.template = data
		r.templateState = state
	case ChannelSession:
		r.session = payload
		r.sessionState = state
	case ChannelRoster:
		r.roster = payload
		r.rosterState = state
	default:
		return fmt.Errorf("registry: unknown channel %q", ch)
	}
	r.log.Info("Canal %s cargado desde %s: %s", ch, origin, label)
	return nil
}

// Clear resets a channel to its empty state.
func (r *Registry) Clear(ch Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch ch {
	case ChannelTemplate:
		r.template = nil
		r.templateState = ChannelState{Origin: OriginNone}
	case ChannelSession:
		r.session = nil
		r.sessionState = ChannelState{Origin: OriginNone}
	case ChannelRoster:
		r.roster = nil
		r.rosterState = ChannelState{Origin: OriginNone}
	default:
		return fmt.Errorf("registry: unknown channel %q", ch)
	}
	r.log.Info("Canal %s limpiado", ch)
	return nil
}

// SetStartDate records the operator-chosen start date (yyyy-mm-dd).
// The date is tracked for readiness only; parsing is the caller's job.
func (r *Registry) SetStartDate(date string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startDate = date
	if date == "" {
		r.log.Info("Fecha de inicio limpiada")
		return
	}
	r.log.Info("Fecha de inicio: %s", date)
}

// StartDate returns the currently chosen start date, if any.
func (r *Registry) StartDate() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.startDate
}

// State reports presence and provenance for one channel.
func (r *Registry) State(ch Channel) ChannelState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch ch {
	case ChannelTemplate:
		return r.templateState
	case ChannelSession:
		return r.sessionState
	case ChannelRoster:
		return r.rosterState
	}
	return ChannelState{Origin: OriginNone}
}

// SessionDescriptor returns the loaded session payload as a structured
// mapping, when it is one.
func (r *Registry) SessionDescriptor() (map[string]any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.sessionState.Loaded {
		return nil, false
	}
	descriptor, ok := r.session.(map[string]any)
	return descriptor, ok
}

// Payload returns the current value of a JSON channel for dialog
// population. The second result reports whether the channel is loaded.
func (r *Registry) Payload(ch Channel) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch ch {
	case ChannelSession:
		return r.session, r.sessionState.Loaded
	case ChannelRoster:
		return r.roster, r.rosterState.Loaded
	}
	return nil, false
}

// Readiness returns the prerequisites still missing before generation
// may be attempted. Empty means ready.
func (r *Registry) Readiness() []Requirement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var missing []Requirement
	if !r.templateState.Loaded {
		missing = append(missing, ReqTemplate)
	}
	if r.startDate == "" {
		missing = append(missing, ReqStartDate)
	}
	if !r.sessionState.Loaded {
		missing = append(missing, ReqSession)
	}
	if !r.rosterState.Loaded {
		missing = append(missing, ReqRoster)
	}
	return missing
}

// Ready reports whether all four prerequisites are present.
func (r *Registry) Ready() bool {
	return len(r.Readiness()) == 0
}

// Snapshot builds the read-only view used at submit time. Internal
// storage is never exposed: template bytes are copied.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var template []byte
	if r.template != nil {
		template = make([]byte, len(r.template))
		copy(template, r.template)
	}
	return Snapshot{
		Template:      template,
		TemplateState: r.templateState,
		Session:       r.session,
		SessionState:  r.sessionState,
		Roster:        r.roster,
		RosterState:   r.rosterState,
		StartDate:     r.startDate,
	}
}

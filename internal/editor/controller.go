// Package editor drives the paste/edit/verify/save/load dialog
// lifecycle for one JSON channel against the data-source registry.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aulatools/sesiones/internal/filename"
	"github.com/aulatools/sesiones/internal/logbook"
	"github.com/aulatools/sesiones/internal/registry"
	"github.com/aulatools/sesiones/internal/roster"
	"github.com/aulatools/sesiones/internal/save"
)

// State is the dialog lifecycle position. Verification, saving and
// loading are synchronous steps between Open and Closed, never states
// the dialog can be left stuck in.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// RosterJSONName is the fixed download name for edited roster JSON.
const RosterJSONName = "clase.json"

var (
	// ErrDialogClosed reports an operation on a closed dialog.
	ErrDialogClosed = errors.New("editor: el diálogo no está abierto")
	// ErrEmptyText reports a save or load with nothing to work on.
	ErrEmptyText = errors.New("editor: no hay contenido JSON")
	// ErrNameUnconfirmed reports that only the guessed fallback name is
	// available; the operator must confirm it before saving proceeds.
	ErrNameUnconfirmed = errors.New("editor: confirme el nombre de archivo por defecto")
)

// SyntaxError wraps the parser's own message for operator display.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("editor: JSON inválido: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// MissingFieldError reports a structurally valid payload lacking a
// required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("editor: falta el campo %s", e.Field)
}

// Controller runs one edit dialog. All failures are returned to the
// caller synchronously and leave the dialog open; nothing is thrown
// across the dialog boundary.
type Controller struct {
	channel registry.Channel
	reg     *registry.Registry
	log     *logbook.Logbook

	state        State
	text         string
	filenameHint string
}

// NewController builds a controller for the session or roster channel.
func NewController(ch registry.Channel, reg *registry.Registry, log *logbook.Logbook) (*Controller, error) {
	if ch != registry.ChannelSession && ch != registry.ChannelRoster {
		return nil, fmt.Errorf("editor: channel %q has no edit dialog", ch)
	}
	return &Controller{channel: ch, reg: reg, log: log, state: StateClosed}, nil
}

// Channel returns the channel this dialog edits.
func (c *Controller) Channel() registry.Channel { return c.channel }

// State returns the dialog lifecycle position.
func (c *Controller) State() State { return c.state }

// Text returns the current edit-surface content.
func (c *Controller) Text() string { return c.text }

// SetText replaces the edit-surface content.
func (c *Controller) SetText(text string) { c.text = text }

// FilenameHint returns the operator-editable name stem for session
// JSON downloads.
func (c *Controller) FilenameHint() string { return c.filenameHint }

// SetFilenameHint overrides the suggested name stem.
func (c *Controller) SetFilenameHint(hint string) { c.filenameHint = hint }

// Open populates the edit surface with the registry's current payload,
// pretty-printed, or leaves it empty when the channel has none.
func (c *Controller) Open() {
	c.text = ""
	if payload, ok := c.reg.Payload(c.channel); ok {
		if pretty, err := json.MarshalIndent(payload, "", "  "); err == nil {
			c.text = string(pretty)
		}
	}
	c.state = StateOpen
	c.log.Info("Diálogo de %s abierto", c.channel)
}

// Close discards nothing: the surface text survives until the next
// Open so a failed load can be corrected after reopening.
func (c *Controller) Close() {
	c.state = StateClosed
	c.log.Info("Diálogo de %s cerrado", c.channel)
}

// Verify parses the edit surface and checks the channel's structural
// requirements. On success the parsed payload is returned and, for the
// session channel, the filename suggestion is refreshed.
func (c *Controller) Verify() (any, error) {
	if c.state != StateOpen {
		return nil, ErrDialogClosed
	}
	var parsed any
	if err := json.Unmarshal([]byte(c.text), &parsed); err != nil {
		c.log.Warn("JSON de %s inválido: %v", c.channel, err)
		return nil, &SyntaxError{Err: err}
	}
	switch c.channel {
	case registry.ChannelSession:
		descriptor, ok := parsed.(map[string]any)
		if !ok {
			c.log.Warn("JSON de %s no es un objeto", c.channel)
			return nil, &MissingFieldError{Field: "projectName"}
		}
		project, ok := filename.ProjectName(descriptor)
		if !ok {
			c.log.Warn("JSON de sesión sin projectName")
			return nil, &MissingFieldError{Field: "projectName"}
		}
		c.filenameHint = filename.ProjectSlug(project)
		c.log.Info("JSON de sesión verificado; nombre sugerido sesion_%s", c.filenameHint)
	case registry.ChannelRoster:
		doc, err := roster.Parse(c.text)
		if err != nil {
			c.log.Warn("JSON de clase inválido: %v", err)
			return nil, &SyntaxError{Err: err}
		}
		if err := doc.Validate(); err != nil {
			c.log.Warn("JSON de clase incompleto: %v", err)
			return nil, err
		}
		c.log.Info("JSON de clase verificado (%d alumnos)", len(doc.Students))
	}
	return parsed, nil
}

// DownloadName returns the name a disk save would use and whether it
// is the guessed fallback that still needs operator confirmation.
func (c *Controller) DownloadName() (string, bool) {
	if c.channel == registry.ChannelRoster {
		return RosterJSONName, false
	}
	return filename.SessionJSONName(c.filenameHint, c.parsedDescriptor())
}

// Kind is the audit-log label for this dialog's payloads.
func (c *Controller) Kind() string {
	if c.channel == registry.ChannelRoster {
		return "JSON de clase"
	}
	return "JSON de sesión"
}

// SaveToDisk writes the surface text through the save strategy without
// touching the registry. When only the guessed fallback name exists
// and the operator has not confirmed it, ErrNameUnconfirmed is
// returned so the caller can ask first.
func (c *Controller) SaveToDisk(strategy *save.Strategy, fallbackConfirmed bool) (save.Result, error) {
	if c.state != StateOpen {
		return save.Result{}, ErrDialogClosed
	}
	if c.text == "" {
		return save.Result{}, ErrEmptyText
	}
	name, needsConfirm := c.DownloadName()
	if needsConfirm && !fallbackConfirmed {
		return save.Result{}, ErrNameUnconfirmed
	}
	return strategy.Save([]byte(c.text), name, c.Kind())
}

// parsedDescriptor best-effort parses the surface for name derivation.
// Invalid text simply yields no descriptor; saving never requires
// valid JSON.
func (c *Controller) parsedDescriptor() map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(c.text), &parsed); err != nil {
		return nil
	}
	return parsed
}

// LoadIntoRegistry verifies the surface and, on success, replaces the
// channel's registry value wholesale with dialog provenance. Any prior
// file selection for the channel is superseded by the same replacement,
// so provenance stays unambiguous. The dialog closes on success.
func (c *Controller) LoadIntoRegistry() error {
	if c.state != StateOpen {
		return ErrDialogClosed
	}
	if c.text == "" {
		return ErrEmptyText
	}
	parsed, err := c.Verify()
	if err != nil {
		return err
	}
	label := "editor"
	if c.channel == registry.ChannelSession && c.filenameHint != "" {
		label = c.filenameHint
	}
	if err := c.reg.Load(c.channel, parsed, registry.OriginDialog, label); err != nil {
		return err
	}
	c.state = StateClosed
	c.log.Info("JSON de %s cargado desde el editor", c.channel)
	return nil
}

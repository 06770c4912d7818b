// internal/tui/app.go
//
// Terminal UI for the session-document client, built on bubbletea's
// Elm-style loop: operator input becomes messages, Update folds them
// into the model, View renders the model to the screen. All domain
// decisions live in the internal packages; this layer only routes.

package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aulatools/sesiones/internal/config"
	"github.com/aulatools/sesiones/internal/editor"
	"github.com/aulatools/sesiones/internal/filename"
	"github.com/aulatools/sesiones/internal/generate"
	"github.com/aulatools/sesiones/internal/logbook"
	"github.com/aulatools/sesiones/internal/period"
	"github.com/aulatools/sesiones/internal/registry"
)

// appState represents which "screen" we're on.
type appState int

const (
	stateForm        appState = iota // main generation form
	stateEditSession                 // session JSON dialog
	stateEditRoster                  // roster JSON dialog
	stateSavePrompt                  // interactive save destination
)

// Form focus positions.
const (
	focusTemplate = iota
	focusSession
	focusRoster
	focusDate
	focusGenerate
	formItems
)

type fileLoadedMsg struct {
	channel registry.Channel
	payload any
	raw     []byte
	label   string
	err     error
}

type generatedMsg struct {
	doc generate.Document
	err error
}

type remoteValidationMsg struct {
	channel registry.Channel
	verdict generate.Validation
	err     error
}

type rosterSubmittedMsg struct {
	count int
	err   error
}

// pendingSave carries a payload through the save-prompt screen.
type pendingSave struct {
	payload  []byte
	name     string
	kind     string
	returnTo appState
}

// App is the main application model.
type App struct {
	cfg    *config.Config
	log    *logbook.Logbook
	reg    *registry.Registry
	client *generate.Client

	sessionEditor *editor.Controller
	rosterEditor  *editor.Controller

	state appState
	focus int

	inputs    [4]textinput.Model // template, session, roster paths + date
	surface   textarea.Model
	nameInput textinput.Model // session filename hint
	nameFocus bool
	pathInput textinput.Model // save destination
	spin      spinner.Model

	generating      bool
	pending         *pendingSave
	confirmFallback bool
	proposedName    string
	statusMsg       string

	width  int
	height int
}

// NewApp wires the whole client together from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	log := logbook.New().WithMirror(cfg.LogMirrorPath())
	reg := registry.New(log)
	client := generate.NewClient(cfg.ServiceURL(), cfg.Timeout(), log)
	sessionEditor, err := editor.NewController(registry.ChannelSession, reg, log)
	if err != nil {
		return nil, err
	}
	rosterEditor, err := editor.NewController(registry.ChannelRoster, reg, log)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:           cfg,
		log:           log,
		reg:           reg,
		client:        client,
		sessionEditor: sessionEditor,
		rosterEditor:  rosterEditor,
		state:         stateForm,
		proposedName:  filename.Unavailable,
	}

	placeholders := [4]string{
		"ruta de la plantilla .docx",
		"ruta del JSON de sesión",
		"ruta del JSON de clase",
		"fecha de inicio (aaaa-mm-dd)",
	}
	for i := range app.inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.CharLimit = 256
		app.inputs[i] = input
	}
	app.inputs[focusTemplate].Focus()

	app.surface = textarea.New()
	app.surface.Placeholder = "Pegue aquí el contenido JSON"
	app.surface.CharLimit = 0

	app.nameInput = textinput.New()
	app.nameInput.Placeholder = "nombre del archivo (sin sesion_/.json)"
	app.nameInput.CharLimit = 128

	app.pathInput = textinput.New()
	app.pathInput.CharLimit = 512

	app.spin = spinner.New()
	app.spin.Spinner = spinner.Dot

	log.Info("Sesión iniciada · servicio %s", cfg.ServiceURL())
	return app, nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.surface.SetWidth(max(40, msg.Width-8))
		a.surface.SetHeight(max(8, msg.Height-14))
		return a, nil

	case spinner.TickMsg:
		if !a.generating {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case fileLoadedMsg:
		return a.handleFileLoaded(msg)

	case generatedMsg:
		return a.handleGenerated(msg)

	case remoteValidationMsg:
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("Validación remota no disponible: %v", msg.err)
			a.log.Warn("Validación remota fallida: %v", msg.err)
		} else if msg.verdict.Valid {
			a.statusMsg = "Estructura verificada por el servicio"
			a.log.Info("Validación remota de %s: estructura válida", msg.channel)
		} else {
			a.statusMsg = fmt.Sprintf("Estructura rechazada: %s", msg.verdict.Message)
			a.log.Warn("Validación remota de %s: %s", msg.channel, msg.verdict.Message)
		}
		return a, nil

	case rosterSubmittedMsg:
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("Envío de clase fallido: %v", msg.err)
		} else {
			a.statusMsg = fmt.Sprintf("Clase enviada (%d alumnos)", msg.count)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateForm:
			return a.updateForm(msg)
		case stateEditSession, stateEditRoster:
			return a.updateDialog(msg)
		case stateSavePrompt:
			return a.updateSavePrompt(msg)
		}
	}

	return a, nil
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if a.focusedInput() == nil {
			return a, tea.Quit
		}
	case "esc":
		return a, tea.Quit
	case "tab", "down":
		a.setFocus((a.focus + 1) % formItems)
		return a, nil
	case "shift+tab", "up":
		a.setFocus((a.focus + formItems - 1) % formItems)
		return a, nil
	case "ctrl+e":
		return a.openDialog(stateEditSession)
	case "ctrl+r":
		return a.openDialog(stateEditRoster)
	case "ctrl+x":
		return a.clearFocusedChannel()
	case "enter":
		return a.activateFormItem()
	}
	if input := a.focusedInput(); input != nil {
		var cmd tea.Cmd
		*input, cmd = input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) focusedInput() *textinput.Model {
	if a.focus >= 0 && a.focus < len(a.inputs) {
		return &a.inputs[a.focus]
	}
	return nil
}

func (a *App) setFocus(target int) {
	if a.focus == focusDate && target != focusDate {
		a.commitStartDate()
	}
	for i := range a.inputs {
		a.inputs[i].Blur()
	}
	a.focus = target
	if input := a.focusedInput(); input != nil {
		input.Focus()
	}
}

func (a *App) activateFormItem() (tea.Model, tea.Cmd) {
	switch a.focus {
	case focusTemplate, focusSession, focusRoster:
		path := strings.TrimSpace(a.inputs[a.focus].Value())
		if path == "" {
			a.statusMsg = "Indique una ruta de archivo"
			return a, nil
		}
		return a, loadFileCmd(channelForFocus(a.focus), path)
	case focusDate:
		a.commitStartDate()
		return a, nil
	case focusGenerate:
		return a.submitGeneration()
	}
	return a, nil
}

func channelForFocus(focus int) registry.Channel {
	switch focus {
	case focusTemplate:
		return registry.ChannelTemplate
	case focusSession:
		return registry.ChannelSession
	}
	return registry.ChannelRoster
}

func (a *App) clearFocusedChannel() (tea.Model, tea.Cmd) {
	if a.focus > focusRoster {
		return a, nil
	}
	ch := channelForFocus(a.focus)
	if err := a.reg.Clear(ch); err != nil {
		a.statusMsg = err.Error()
		return a, nil
	}
	a.inputs[a.focus].SetValue("")
	a.statusMsg = fmt.Sprintf("Canal %s limpiado", ch)
	a.refreshProposedName()
	return a, nil
}

func (a *App) commitStartDate() {
	date := strings.TrimSpace(a.inputs[focusDate].Value())
	if date == a.reg.StartDate() {
		return
	}
	a.reg.SetStartDate(date)
	if date != "" {
		if _, err := period.Parse(date); err != nil {
			a.statusMsg = "Fecha inválida; use aaaa-mm-dd"
			a.log.Warn("Fecha de inicio inválida: %s", date)
		}
	}
	a.refreshProposedName()
}

func (a *App) submitGeneration() (tea.Model, tea.Cmd) {
	if a.generating || a.client.Busy() {
		a.statusMsg = "Generación en curso; espere"
		return a, nil
	}
	a.commitStartDate()
	a.generating = true
	a.statusMsg = "Generando documento..."
	return a, tea.Batch(a.spin.Tick, a.generateCmd())
}

func (a *App) generateCmd() tea.Cmd {
	snap := a.reg.Snapshot()
	client := a.client
	return func() tea.Msg {
		doc, err := client.Generate(context.Background(), snap)
		return generatedMsg{doc: doc, err: err}
	}
}

func loadFileCmd(ch registry.Channel, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return fileLoadedMsg{channel: ch, err: err}
		}
		label := filepath.Base(path)
		if ch == registry.ChannelTemplate {
			return fileLoadedMsg{channel: ch, raw: data, label: label}
		}
		var parsed any
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fileLoadedMsg{channel: ch, label: label, err: err}
		}
		return fileLoadedMsg{channel: ch, payload: parsed, raw: data, label: label}
	}
}

func (a *App) handleFileLoaded(msg fileLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.statusMsg = fmt.Sprintf("Error al leer el archivo de %s: %v", msg.channel, msg.err)
		a.log.Error("Carga de %s fallida: %v", msg.channel, msg.err)
		return a, nil
	}
	var payload any = msg.raw
	if msg.channel != registry.ChannelTemplate {
		payload = msg.payload
	}
	if err := a.reg.Load(msg.channel, payload, registry.OriginFile, msg.label); err != nil {
		a.statusMsg = err.Error()
		return a, nil
	}
	a.statusMsg = fmt.Sprintf("%s cargado: %s", channelTitle(msg.channel), msg.label)
	a.refreshProposedName()
	return a, nil
}

func (a *App) handleGenerated(msg generatedMsg) (tea.Model, tea.Cmd) {
	a.generating = false
	if msg.err != nil {
		a.statusMsg = generationFailureMessage(msg.err)
		return a, nil
	}
	a.statusMsg = fmt.Sprintf("Documento recibido: %s", msg.doc.Name)
	a.pending = &pendingSave{
		payload:  msg.doc.Data,
		name:     msg.doc.Name,
		kind:     "documento",
		returnTo: stateForm,
	}
	return a.openSavePrompt()
}

// generationFailureMessage keeps server text verbatim and maps the
// client-side taxonomy to operator wording.
func generationFailureMessage(err error) string {
	var missing *generate.MissingInputError
	if errors.As(err, &missing) {
		names := make([]string, len(missing.Missing))
		for i, req := range missing.Missing {
			names[i] = string(req)
		}
		return fmt.Sprintf("Faltan datos: %s", strings.Join(names, ", "))
	}
	var serverErr *generate.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	switch {
	case errors.Is(err, generate.ErrEmptyDocument):
		return "El servidor devolvió un documento vacío"
	case errors.Is(err, generate.ErrGenerationInFlight):
		return "Generación en curso; espere"
	case errors.Is(err, period.ErrInvalidDate):
		return "Fecha inválida; use aaaa-mm-dd"
	}
	return fmt.Sprintf("Generación fallida: %v", err)
}

func (a *App) refreshProposedName() {
	descriptor, _ := a.reg.SessionDescriptor()
	name, missing := filename.DocumentName(descriptor, a.reg.StartDate())
	if len(missing) == 0 {
		a.proposedName = name
		a.log.Info("Nombre propuesto: %s", name)
		return
	}
	a.proposedName = filename.Unavailable
	a.log.Info("Nombre propuesto: no disponible (falta %s)", strings.Join(missing, ", "))
}

func channelTitle(ch registry.Channel) string {
	switch ch {
	case registry.ChannelTemplate:
		return "Plantilla"
	case registry.ChannelSession:
		return "JSON de Sesión"
	case registry.ChannelRoster:
		return "JSON de Clase"
	}
	return string(ch)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aulatools/sesiones/internal/editor"
	"github.com/aulatools/sesiones/internal/registry"
	"github.com/aulatools/sesiones/internal/roster"
	"github.com/aulatools/sesiones/internal/save"
)

func (a *App) activeEditor() *editor.Controller {
	if a.state == stateEditRoster {
		return a.rosterEditor
	}
	return a.sessionEditor
}

func (a *App) openDialog(target appState) (tea.Model, tea.Cmd) {
	a.state = target
	ctrl := a.activeEditor()
	ctrl.Open()
	a.surface.SetValue(ctrl.Text())
	a.nameInput.SetValue(ctrl.FilenameHint())
	a.nameFocus = false
	a.confirmFallback = false
	a.surface.Focus()
	a.nameInput.Blur()
	a.statusMsg = fmt.Sprintf("Diálogo de %s abierto", ctrl.Channel())
	return a, textarea.Blink
}

func (a *App) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := a.activeEditor()
	switch msg.String() {
	case "esc":
		ctrl.Close()
		a.state = stateForm
		a.surface.Blur()
		a.statusMsg = "Diálogo cerrado"
		return a, nil
	case "tab":
		if a.state == stateEditSession {
			a.nameFocus = !a.nameFocus
			if a.nameFocus {
				a.surface.Blur()
				a.nameInput.Focus()
			} else {
				a.nameInput.Blur()
				a.surface.Focus()
			}
			return a, nil
		}
	case "ctrl+d":
		a.syncEditor(ctrl)
		if _, err := ctrl.Verify(); err != nil {
			a.statusMsg = operatorMessage(err)
			return a, nil
		}
		a.nameInput.SetValue(ctrl.FilenameHint())
		a.statusMsg = "JSON verificado"
		return a, nil
	case "ctrl+t":
		a.syncEditor(ctrl)
		return a, a.remoteValidationCmd(ctrl)
	case "ctrl+s":
		return a.saveDialogText(ctrl)
	case "ctrl+l":
		a.syncEditor(ctrl)
		if err := ctrl.LoadIntoRegistry(); err != nil {
			a.statusMsg = operatorMessage(err)
			return a, nil
		}
		// File and dialog are mutually exclusive sources; drop the
		// stale path from the form.
		if ctrl.Channel() == registry.ChannelSession {
			a.inputs[focusSession].SetValue("")
		} else {
			a.inputs[focusRoster].SetValue("")
		}
		a.state = stateForm
		a.surface.Blur()
		a.statusMsg = fmt.Sprintf("%s cargado desde el editor", channelTitle(ctrl.Channel()))
		a.refreshProposedName()
		return a, nil
	case "ctrl+p":
		if a.state == stateEditRoster {
			a.syncEditor(ctrl)
			return a, a.submitRosterCmd(ctrl)
		}
	}

	var cmd tea.Cmd
	if a.nameFocus {
		a.nameInput, cmd = a.nameInput.Update(msg)
	} else {
		a.surface, cmd = a.surface.Update(msg)
	}
	return a, cmd
}

func (a *App) syncEditor(ctrl *editor.Controller) {
	ctrl.SetText(a.surface.Value())
	if ctrl.Channel() == registry.ChannelSession {
		ctrl.SetFilenameHint(a.nameInput.Value())
	}
}

// saveDialogText starts the two-tier save for the edit surface. The
// guessed fallback name is never used without a second confirming
// keypress.
func (a *App) saveDialogText(ctrl *editor.Controller) (tea.Model, tea.Cmd) {
	a.syncEditor(ctrl)
	if ctrl.Text() == "" {
		a.statusMsg = "No hay contenido JSON para guardar"
		return a, nil
	}
	name, needsConfirm := ctrl.DownloadName()
	if needsConfirm && !a.confirmFallback {
		a.confirmFallback = true
		a.statusMsg = fmt.Sprintf("Sin nombre de proyecto; Ctrl+S otra vez para usar %s", name)
		return a, nil
	}
	a.confirmFallback = false
	a.pending = &pendingSave{
		payload:  []byte(ctrl.Text()),
		name:     name,
		kind:     ctrl.Kind(),
		returnTo: a.state,
	}
	return a.openSavePrompt()
}

func (a *App) remoteValidationCmd(ctrl *editor.Controller) tea.Cmd {
	text := ctrl.Text()
	channel := ctrl.Channel()
	reference := "session"
	if channel == registry.ChannelRoster {
		reference = "class"
	}
	client := a.client
	return func() tea.Msg {
		verdict, err := client.ValidateJSON(context.Background(), text, reference)
		return remoteValidationMsg{channel: channel, verdict: verdict, err: err}
	}
}

func (a *App) submitRosterCmd(ctrl *editor.Controller) tea.Cmd {
	doc, err := roster.Parse(ctrl.Text())
	if err != nil {
		a.statusMsg = operatorMessage(&editor.SyntaxError{Err: err})
		return nil
	}
	if err := doc.Validate(); err != nil {
		a.statusMsg = operatorMessage(err)
		return nil
	}
	client := a.client
	return func() tea.Msg {
		err := client.SubmitRoster(context.Background(), doc)
		return rosterSubmittedMsg{count: len(doc.Students), err: err}
	}
}

func (a *App) openSavePrompt() (tea.Model, tea.Cmd) {
	a.pathInput.SetValue(filepath.Join(a.cfg.DownloadsDir(), a.pending.name))
	a.pathInput.Focus()
	a.surface.Blur()
	a.state = stateSavePrompt
	return a, textinput.Blink
}

func (a *App) updateSavePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a.finishSave(save.PrompterFunc(func(string) (string, error) {
			return "", save.ErrCancelled
		}))
	case "enter":
		chosen := a.pathInput.Value()
		return a.finishSave(save.PrompterFunc(func(string) (string, error) {
			return chosen, nil
		}))
	}
	var cmd tea.Cmd
	a.pathInput, cmd = a.pathInput.Update(msg)
	return a, cmd
}

// finishSave runs both save tiers with the prompt outcome as the
// interactive tier. Cancellation is silent; interactive write failures
// fall back to the automatic download directory.
func (a *App) finishSave(prompter save.Prompter) (tea.Model, tea.Cmd) {
	pending := a.pending
	a.pending = nil
	a.pathInput.Blur()
	a.state = pending.returnTo
	if a.state == stateEditSession || a.state == stateEditRoster {
		a.surface.Focus()
	}

	strategy := save.New(a.cfg.DownloadsDir(), a.log, save.WithPrompter(prompter))
	result, err := strategy.Save(pending.payload, pending.name, pending.kind)
	switch {
	case err != nil:
		a.statusMsg = fmt.Sprintf("Guardado fallido: %v", err)
	case result.Cancelled:
		a.statusMsg = "Guardado cancelado"
	default:
		a.statusMsg = fmt.Sprintf("Guardado como %s", result.Path)
	}
	return a, nil
}

// operatorMessage translates taxonomy errors into the wording shown in
// the footer; server and parser text travels verbatim.
func operatorMessage(err error) string {
	var syntax *editor.SyntaxError
	if errors.As(err, &syntax) {
		return fmt.Sprintf("JSON inválido: %v", syntax.Err)
	}
	var missing *editor.MissingFieldError
	if errors.As(err, &missing) {
		return fmt.Sprintf("Falta el campo %s", missing.Field)
	}
	switch {
	case errors.Is(err, editor.ErrEmptyText):
		return "No hay contenido JSON"
	case errors.Is(err, editor.ErrDialogClosed):
		return "El diálogo no está abierto"
	}
	return err.Error()
}

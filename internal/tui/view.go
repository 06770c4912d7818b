package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aulatools/sesiones/internal/registry"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().
			Bold(true)
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50"))
	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			MarginTop(1)
)

// View renders the current state to a string.
func (a *App) View() string {
	var content string
	switch a.state {
	case stateForm:
		content = a.renderForm()
	case stateEditSession, stateEditRoster:
		content = a.renderDialog()
	case stateSavePrompt:
		content = a.renderSavePrompt()
	}

	sections := []string{
		headerStyle.Render("⬡ GENERADOR DE SESIONES"),
		boxStyle.Render(content),
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, dimStyle.Render(a.statusMsg))
	return strings.Join(sections, "\n")
}

func (a *App) renderForm() string {
	rows := []string{
		a.renderFormRow(focusTemplate, "Plantilla", a.channelInfo(registry.ChannelTemplate)),
		a.renderFormRow(focusSession, "JSON de Sesión", a.channelInfo(registry.ChannelSession)),
		a.renderFormRow(focusRoster, "JSON de Clase", a.channelInfo(registry.ChannelRoster)),
		a.renderFormRow(focusDate, "Fecha de inicio", ""),
		"",
		fmt.Sprintf("%s %s", labelStyle.Render("Nombre propuesto:"), a.proposedName),
		a.renderReadiness(),
		"",
		a.renderGenerateButton(),
		hintStyle.Render("Tab → mover    Enter → cargar/generar    Ctrl+E sesión · Ctrl+R clase · Ctrl+X limpiar · Esc salir"),
	}
	return strings.Join(rows, "\n")
}

func (a *App) renderFormRow(focus int, title, info string) string {
	cursor := "  "
	if a.focus == focus {
		cursor = "> "
	}
	row := fmt.Sprintf("%s%s %s", cursor, labelStyle.Render(title+":"), a.inputs[focus].View())
	if info != "" {
		row += "\n    " + info
	}
	return row
}

func (a *App) channelInfo(ch registry.Channel) string {
	state := a.reg.State(ch)
	if !state.Loaded {
		return dimStyle.Render("sin cargar")
	}
	return readyStyle.Render(fmt.Sprintf("✓ %s (%s)", state.Label, state.Origin))
}

func (a *App) renderReadiness() string {
	missing := a.reg.Readiness()
	if len(missing) == 0 {
		return readyStyle.Render("Listo para generar")
	}
	names := make([]string, len(missing))
	for i, req := range missing {
		names[i] = string(req)
	}
	return missingStyle.Render(fmt.Sprintf("Falta: %s", strings.Join(names, ", ")))
}

func (a *App) renderGenerateButton() string {
	label := "[ Generar documento ]"
	if a.generating {
		label = fmt.Sprintf("%s Generando...", a.spin.View())
	}
	if a.focus == focusGenerate && !a.generating {
		return labelStyle.Render("> " + label)
	}
	return "  " + label
}

func (a *App) renderDialog() string {
	ctrl := a.activeEditor()
	title := fmt.Sprintf("Editar %s", channelTitle(ctrl.Channel()))
	rows := []string{labelStyle.Render(title)}
	if a.state == stateEditSession {
		rows = append(rows, fmt.Sprintf("%s %s", labelStyle.Render("Archivo: sesion_"), a.nameInput.View()))
	}
	rows = append(rows, a.surface.View())
	keys := "Ctrl+D verificar · Ctrl+S guardar · Ctrl+L cargar · Ctrl+T validar en servicio · Esc cerrar"
	if a.state == stateEditRoster {
		keys += " · Ctrl+P enviar clase"
	} else {
		keys = "Tab nombre/texto · " + keys
	}
	rows = append(rows, hintStyle.Render(keys))
	return strings.Join(rows, "\n")
}

func (a *App) renderSavePrompt() string {
	if a.pending == nil {
		return ""
	}
	rows := []string{
		labelStyle.Render(fmt.Sprintf("Guardar %s", a.pending.kind)),
		fmt.Sprintf("Destino: %s", a.pathInput.View()),
		hintStyle.Render("Enter → guardar    Esc → cancelar (descarga automática no se usa)"),
	}
	return strings.Join(rows, "\n")
}

func (a *App) renderLogPanel() string {
	lines := a.log.Tail(8)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("REGISTRO DE ACCIONES")
	body := dimStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

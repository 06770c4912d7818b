// cmd/sesiones/main.go
//
// Entry point for the session-document client. Running `sesiones` from
// a project directory initializes the .sesiones folder, loads
// configuration (with .env and environment overrides) and starts the
// terminal UI.

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/aulatools/sesiones/internal/config"
	"github.com/aulatools/sesiones/internal/tui"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error obteniendo el directorio de trabajo: %v\n", err)
		os.Exit(1)
	}

	// A .env next to the project is optional; environment variables
	// still win over the config file either way.
	_ = godotenv.Load()

	if err := config.InitDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error inicializando el directorio .sesiones: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error de configuración: %v\n", err)
		os.Exit(1)
	}

	app, err := tui.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error iniciando la aplicación: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error ejecutando la interfaz: %v\n", err)
		os.Exit(1)
	}
}

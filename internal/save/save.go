// Package save implements the two-tier save policy: an interactive,
// operator-directed save when the runtime can offer one, falling back
// to an automatic download into a fixed directory otherwise.
package save

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aulatools/sesiones/internal/logbook"
)

// ErrCancelled is returned by a Prompter when the operator backs out.
// Cancellation is a normal outcome, logged but never alerted.
var ErrCancelled = errors.New("save: guardado cancelado")

// Prompter asks the operator where to write a file. Implementations
// return ErrCancelled for an operator-initiated cancellation.
type Prompter interface {
	PromptSavePath(suggested string) (string, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(string) (string, error)

func (f PrompterFunc) PromptSavePath(suggested string) (string, error) {
	return f(suggested)
}

// Result reports where a payload ended up.
type Result struct {
	Path        string
	Interactive bool
	Cancelled   bool
}

// Strategy drives both save tiers. The same strategy serves edited
// JSON text and generated documents; only the suggested name and kind
// label differ per call.
type Strategy struct {
	prompter    Prompter
	fallbackDir string
	log         *logbook.Logbook
}

// Option customizes strategy construction.
type Option func(*Strategy)

// WithPrompter enables the interactive tier.
func WithPrompter(p Prompter) Option {
	return func(s *Strategy) {
		if p != nil {
			s.prompter = p
		}
	}
}

// New builds a strategy whose fallback tier writes into fallbackDir.
func New(fallbackDir string, log *logbook.Logbook, opts ...Option) *Strategy {
	s := &Strategy{fallbackDir: fallbackDir, log: log}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Save writes payload under suggestedName. The interactive tier runs
// first when available; any of its failures other than cancellation
// fall through silently to the automatic tier.
func (s *Strategy) Save(payload []byte, suggestedName, kind string) (Result, error) {
	if s.prompter != nil {
		result, fellThrough, err := s.saveInteractive(payload, suggestedName, kind)
		if !fellThrough {
			return result, err
		}
	}
	return s.saveAutomatic(payload, suggestedName, kind)
}

func (s *Strategy) saveInteractive(payload []byte, suggestedName, kind string) (Result, bool, error) {
	path, err := s.prompter.PromptSavePath(suggestedName)
	if errors.Is(err, ErrCancelled) {
		s.log.Info("Guardado de %s cancelado por el operador", kind)
		return Result{Cancelled: true, Interactive: true}, false, nil
	}
	if err != nil {
		s.log.Warn("Guardado interactivo de %s falló (%v); usando descarga automática", kind, err)
		return Result{}, true, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.log.Warn("Guardado interactivo de %s falló (%v); usando descarga automática", kind, err)
		return Result{}, true, nil
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		s.log.Warn("Guardado interactivo de %s falló (%v); usando descarga automática", kind, err)
		return Result{}, true, nil
	}
	s.log.Info("%s guardado como %s", kind, path)
	return Result{Path: path, Interactive: true}, false, nil
}

func (s *Strategy) saveAutomatic(payload []byte, suggestedName, kind string) (Result, error) {
	if err := os.MkdirAll(s.fallbackDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("save: ensure download dir: %w", err)
	}
	path := uniquePath(s.fallbackDir, suggestedName)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return Result{}, fmt.Errorf("save: write %s: %w", path, err)
	}
	s.log.Info("%s descargado como %s", kind, path)
	return Result{Path: path}, nil
}

// uniquePath never reuses an existing name: " (n)" is inserted before
// the extension, the way browser downloads disambiguate.
func uniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

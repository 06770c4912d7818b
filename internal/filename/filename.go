// Package filename derives download names for session JSON files and
// generated documents from the project name and the computed period.
package filename

import (
	"fmt"
	"strings"

	"github.com/aulatools/sesiones/internal/period"
)

const (
	maxNameRunes = 50

	// FallbackSessionJSON is used when no project name exists anywhere;
	// callers must ask the operator to confirm it before proceeding.
	FallbackSessionJSON = "sesion_proyecto.json"

	// Unavailable is shown when the document name cannot be derived.
	Unavailable = "Nombre no disponible"
)

// Prerequisites a document name derivation can be missing.
const (
	MissingSession     = "datos de sesión"
	MissingProjectName = "nombre de proyecto"
	MissingStartDate   = "fecha de inicio"
)

var accentFold = map[rune]rune{
	'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u', 'ü': 'u',
	'Á': 'A', 'É': 'E', 'Í': 'I', 'Ó': 'O', 'Ú': 'U', 'Ü': 'U',
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '_':
		return true
	case r == 'ñ' || r == 'Ñ':
		return true
	}
	_, accented := accentFold[r]
	return accented
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// ProjectSlug sanitizes a human-entered project name into a
// filename-safe token: truncated, accents folded, disallowed
// characters stripped and whitespace runs collapsed to underscores.
// Idempotent: ProjectSlug(ProjectSlug(x)) == ProjectSlug(x).
func ProjectSlug(name string) string {
	var b strings.Builder
	for _, r := range truncateRunes(name, maxNameRunes) {
		if !isAllowed(r) {
			continue
		}
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), "_")
}

// CleanDisplayName keeps the project name readable for the document
// filename: truncated and stripped of disallowed characters, but
// spaces and accents preserved.
func CleanDisplayName(name string) string {
	var b strings.Builder
	for _, r := range truncateRunes(name, maxNameRunes) {
		if isAllowed(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// ProjectName extracts the required project name from a session
// descriptor. The descriptor is opaque beyond this one field.
func ProjectName(descriptor map[string]any) (string, bool) {
	if descriptor == nil {
		return "", false
	}
	raw, ok := descriptor["projectName"]
	if !ok {
		return "", false
	}
	name, ok := raw.(string)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// SessionJSONName derives the download name for edited session JSON.
// An explicit operator-entered name wins; otherwise the descriptor's
// project name is slugged. With neither, the fallback name is returned
// and needsConfirm is true: a guessed name is never used silently.
func SessionJSONName(explicit string, descriptor map[string]any) (name string, needsConfirm bool) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return fmt.Sprintf("sesion_%s.json", explicit), false
	}
	if project, ok := ProjectName(descriptor); ok {
		return fmt.Sprintf("sesion_%s.json", ProjectSlug(project)), false
	}
	return FallbackSessionJSON, true
}

// DocumentName proposes the generated document's filename. When any
// prerequisite is absent the name is unavailable and the missing
// prerequisites are returned so the caller can record them.
func DocumentName(descriptor map[string]any, startDate string) (string, []string) {
	var missing []string
	project, ok := ProjectName(descriptor)
	if !ok {
		if descriptor == nil {
			missing = append(missing, MissingSession)
		} else {
			missing = append(missing, MissingProjectName)
		}
	}
	span, err := period.Format(startDate)
	if err != nil {
		missing = append(missing, MissingStartDate)
	}
	if len(missing) > 0 {
		return "", missing
	}
	return fmt.Sprintf("sesion %s %s.docx", CleanDisplayName(project), span), nil
}

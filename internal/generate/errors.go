package generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aulatools/sesiones/internal/registry"
)

// ErrEmptyDocument reports a successful response whose body was empty.
var ErrEmptyDocument = errors.New("generate: el servidor devolvió un documento vacío")

// ErrGenerationInFlight reports a submit attempted while another
// request is still pending. Only one generation is meaningful at a time.
var ErrGenerationInFlight = errors.New("generate: ya hay una generación en curso")

// MissingInputError names every prerequisite absent at submit time.
// No request is issued when it is returned.
type MissingInputError struct {
	Missing []registry.Requirement
}

func (e *MissingInputError) Error() string {
	names := make([]string, len(e.Missing))
	for i, req := range e.Missing {
		names[i] = string(req)
	}
	return fmt.Sprintf("generate: faltan datos: %s", strings.Join(names, ", "))
}

// ServerError carries a non-2xx response. Message is the server's own
// error text when the body was structured, verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("generate: %s (HTTP %d)", e.Message, e.Status)
}

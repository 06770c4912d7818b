// Package generate assembles the multipart submission from a registry
// snapshot, talks to the document-generation service and interprets
// its responses.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aulatools/sesiones/internal/logbook"
	"github.com/aulatools/sesiones/internal/period"
	"github.com/aulatools/sesiones/internal/registry"
	"github.com/aulatools/sesiones/internal/roster"
)

// DefaultDocumentName is used when the response carries no usable
// filename hint.
const DefaultDocumentName = "sesion_generada.docx"

const maxErrorBody = 1 << 20

// filenamePattern extracts the filename token from a
// Content-Disposition style header, quoted or bare.
var filenamePattern = regexp.MustCompile(`filename[^;=\n]*=('.*?'|".*?"|[^;\n]*)`)

// Document is the binary result of a generation, ready for the save
// strategy.
type Document struct {
	Name        string
	Data        []byte
	ContentType string
}

// Validation is the structure-check verdict from /validate_json.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"error,omitempty"`
}

// Client issues requests against the generation service.
type Client struct {
	baseURL  string
	http     *http.Client
	log      *logbook.Logbook
	inFlight atomic.Bool
}

// NewClient builds a client for the service at baseURL. A zero timeout
// falls back to one minute.
func NewClient(baseURL string, timeout time.Duration, log *logbook.Logbook) *Client {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Busy reports whether a generation request is currently pending.
func (c *Client) Busy() bool {
	return c.inFlight.Load()
}

// Generate submits the snapshot and returns the generated document.
// Preconditions are checked first: when inputs are missing no request
// is issued at all. Session and roster travel as serialized text
// fields only; file bytes are never sent alongside in-memory data.
func (c *Client) Generate(ctx context.Context, snap registry.Snapshot) (Document, error) {
	if missing := snapshotMissing(snap); len(missing) > 0 {
		err := &MissingInputError{Missing: missing}
		c.log.Error("Generación rechazada: %v", err)
		return Document{}, err
	}
	if _, err := period.Parse(snap.StartDate); err != nil {
		c.log.Error("Generación rechazada: %v", err)
		return Document{}, err
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return Document{}, ErrGenerationInFlight
	}
	defer c.inFlight.Store(false)

	body, contentType, err := buildSubmission(snap)
	if err != nil {
		return Document{}, err
	}
	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", body)
	if err != nil {
		return Document{}, fmt.Errorf("generate: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", requestID)
	c.log.Info("Generando documento... (solicitud %s)", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("Generación fallida: %v", err)
		return Document{}, fmt.Errorf("generate: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverErr := decodeServerError(resp)
		c.log.Error("ServerError: %s (HTTP %d)", serverErr.Message, serverErr.Status)
		return Document{}, serverErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("generate: read response: %w", err)
	}
	if len(data) == 0 {
		c.log.Error("Documento vacío recibido (solicitud %s)", requestID)
		return Document{}, ErrEmptyDocument
	}
	name := FilenameFromDisposition(resp.Header.Get("Content-Disposition"))
	c.log.Info("Documento recibido: %s (%d bytes)", name, len(data))
	return Document{
		Name:        name,
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// ValidateJSON asks the validation collaborator whether text matches
// the named reference structure ("session" or "class"). The verdict is
// advisory; transport failures are the only hard errors.
func (c *Client) ValidateJSON(ctx context.Context, text, referenceStructure string) (Validation, error) {
	payload, err := json.Marshal(map[string]string{
		"json_text":           text,
		"reference_structure": referenceStructure,
	})
	if err != nil {
		return Validation{}, fmt.Errorf("generate: marshal validation request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/validate_json", bytes.NewReader(payload))
	if err != nil {
		return Validation{}, fmt.Errorf("generate: build validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Validation{}, fmt.Errorf("generate: validation request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return Validation{}, fmt.Errorf("generate: read validation response: %w", err)
	}
	// Invalid structures come back as non-2xx with the same body shape.
	var verdict Validation
	if err := json.Unmarshal(body, &verdict); err != nil {
		return Validation{}, &ServerError{Status: resp.StatusCode, Message: genericServerMessage(resp.StatusCode)}
	}
	return verdict, nil
}

// SubmitRoster posts the roster to the edit_class collaborator.
func (c *Client) SubmitRoster(ctx context.Context, doc roster.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("generate: marshal roster: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/edit_class", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("generate: build roster request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("generate: roster request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverErr := decodeServerError(resp)
		c.log.Error("ServerError: %s (HTTP %d)", serverErr.Message, serverErr.Status)
		return serverErr
	}
	c.log.Info("Clase enviada a edit_class (%d alumnos)", len(doc.Students))
	return nil
}

func snapshotMissing(snap registry.Snapshot) []registry.Requirement {
	var missing []registry.Requirement
	if !snap.TemplateState.Loaded {
		missing = append(missing, registry.ReqTemplate)
	}
	if snap.StartDate == "" {
		missing = append(missing, registry.ReqStartDate)
	}
	if !snap.SessionState.Loaded {
		missing = append(missing, registry.ReqSession)
	}
	if !snap.RosterState.Loaded {
		missing = append(missing, registry.ReqRoster)
	}
	return missing
}

func buildSubmission(snap registry.Snapshot) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	templateName := snap.TemplateState.Label
	if templateName == "" {
		templateName = "plantilla.docx"
	}
	part, err := writer.CreateFormFile("template", templateName)
	if err != nil {
		return nil, "", fmt.Errorf("generate: template part: %w", err)
	}
	if _, err := part.Write(snap.Template); err != nil {
		return nil, "", fmt.Errorf("generate: template bytes: %w", err)
	}
	if err := writer.WriteField("start_date", snap.StartDate); err != nil {
		return nil, "", fmt.Errorf("generate: start_date field: %w", err)
	}
	sessionText, err := json.Marshal(snap.Session)
	if err != nil {
		return nil, "", fmt.Errorf("generate: serialize session: %w", err)
	}
	if err := writer.WriteField("session_json_text", string(sessionText)); err != nil {
		return nil, "", fmt.Errorf("generate: session field: %w", err)
	}
	rosterText, err := json.Marshal(snap.Roster)
	if err != nil {
		return nil, "", fmt.Errorf("generate: serialize roster: %w", err)
	}
	if err := writer.WriteField("class_json_text", string(rosterText)); err != nil {
		return nil, "", fmt.Errorf("generate: roster field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("generate: close submission: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func decodeServerError(resp *http.Response) *ServerError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := genericServerMessage(resp.StatusCode)
	if err == nil && len(body) > 0 {
		var structured struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &structured) == nil && structured.Error != "" {
			message = structured.Error
		}
	}
	return &ServerError{Status: resp.StatusCode, Message: message}
}

func genericServerMessage(status int) string {
	return fmt.Sprintf("error del servidor %d", status)
}

// FilenameFromDisposition extracts the suggested filename from a
// Content-Disposition style header value. Absent or unparseable hints
// fall back to DefaultDocumentName.
func FilenameFromDisposition(header string) string {
	match := filenamePattern.FindStringSubmatch(header)
	if match == nil {
		return DefaultDocumentName
	}
	name := strings.TrimSpace(match[1])
	name = strings.Trim(name, `"'`)
	if name == "" {
		return DefaultDocumentName
	}
	return name
}

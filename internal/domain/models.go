package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OCRRequest is an incoming request as delivered by the host: base64 payloads
// plus the requested mode. Exactly one of ImageData and PDFData must be non-empty.
type OCRRequest struct {
	ImageData  string
	PDFData    string
	PromptType PromptType
}

// HasImage reports whether ImageData carries anything besides whitespace.
func (r OCRRequest) HasImage() bool {
	return strings.TrimSpace(r.ImageData) != ""
}

// HasPDF reports whether PDFData carries anything besides whitespace.
func (r OCRRequest) HasPDF() bool {
	return strings.TrimSpace(r.PDFData) != ""
}

// NormalizedResult is the fixed output shape of the result normalizer.
// Neither field is ever nil.
type NormalizedResult struct {
	Markdown   string `json:"markdown"`
	LayoutData []any  `json:"layoutData"`
}

// EmptyResult returns a NormalizedResult with both fields set to their empty values.
func EmptyResult() NormalizedResult {
	return NormalizedResult{Markdown: "", LayoutData: []any{}}
}

// OCRResponse is the tagged response variant returned to the host.
// Success and Degraded responses carry Markdown and LayoutData; Error responses
// only carry Status and Error.
type OCRResponse struct {
	Markdown   string         `json:"markdown"`
	LayoutData []any          `json:"layoutData"`
	Status     ResponseStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	InputKind  InputKind      `json:"inputKind,omitempty"`
	RequestID  string         `json:"requestId,omitempty"`
	ResultURL  string         `json:"resultUrl,omitempty"`

	// Err is the underlying error for Error responses; it is not serialized.
	Err error `json:"-"`
}

// IsSuccess reports whether the response carries engine output.
func (r OCRResponse) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// MarshalJSON drops the result fields from Error responses and guarantees
// layoutData is an array (never null) otherwise.
func (r OCRResponse) MarshalJSON() ([]byte, error) {
	if r.Status == StatusError {
		return json.Marshal(struct {
			Status    ResponseStatus `json:"status"`
			Error     string         `json:"error"`
			RequestID string         `json:"requestId,omitempty"`
		}{r.Status, r.Error, r.RequestID})
	}
	type plain OCRResponse
	out := plain(r)
	if out.LayoutData == nil {
		out.LayoutData = []any{}
	}
	return json.Marshal(out)
}

// RequestRecord is one row of the request audit log.
type RequestRecord struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	InputKind  string         `db:"input_kind" json:"input_kind"`
	PromptType string         `db:"prompt_type" json:"prompt_type"`
	Engine     string         `db:"engine" json:"engine"`
	Status     ResponseStatus `db:"status" json:"status"`
	ErrorMsg   string         `db:"error_message" json:"error_message"`
	DurationMs int64          `db:"duration_ms" json:"duration_ms"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

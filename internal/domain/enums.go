package domain

// InputKind tags which payload a request carried and which artifact was materialized.
type InputKind string

const (
	InputKindImage InputKind = "image"
	InputKindPDF   InputKind = "pdf"
)

// Extension returns the file extension (with dot) used for canonical artifacts of this kind.
func (k InputKind) Extension() string {
	if k == InputKindPDF {
		return ".pdf"
	}
	return ".png"
}

// ContentType returns the MIME type of the canonical artifact for this kind.
func (k InputKind) ContentType() string {
	if k == InputKindPDF {
		return "application/pdf"
	}
	return "image/png"
}

// PromptType is the processing mode requested by the caller.
type PromptType string

const (
	PromptLayoutParsing   PromptType = "layout_parsing"
	PromptLayoutDetection PromptType = "layout_detection"
	PromptTextOnly        PromptType = "text_only"
)

// DefaultPromptType is used when the caller omits promptType.
const DefaultPromptType = PromptLayoutParsing

// IsKnown reports whether p is one of the recognized prompt types.
func (p PromptType) IsKnown() bool {
	_, ok := invocationModes[p]
	return ok
}

// InvocationMode is the engine-level prompt mode passed to the inference engine.
type InvocationMode string

const (
	// ModeLayoutAll runs layout detection plus text recognition.
	ModeLayoutAll InvocationMode = "prompt_layout_all_en"
	// ModeLayoutOnly runs layout detection without text recognition.
	ModeLayoutOnly InvocationMode = "prompt_layout_only_en"
	// ModeTextOnly extracts text only, excluding page headers and footers.
	ModeTextOnly InvocationMode = "prompt_ocr"
)

var invocationModes = map[PromptType]InvocationMode{
	PromptLayoutParsing:   ModeLayoutAll,
	PromptLayoutDetection: ModeLayoutOnly,
	PromptTextOnly:        ModeTextOnly,
}

// Mode maps the prompt type to the engine invocation mode. Unrecognized values
// (including the empty string) map to the same mode as layout_parsing.
func (p PromptType) Mode() InvocationMode {
	if m, ok := invocationModes[p]; ok {
		return m
	}
	return ModeLayoutAll
}

// ResponseStatus is the status field of an OCR response.
type ResponseStatus string

const (
	StatusSuccess      ResponseStatus = "success"
	StatusImportFailed ResponseStatus = "import_failed"
	StatusError        ResponseStatus = "error"
)

package service

import (
	"errors"
	"fmt"
	"strings"

	"ocrsvc/internal/artifact"
	"ocrsvc/internal/domain"
)

// SuccessResponse builds the Success variant.
func SuccessResponse(result domain.NormalizedResult, kind domain.InputKind) domain.OCRResponse {
	layout := result.LayoutData
	if layout == nil {
		layout = []any{}
	}
	return domain.OCRResponse{
		Markdown:   result.Markdown,
		LayoutData: layout,
		Status:     domain.StatusSuccess,
		InputKind:  kind,
	}
}

// DegradedResponse builds the Degraded variant from locally decoded metadata
// when the engine could not be constructed.
func DegradedResponse(payload *artifact.Payload, cause error) domain.OCRResponse {
	var sb strings.Builder
	sb.WriteString("# OCR Engine Unavailable\n\n")
	sb.WriteString("The inference engine could not be initialized, so no text was extracted.\n\n")
	switch payload.Kind {
	case domain.InputKindPDF:
		fmt.Fprintf(&sb, "PDF pages: %d\n", payload.Pages)
	default:
		fmt.Fprintf(&sb, "Image size: %dx%d\n", payload.Width, payload.Height)
	}
	return domain.OCRResponse{
		Markdown:   sb.String(),
		LayoutData: []any{},
		Status:     domain.StatusImportFailed,
		Error:      cause.Error(),
		InputKind:  payload.Kind,
	}
}

// ErrorResponse builds the Error variant. It carries no result fields.
func ErrorResponse(err error) domain.OCRResponse {
	return domain.OCRResponse{
		Status: domain.StatusError,
		Error:  errorMessage(err),
		Err:    err,
	}
}

func errorMessage(err error) string {
	var (
		vErr *domain.ValidationError
		dErr *domain.DecodeError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &dErr):
		return err.Error()
	default:
		return "Processing failed: " + err.Error()
	}
}

package service

import (
	"log"
	"strings"

	"ocrsvc/internal/domain"
)

// ValidateRequest checks payload presence and exclusivity and returns the
// effective prompt type. Unrecognized prompt types are accepted and treated as
// the default.
func ValidateRequest(req domain.OCRRequest) (domain.PromptType, error) {
	hasImage, hasPDF := req.HasImage(), req.HasPDF()

	switch {
	case !hasImage && !hasPDF:
		return "", domain.ErrMissingInput
	case hasImage && hasPDF:
		return "", domain.ErrAmbiguousInput
	}

	pt := domain.PromptType(strings.ToLower(strings.TrimSpace(string(req.PromptType))))
	if pt == "" {
		return domain.DefaultPromptType, nil
	}
	if !pt.IsKnown() {
		log.Printf("service.ValidateRequest: unknown prompt type %q, using %s", req.PromptType, domain.DefaultPromptType)
		return domain.DefaultPromptType, nil
	}
	return pt, nil
}

package port

import (
	"context"

	"ocrsvc/internal/domain"
)

// RequestLogRepository persists one audit record per processed OCR request.
type RequestLogRepository interface {
	Create(ctx context.Context, rec *domain.RequestRecord) error
}

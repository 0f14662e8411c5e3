package noop

import (
	"context"

	"ocrsvc/internal/domain"
	"ocrsvc/internal/port"
)

type requestLogRepo struct{}

// NewRequestLogRepo returns a RequestLogRepository that discards records.
// It is used when the audit database is disabled.
func NewRequestLogRepo() port.RequestLogRepository {
	return requestLogRepo{}
}

func (requestLogRepo) Create(context.Context, *domain.RequestRecord) error {
	return nil
}

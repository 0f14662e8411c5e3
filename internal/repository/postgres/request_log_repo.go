package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"ocrsvc/internal/domain"
	"ocrsvc/internal/port"
)

type requestLogRepo struct {
	db *sqlx.DB
}

// NewRequestLogRepo creates a new PostgreSQL-backed RequestLogRepository.
func NewRequestLogRepo(db *sqlx.DB) port.RequestLogRepository {
	return &requestLogRepo{db: db}
}

func (r *requestLogRepo) Create(ctx context.Context, rec *domain.RequestRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO ocr_requests
		(id, input_kind, prompt_type, engine, status, error_message, duration_ms, created_at)
		VALUES (:id, :input_kind, :prompt_type, :engine, :status, :error_message, :duration_ms, :created_at)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("requestLogRepo.Create: %w", err)
	}
	return nil
}

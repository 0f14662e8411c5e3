package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"ocrsvc/internal/config"
)

const connectTimeout = 10 * time.Second

// NewDB opens the audit log pool and checks that the ocr_requests table has
// been migrated. A missing table is only a warning: inserts fail and are
// logged per request, and OCR responses are unaffected.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to audit database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	var table *string
	if err := db.GetContext(ctx, &table, `SELECT to_regclass('ocr_requests')::text`); err != nil {
		log.Printf("postgres.NewDB: cannot check for ocr_requests table: %v", err)
	} else if table == nil {
		log.Printf("postgres.NewDB: WARNING ocr_requests table missing, run cmd/migrate up")
	}
	return db, nil
}

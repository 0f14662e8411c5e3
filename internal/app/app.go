// Package app wires the OCR pipeline from configuration. It is shared by the
// HTTP server and the command-line tool.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"ocrsvc/internal/artifact"
	"ocrsvc/internal/config"
	"ocrsvc/internal/engine"
	"ocrsvc/internal/engine/dotsocr"
	"ocrsvc/internal/engine/gemini"
	"ocrsvc/internal/engine/tesseract"
	"ocrsvc/internal/normalize"
	"ocrsvc/internal/port"
	"ocrsvc/internal/repository/noop"
	"ocrsvc/internal/repository/postgres"
	"ocrsvc/internal/service"
	s3storage "ocrsvc/internal/storage/s3"
)

// RegisterProviders registers every engine backend linked into the binary.
func RegisterProviders() {
	engine.RegisterProvider(dotsocr.Name, dotsocr.NewProvider)
	engine.RegisterProvider(tesseract.Name, tesseract.NewProvider)
	engine.RegisterProvider(gemini.Name, gemini.NewProvider)
}

// Pipeline holds the wired OCR pipeline and the resources it owns.
type Pipeline struct {
	Service service.OCRService
	Handle  *engine.Handle
	DB      *sqlx.DB // nil when the audit log is disabled
}

// Close releases the resources owned by the pipeline.
func (p *Pipeline) Close() {
	if err := p.Handle.Close(); err != nil {
		log.Printf("app.Pipeline.Close: releasing engine: %v", err)
	}
	if p.DB != nil {
		_ = p.DB.Close()
	}
}

// Build constructs the pipeline described by cfg. The engine itself is not
// constructed here; see Warmup.
func Build(cfg *config.Config) (*Pipeline, error) {
	cfg.Engine.Cache.Export()

	provider, err := engine.NewProvider(&cfg.Engine)
	if err != nil {
		return nil, err
	}
	handle := engine.NewHandle(provider, cfg.Engine.ModelDir)

	p := &Pipeline{Handle: handle}

	var requestLog port.RequestLogRepository
	if cfg.DB.Enabled {
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		p.DB = db
		requestLog = postgres.NewRequestLogRepo(db)
	} else {
		requestLog = noop.NewRequestLogRepo()
	}

	var archiver *service.ResultArchiver
	if cfg.Archive.Enabled {
		store, err := s3storage.NewS3Client(&cfg.Archive)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.Ping(pingCtx, cfg.Archive.Bucket); err != nil {
			log.Printf("app.Build: WARNING archive bucket %s not reachable: %v", cfg.Archive.Bucket, err)
		}
		cancel()
		archiver = service.NewResultArchiver(store, &cfg.Archive)
	}

	p.Service = service.NewOCRService(
		handle,
		artifact.NewMaterializer(&cfg.Input),
		normalize.New(),
		requestLog,
		archiver,
	)
	log.Printf("app.Build: provider=%s model_dir=%s audit=%v archive=%v",
		provider.Name(), cfg.Engine.ModelDir, cfg.DB.Enabled, cfg.Archive.Enabled)
	return p, nil
}

// Warmup constructs the engine ahead of the first request.
func (p *Pipeline) Warmup(ctx context.Context) {
	if _, err := p.Handle.Get(ctx); err != nil {
		log.Printf("app.Warmup: engine unavailable, requests will be degraded: %v", err)
		return
	}
	log.Printf("app.Warmup: engine %s ready", p.Handle.ProviderName())
}

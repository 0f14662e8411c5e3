package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"ocrsvc/internal/artifact"
	"ocrsvc/internal/domain"
	"ocrsvc/internal/normalize"
	"ocrsvc/internal/port"
)

// EngineHandle is the shared, lazily constructed engine (see engine.Handle).
type EngineHandle interface {
	Get(ctx context.Context) (port.Engine, error)
	ProviderName() string
}

// OCRService defines the OCR request pipeline contract.
type OCRService interface {
	Process(ctx context.Context, requestID string, req domain.OCRRequest) domain.OCRResponse
}

type ocrService struct {
	handle       EngineHandle
	materializer *artifact.Materializer
	normalizer   *normalize.Normalizer
	requestLog   port.RequestLogRepository
	archiver     *ResultArchiver // optional
}

// NewOCRService creates a new OCRService implementation. archiver may be nil.
func NewOCRService(
	handle EngineHandle,
	materializer *artifact.Materializer,
	normalizer *normalize.Normalizer,
	requestLog port.RequestLogRepository,
	archiver *ResultArchiver,
) OCRService {
	return &ocrService{
		handle:       handle,
		materializer: materializer,
		normalizer:   normalizer,
		requestLog:   requestLog,
		archiver:     archiver,
	}
}

func (s *ocrService) Process(ctx context.Context, requestID string, req domain.OCRRequest) domain.OCRResponse {
	start := time.Now()
	if requestID == "" {
		requestID = uuid.New().String()
	}

	resp := s.process(ctx, requestID, req)
	resp.RequestID = requestID

	s.record(ctx, requestID, req, resp, time.Since(start))
	log.Printf("[%s] ocrService.Process: status=%s kind=%s in %s", requestID, resp.Status, resp.InputKind, time.Since(start))
	return resp
}

func (s *ocrService) process(ctx context.Context, requestID string, req domain.OCRRequest) domain.OCRResponse {
	promptType, err := ValidateRequest(req)
	if err != nil {
		return ErrorResponse(err)
	}

	payload, err := s.materializer.Decode(req)
	if err != nil {
		log.Printf("[%s] ocrService.Process: %v", requestID, err)
		return ErrorResponse(err)
	}

	eng, err := s.handle.Get(ctx)
	if err != nil {
		var initErr *domain.InitializationError
		if errors.As(err, &initErr) {
			log.Printf("[%s] ocrService.Process: engine unavailable, returning degraded response: %v", requestID, err)
			return DegradedResponse(payload, err)
		}
		return ErrorResponse(err)
	}

	result, err := s.run(ctx, eng, payload, promptType)
	if err != nil {
		log.Printf("[%s] ocrService.Process: %v", requestID, err)
		return ErrorResponse(err)
	}

	resp := SuccessResponse(result, payload.Kind)
	resp.RequestID = requestID
	if s.archiver != nil {
		url, err := s.archiver.Archive(ctx, requestID, resp)
		if err != nil {
			log.Printf("[%s] ocrService.Process: archiving result failed: %v", requestID, err)
		} else {
			resp.ResultURL = url
		}
	}
	return resp
}

// run owns the artifact for the whole engine round-trip; it is released on
// every path out of this function.
func (s *ocrService) run(ctx context.Context, eng port.Engine, payload *artifact.Payload, promptType domain.PromptType) (domain.NormalizedResult, error) {
	art, err := s.materializer.Materialize(payload)
	if err != nil {
		return domain.NormalizedResult{}, err
	}
	defer art.Release()

	raw, err := Invoke(ctx, eng, art, promptType)
	if err != nil {
		return domain.NormalizedResult{}, err
	}
	return s.normalizer.Normalize(raw, art.Dir()), nil
}

func (s *ocrService) record(ctx context.Context, requestID string, req domain.OCRRequest, resp domain.OCRResponse, elapsed time.Duration) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		id = uuid.New()
	}
	kind := string(resp.InputKind)
	if kind == "" {
		switch {
		case req.HasPDF() && !req.HasImage():
			kind = string(domain.InputKindPDF)
		case req.HasImage() && !req.HasPDF():
			kind = string(domain.InputKindImage)
		}
	}
	rec := &domain.RequestRecord{
		ID:         id,
		InputKind:  kind,
		PromptType: string(req.PromptType),
		Engine:     s.handle.ProviderName(),
		Status:     resp.Status,
		ErrorMsg:   resp.Error,
		DurationMs: elapsed.Milliseconds(),
	}
	if err := s.requestLog.Create(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("[%s] ocrService.record: failed to write request log: %v", requestID, err)
	}
}

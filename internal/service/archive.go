package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"ocrsvc/internal/config"
	"ocrsvc/internal/domain"
	"ocrsvc/internal/port"
)

// ResultArchiver uploads successful OCR results to object storage and returns
// a presigned download URL.
type ResultArchiver struct {
	storage port.ObjectStorage
	cfg     *config.ArchiveConfig
	now     func() time.Time
}

// NewResultArchiver creates a ResultArchiver.
func NewResultArchiver(storage port.ObjectStorage, cfg *config.ArchiveConfig) *ResultArchiver {
	return &ResultArchiver{storage: storage, cfg: cfg, now: time.Now}
}

// Key returns the object key used for requestID.
func (a *ResultArchiver) Key(requestID string) string {
	return path.Join(a.cfg.Prefix, a.now().UTC().Format("2006/01/02"), requestID+".json")
}

// Archive uploads resp as JSON under Key(requestID).
func (a *ResultArchiver) Archive(ctx context.Context, requestID string, resp domain.OCRResponse) (string, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}

	key := a.Key(requestID)
	if _, err := a.storage.Upload(ctx, port.UploadInput{
		Bucket:      a.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
		Size:        int64(len(body)),
	}); err != nil {
		return "", fmt.Errorf("uploading result: %w", err)
	}

	url, err := a.storage.GetPresignedURL(ctx, a.cfg.Bucket, key, a.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning result: %w", err)
	}
	return url, nil
}

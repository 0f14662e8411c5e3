package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"ocrsvc/internal/artifact"
	"ocrsvc/internal/domain"
	"ocrsvc/internal/port"
)

// Invoke runs eng against the artifact in the mode selected by promptType.
// Every engine failure, including a panic inside the engine adapter, is
// returned as *domain.InferenceError.
func Invoke(ctx context.Context, eng port.Engine, art *artifact.Artifact, promptType domain.PromptType) (raw any, err error) {
	mode := promptType.Mode()
	start := time.Now()
	log.Printf("service.Invoke: %s parsing %s (%s, mode=%s)", eng.Name(), art.Path, art.Kind, mode)

	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, &domain.InferenceError{Engine: eng.Name(), Err: fmt.Errorf("engine panic: %v", r)}
		}
	}()

	raw, err = eng.ParseFile(ctx, port.EngineInput{Path: art.Path, Kind: art.Kind, Mode: mode})
	if err != nil {
		log.Printf("service.Invoke: %s failed after %s: %v", eng.Name(), time.Since(start), err)
		return nil, &domain.InferenceError{Engine: eng.Name(), Err: err}
	}
	log.Printf("service.Invoke: %s finished in %s", eng.Name(), time.Since(start))
	return raw, nil
}

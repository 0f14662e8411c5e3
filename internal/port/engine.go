package port

import (
	"context"

	"ocrsvc/internal/domain"
)

// EngineInput carries what the inference engine needs to process one artifact.
type EngineInput struct {
	Path string
	Kind domain.InputKind
	Mode domain.InvocationMode
}

// Engine is a ready-to-use inference engine instance.
//
// ParseFile returns the engine's raw output. Its shape is not fixed: it may be
// a sequence ([]any), a mapping (map[string]any), or any other value.
type Engine interface {
	Name() string
	ParseFile(ctx context.Context, input EngineInput) (any, error)
}

// EngineProvider exposes the construction capabilities of one engine backend.
type EngineProvider interface {
	Name() string
	// NewDefault performs the zero-argument high-level construction.
	NewDefault(ctx context.Context) (Engine, error)
	// ConstructorParams lists the parameter names accepted by the lower-level constructor.
	ConstructorParams(ctx context.Context) ([]string, error)
	// NewWithParams performs the parameterized lower-level construction.
	NewWithParams(ctx context.Context, params map[string]any) (Engine, error)
}

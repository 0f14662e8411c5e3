package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"ocrsvc/internal/domain"
	"ocrsvc/internal/port"
)

// Handle is the lazily constructed, process-wide engine instance.
//
// The first caller of Get runs the construction sequence; concurrent callers
// block until it finishes and observe the same engine or the same error. A
// failed construction is not retried for the lifetime of the Handle.
type Handle struct {
	provider port.EngineProvider
	modelDir string

	once   sync.Once
	engine port.Engine
	err    error
	done   chan struct{}
}

// NewHandle creates a Handle for provider. Nothing is constructed until Get.
func NewHandle(provider port.EngineProvider, modelDir string) *Handle {
	return &Handle{
		provider: provider,
		modelDir: modelDir,
		done:     make(chan struct{}),
	}
}

// Get returns the cached engine, constructing it on first use.
func (h *Handle) Get(ctx context.Context) (port.Engine, error) {
	h.once.Do(func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("engine.Handle.Get: %s construction panicked: %v", h.provider.Name(), r)
				h.engine = nil
				h.err = &domain.InitializationError{
					Provider: h.provider.Name(),
					Attempts: []error{fmt.Errorf("construction panic: %v", r)},
				}
			}
		}()
		// Construction outlives the request that happened to trigger it.
		h.engine, h.err = Construct(context.WithoutCancel(ctx), h.provider, h.modelDir)
	})
	return h.engine, h.err
}

// Close releases the engine if it holds resources. It does not trigger construction.
func (h *Handle) Close() error {
	select {
	case <-h.done:
	default:
		return nil
	}
	if c, ok := h.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ProviderName returns the name of the underlying provider.
func (h *Handle) ProviderName() string {
	return h.provider.Name()
}

// Status reports whether a construction attempt has finished and whether it
// produced an engine. It never triggers construction.
func (h *Handle) Status() (ready bool, attempted bool, err error) {
	select {
	case <-h.done:
		return h.err == nil, true, h.err
	default:
		return false, false, nil
	}
}

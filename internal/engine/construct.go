package engine

import (
	"context"
	"fmt"
	"log"
	"slices"

	"ocrsvc/internal/domain"
	"ocrsvc/internal/port"
)

// ModelDirParamAliases are the lower-level constructor parameter names that take
// the model directory, in binding preference order.
var ModelDirParamAliases = []string{
	"model_dir",
	"model_root",
	"pretrained_model_name_or_path",
	"weights_dir",
	"cache_dir",
}

// LocalBackendParam selects the in-process inference backend and is always
// passed to the parameterized constructor.
const LocalBackendParam = "use_hf"

// Construct builds an engine from provider, trying the zero-argument constructor
// first and the parameterized constructor second. It returns a
// *domain.InitializationError carrying every attempt's failure when both fail.
func Construct(ctx context.Context, provider port.EngineProvider, modelDir string) (port.Engine, error) {
	initErr := &domain.InitializationError{Provider: provider.Name()}

	eng, err := provider.NewDefault(ctx)
	if err == nil {
		log.Printf("engine.Construct: %s ready (default constructor)", provider.Name())
		return eng, nil
	}
	log.Printf("engine.Construct: %s default constructor failed: %v", provider.Name(), err)
	initErr.Attempts = append(initErr.Attempts, fmt.Errorf("default constructor: %w", err))

	params, err := provider.ConstructorParams(ctx)
	if err != nil {
		log.Printf("engine.Construct: %s parameter probe failed: %v", provider.Name(), err)
		initErr.Attempts = append(initErr.Attempts, fmt.Errorf("probing constructor params: %w", err))
		return nil, initErr
	}

	args := BindParams(params, modelDir)
	eng, err = provider.NewWithParams(ctx, args)
	if err != nil {
		log.Printf("engine.Construct: %s parameterized constructor failed: %v", provider.Name(), err)
		initErr.Attempts = append(initErr.Attempts, fmt.Errorf("parameterized constructor: %w", err))
		return nil, initErr
	}

	log.Printf("engine.Construct: %s ready (parameterized constructor, params=%v)", provider.Name(), args)
	return eng, nil
}

// BindParams builds the argument set for the parameterized constructor. The
// first model-directory alias found in params is bound to modelDir; the
// local-backend flag is always set.
func BindParams(params []string, modelDir string) map[string]any {
	args := map[string]any{LocalBackendParam: true}
	if modelDir == "" {
		return args
	}
	for _, alias := range ModelDirParamAliases {
		if slices.Contains(params, alias) {
			args[alias] = modelDir
			break
		}
	}
	return args
}

package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ocrsvc/internal/domain"
	"ocrsvc/internal/engine"
	"ocrsvc/mocks"
)

func newProvider() *mocks.MockEngineProvider {
	p := new(mocks.MockEngineProvider)
	p.On("Name").Return("fake").Maybe()
	return p
}

func TestConstruct_DefaultConstructor(t *testing.T) {
	p := newProvider()
	eng := new(mocks.MockEngine)
	p.On("NewDefault", mock.Anything).Return(eng, nil)

	got, err := engine.Construct(context.Background(), p, "/models/dots")

	require.NoError(t, err)
	assert.Same(t, eng, got)
	p.AssertNotCalled(t, "ConstructorParams", mock.Anything)
	p.AssertNotCalled(t, "NewWithParams", mock.Anything, mock.Anything)
}

func TestConstruct_FallsBackToParameterized(t *testing.T) {
	p := newProvider()
	eng := new(mocks.MockEngine)
	p.On("NewDefault", mock.Anything).Return(nil, errors.New("no weights"))
	p.On("ConstructorParams", mock.Anything).Return([]string{"use_hf", "model_dir"}, nil)
	p.On("NewWithParams", mock.Anything, map[string]any{"use_hf": true, "model_dir": "/models/dots"}).Return(eng, nil)

	got, err := engine.Construct(context.Background(), p, "/models/dots")

	require.NoError(t, err)
	assert.Same(t, eng, got)
	p.AssertExpectations(t)
}

func TestConstruct_BothFail(t *testing.T) {
	p := newProvider()
	defaultErr := errors.New("no weights")
	paramErr := errors.New("cuda unavailable")
	p.On("NewDefault", mock.Anything).Return(nil, defaultErr)
	p.On("ConstructorParams", mock.Anything).Return([]string{"weights_dir"}, nil)
	p.On("NewWithParams", mock.Anything, mock.Anything).Return(nil, paramErr)

	got, err := engine.Construct(context.Background(), p, "/models/dots")

	assert.Nil(t, got)
	var initErr *domain.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "fake", initErr.Provider)
	assert.Len(t, initErr.Attempts, 2)
	assert.ErrorIs(t, err, defaultErr)
	assert.ErrorIs(t, err, paramErr)
}

func TestConstruct_ProbeFails(t *testing.T) {
	p := newProvider()
	p.On("NewDefault", mock.Anything).Return(nil, errors.New("no weights"))
	p.On("ConstructorParams", mock.Anything).Return(nil, errors.New("introspection unsupported"))

	_, err := engine.Construct(context.Background(), p, "/models/dots")

	var initErr *domain.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Len(t, initErr.Attempts, 2)
	p.AssertNotCalled(t, "NewWithParams", mock.Anything, mock.Anything)
}

func TestBindParams(t *testing.T) {
	tests := []struct {
		name     string
		params   []string
		modelDir string
		want     map[string]any
	}{
		{
			name:     "model_dir",
			params:   []string{"model_dir", "device"},
			modelDir: "/m",
			want:     map[string]any{"use_hf": true, "model_dir": "/m"},
		},
		{
			name:     "hf style name",
			params:   []string{"pretrained_model_name_or_path"},
			modelDir: "/m",
			want:     map[string]any{"use_hf": true, "pretrained_model_name_or_path": "/m"},
		},
		{
			name:     "first alias wins",
			params:   []string{"cache_dir", "weights_dir", "model_root"},
			modelDir: "/m",
			want:     map[string]any{"use_hf": true, "model_root": "/m"},
		},
		{
			name:     "no alias accepted",
			params:   []string{"device", "dtype"},
			modelDir: "/m",
			want:     map[string]any{"use_hf": true},
		},
		{
			name:     "no model dir configured",
			params:   []string{"model_dir"},
			modelDir: "",
			want:     map[string]any{"use_hf": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.BindParams(tt.params, tt.modelDir))
		})
	}
}

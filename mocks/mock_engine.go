package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ocrsvc/internal/port"
)

// MockEngine is a mock implementation of port.Engine.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockEngine) ParseFile(ctx context.Context, input port.EngineInput) (any, error) {
	args := m.Called(ctx, input)
	return args.Get(0), args.Error(1)
}

// MockEngineProvider is a mock implementation of port.EngineProvider.
type MockEngineProvider struct {
	mock.Mock
}

func (m *MockEngineProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockEngineProvider) NewDefault(ctx context.Context) (port.Engine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Engine), args.Error(1)
}

func (m *MockEngineProvider) ConstructorParams(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockEngineProvider) NewWithParams(ctx context.Context, params map[string]any) (port.Engine, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Engine), args.Error(1)
}

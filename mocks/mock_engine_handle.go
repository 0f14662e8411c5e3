package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ocrsvc/internal/port"
)

// MockEngineHandle is a mock implementation of service.EngineHandle and
// handler.EngineStatus.
type MockEngineHandle struct {
	mock.Mock
}

func (m *MockEngineHandle) Get(ctx context.Context) (port.Engine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Engine), args.Error(1)
}

func (m *MockEngineHandle) ProviderName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockEngineHandle) Status() (bool, bool, error) {
	args := m.Called()
	return args.Bool(0), args.Bool(1), args.Error(2)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ocrsvc/internal/domain"
)

// MockRequestLogRepo is a mock implementation of port.RequestLogRepository.
type MockRequestLogRepo struct {
	mock.Mock
}

func (m *MockRequestLogRepo) Create(ctx context.Context, rec *domain.RequestRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

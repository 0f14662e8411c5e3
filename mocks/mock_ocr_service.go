package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ocrsvc/internal/domain"
)

// MockOCRService is a mock implementation of service.OCRService.
type MockOCRService struct {
	mock.Mock
}

func (m *MockOCRService) Process(ctx context.Context, requestID string, req domain.OCRRequest) domain.OCRResponse {
	args := m.Called(ctx, requestID, req)
	return args.Get(0).(domain.OCRResponse)
}

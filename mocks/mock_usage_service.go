package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
	"chainfly/internal/service"
)

// MockUsageService is a mock implementation of service.UsageService.
type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) Record(ctx context.Context, contractID uuid.UUID, input *service.UsageInput) (*domain.UsageReading, error) {
	args := m.Called(ctx, contractID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageReading), args.Error(1)
}

func (m *MockUsageService) ListByContract(ctx context.Context, contractID uuid.UUID, offset, limit int) ([]domain.UsageReading, int, error) {
	args := m.Called(ctx, contractID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.UsageReading), args.Int(1), args.Error(2)
}

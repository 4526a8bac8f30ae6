package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
)

// MockUsageRepo is a mock implementation of port.UsageRepository.
type MockUsageRepo struct {
	mock.Mock
}

func (m *MockUsageRepo) Create(ctx context.Context, reading *domain.UsageReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockUsageRepo) ListByContract(ctx context.Context, contractID uuid.UUID, offset, limit int) ([]domain.UsageReading, int, error) {
	args := m.Called(ctx, contractID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.UsageReading), args.Int(1), args.Error(2)
}

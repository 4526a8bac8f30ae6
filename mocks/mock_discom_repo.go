package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
)

// MockDiscomRepo is a mock implementation of port.DiscomRepository.
type MockDiscomRepo struct {
	mock.Mock
}

func (m *MockDiscomRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Discom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discom), args.Error(1)
}

func (m *MockDiscomRepo) MarkUpdated(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

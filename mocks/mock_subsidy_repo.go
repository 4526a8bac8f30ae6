package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
)

// MockSubsidyRepo is a mock implementation of port.SubsidyRepository.
type MockSubsidyRepo struct {
	mock.Mock
}

func (m *MockSubsidyRepo) ListActive(ctx context.Context, state string, date time.Time) ([]domain.SubsidyScheme, error) {
	args := m.Called(ctx, state, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubsidyScheme), args.Error(1)
}

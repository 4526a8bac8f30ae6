package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

// MockTariffStructureRepo is a mock implementation of port.TariffStructureRepository.
type MockTariffStructureRepo struct {
	mock.Mock
}

func (m *MockTariffStructureRepo) Create(ctx context.Context, structure *domain.TariffStructure) error {
	args := m.Called(ctx, structure)
	return args.Error(0)
}

func (m *MockTariffStructureRepo) FindCovering(ctx context.Context, lookup port.TariffLookup) (*domain.TariffStructure, error) {
	args := m.Called(ctx, lookup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffStructure), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
	"chainfly/internal/service"
)

// MockTariffService is a mock implementation of service.TariffService.
type MockTariffService struct {
	mock.Mock
}

func (m *MockTariffService) Resolve(ctx context.Context, req domain.TariffRequest) (*domain.TariffResolution, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffResolution), args.Error(1)
}

func (m *MockTariffService) RecordOverride(ctx context.Context, input *service.OverrideInput) (*domain.TariffStructure, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffStructure), args.Error(1)
}

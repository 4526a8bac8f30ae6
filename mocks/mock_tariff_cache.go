package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
)

// MockTariffCache is a mock implementation of port.TariffCache.
type MockTariffCache struct {
	mock.Mock
}

func (m *MockTariffCache) Get(ctx context.Context, key string) (*domain.TariffStructure, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffStructure), args.Error(1)
}

func (m *MockTariffCache) Set(ctx context.Context, key string, structure *domain.TariffStructure, ttl time.Duration) error {
	args := m.Called(ctx, key, structure, ttl)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
)

// MockDiscomTariffClient is a mock implementation of port.DiscomTariffClient.
type MockDiscomTariffClient struct {
	mock.Mock
}

func (m *MockDiscomTariffClient) FetchTariff(ctx context.Context, discom *domain.Discom, req domain.TariffRequest) (*domain.TariffStructure, error) {
	args := m.Called(ctx, discom, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffStructure), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chainfly/internal/port"
)

// MockEventPublisher is a mock implementation of port.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event port.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

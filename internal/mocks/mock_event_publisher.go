package mocks

import (
	"context"

	"github.com/cinetick/seat-reservation-core/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.LifecycleEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

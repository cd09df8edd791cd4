package events

import (
	"context"

	"github.com/cinetick/seat-reservation-core/internal/domain"
)

// NopPublisher drops every event. It stands in for the broker in tests and in
// deployments that run without one.
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (p *NopPublisher) Publish(ctx context.Context, event domain.LifecycleEvent) error {
	return nil
}

func (p *NopPublisher) Close() error {
	return nil
}

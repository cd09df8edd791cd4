package events

import (
	"context"
	"sync"

	"github.com/cinetick/seat-reservation-core/internal/domain"
)

// RecordingPublisher keeps every published event in memory so tests can
// assert on what the booking flow emitted.
type RecordingPublisher struct {
	mu     sync.RWMutex
	events []domain.LifecycleEvent
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{
		events: make([]domain.LifecycleEvent, 0),
	}
}

func (p *RecordingPublisher) Publish(ctx context.Context, event domain.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

// Events returns a copy of all recorded events in publish order.
func (p *RecordingPublisher) Events() []domain.LifecycleEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	events := make([]domain.LifecycleEvent, len(p.events))
	copy(events, p.events)

	return events
}

// EventsOfType returns the recorded events matching the given type.
func (p *RecordingPublisher) EventsOfType(eventType string) []domain.LifecycleEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	events := make([]domain.LifecycleEvent, 0)

	for _, e := range p.events {
		if e.Type == eventType {
			events = append(events, e)
		}
	}

	return events
}

// Reset clears the record of published events.
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = make([]domain.LifecycleEvent, 0)
}

func (p *RecordingPublisher) Close() error {
	return nil
}

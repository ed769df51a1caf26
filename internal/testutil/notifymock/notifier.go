package notifymock

import (
	"context"
	"sync"

	domain "findoc-pipeline/internal/domain/notify"
)

var _ domain.Notifier = (*Notifier)(nil)

// Notifier records published events; optionally override PublishFn.
type Notifier struct {
	PublishFn func(ctx context.Context, ev domain.Event) error

	mu     sync.Mutex
	events []domain.Event
}

func (m *Notifier) Publish(ctx context.Context, ev domain.Event) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, ev)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *Notifier) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

package ws

import (
	"context"

	"presence-lab/domain/event"
)

// Sink is the per-connection delivery channel. The fanout worker (and the
// registry, for the initial roster) enqueue here; the connection's write
// pump drains it.
type Sink struct {
	events chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{events: make(chan event.DomainEvent, bufferSize)}
}

// Consume implements contract.EventSink. A full buffer means this client
// is too slow to keep up; the event is dropped for this recipient only,
// which keeps one closing or stalled connection from aborting delivery to
// the rest.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Events exposes the drain side for the write pump.
func (s *Sink) Events() <-chan event.DomainEvent {
	return s.events
}

package workers

import (
	"context"
	"log/slog"
	"time"

	"presence-lab/contract"
	"presence-lab/domain/event"
)

var _ contract.Worker = (*FanoutWorker)(nil)

// FanoutWorker delivers presence events to every active session except
// the originator, plus the permanent sinks (persistence, projections).
//
// Delivery is at-most-once and best-effort: no acknowledgment, no
// ordering guarantee between events from different origins. A recipient
// that fails or times out is logged and skipped; it never aborts
// delivery to the rest.
type FanoutWorker struct {
	log            *slog.Logger
	registry       contract.IRegistry
	permanentSinks []contract.EventSink
	domainEvents   chan event.DomainEvent
	sinkTimeout    time.Duration
}

func NewFanoutWorker(log *slog.Logger, registry contract.IRegistry,
	permanentSinks []contract.EventSink, domainEvents chan event.DomainEvent,
	sinkTimeout time.Duration) *FanoutWorker {
	return &FanoutWorker{
		log:            log,
		registry:       registry,
		permanentSinks: permanentSinks,
		domainEvents:   domainEvents,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *FanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.domainEvents:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout resolves the recipients at delivery time, so a session that
// terminated after the event was dispatched is simply no longer in the
// list. Each recipient gets its own timeout context: one slow consumer
// cannot hold the others hostage.
func (w *FanoutWorker) Fanout(ctx context.Context, evt event.DomainEvent) {
	recipients := w.registry.SinksExcluding(evt.Origin())
	recipients = append(recipients, w.permanentSinks...)

	for _, sink := range recipients {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink delivery failed", "origin", evt.Origin(), "error", err)
		}
		cancel()
	}
}

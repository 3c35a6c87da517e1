package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/repositories"
	"presence-lab/runtime/workers"

	"github.com/google/uuid"
)

// Engine turns raw connection events into a consistent view of who is
// online and where. It owns the registry, the event channel feeding the
// fanout worker, and the supervised worker set. Sessions are created by
// the transport layer through NewSession and drive all state changes.
type Engine struct {
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	records        repositories.IPresenceRepository
	domainEvents   chan event.DomainEvent
	permanentSinks []contract.EventSink
	sayCap         int
	sinkTimeout    time.Duration
}

func NewEngine(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, records repositories.IPresenceRepository,
	bufferSize, sayCap int, sinkTimeout time.Duration) *Engine {
	return &Engine{
		log:          log,
		supervisor:   supervisor,
		registry:     registry,
		records:      records,
		domainEvents: make(chan event.DomainEvent, bufferSize),
		sayCap:       sayCap,
		sinkTimeout:  sinkTimeout,
	}
}

// AddSinks registers permanent sinks that receive every event regardless
// of origin (persistence, projections). Must be called before Start.
func (e *Engine) AddSinks(sinks ...contract.EventSink) {
	e.permanentSinks = append(e.permanentSinks, sinks...)
}

// Start registers the fanout worker plus any extra workers under the
// supervisor and launches supervision. It returns immediately; the
// supervisor keeps restarting crashed workers until ctx is canceled.
func (e *Engine) Start(ctx context.Context, extra ...contract.Worker) {
	fanout := workers.NewFanoutWorker(e.log, e.registry, e.permanentSinks,
		e.domainEvents, e.sinkTimeout)

	e.supervisor.Add(fanout)
	for _, w := range extra {
		e.supervisor.Add(w)
	}

	e.log.Info("Starting presence engine and all supervised workers")
	go e.supervisor.Run(ctx)
}

// Stop cancels supervision; workers observe the canceled context and exit.
func (e *Engine) Stop() {
	e.log.Info("Requesting presence engine shutdown")
	e.supervisor.Stop()
}

// Registry exposes the live presence view for read-only callers (tests,
// debug endpoints).
func (e *Engine) Registry() contract.IRegistry {
	return e.registry
}

// NewSession creates a session in the Connecting state for a freshly
// established connection. No registry entry exists until the session
// announces an identity.
func (e *Engine) NewSession(sink contract.EventSink) *Session {
	return &Session{
		id:     domain.ConnectionID(uuid.NewString()),
		engine: e,
		sink:   sink,
		state:  Connecting,
	}
}

// Dispatch hands an event to the fanout worker. Delivery is best-effort:
// when the channel is full the event is dropped with a warning rather
// than blocking the session's real-time path.
func (e *Engine) Dispatch(evt event.DomainEvent) {
	select {
	case e.domainEvents <- evt:
	default:
		e.log.Warn(fmt.Sprintf("Event channel full, dropping event from %s", evt.Origin()))
	}
}

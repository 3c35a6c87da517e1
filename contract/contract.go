//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"presence-lab/domain"
	"presence-lab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives presence events. Implementations must not block
// longer than the context allows: a slow or dead recipient is the sink's
// problem, never the router's.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the authoritative in-memory mapping from connection ID to
// live participant state, plus the per-connection delivery sinks. All
// mutations are atomic with respect to concurrent readers.
type IRegistry interface {
	Put(ctx context.Context, id domain.ConnectionID, p domain.Participant, sink EventSink)
	Get(id domain.ConnectionID) (domain.Participant, bool)
	UpdatePosition(id domain.ConnectionID, pos domain.Position) bool
	UpdateMessage(id domain.ConnectionID, message string) bool
	Remove(id domain.ConnectionID) bool
	SnapshotExcluding(id domain.ConnectionID) []domain.RemoteParticipant
	SinksExcluding(id domain.ConnectionID) []EventSink
	Len() int
}

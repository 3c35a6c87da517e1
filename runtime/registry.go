// Package runtime hosts the presence engine: the session lifecycle, the
// authoritative presence registry, and the supervised workers that move
// state changes to other sessions and to durable storage. It orchestrates
// the system without containing wire or storage format knowledge.
package runtime

import (
	"context"
	"sync"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
)

type entry struct {
	participant domain.Participant
	sink        contract.EventSink
}

// Registry is the authoritative mapping from connection ID to live
// participant state. It holds exactly one entry per active session: an
// entry is created when announce completes and removed atomically with
// terminate, never outliving its session.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.ConnectionID]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ConnectionID]*entry)}
}

// Put admits a session: it inserts the participant and delivers the roster
// snapshot into the joining sink within the same critical section.
//
// Delivering the roster under the write lock is what guarantees the
// protocol ordering contract: a broadcast can only reach this sink after
// acquiring the read lock, which in turn can only happen after Put
// returns, and the sink's channel is FIFO. The client therefore always
// observes roster before any joined/moved/said referencing a roster member.
func (r *Registry) Put(ctx context.Context, id domain.ConnectionID, p domain.Participant, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roster := r.snapshotExcludingLocked(id)
	r.entries[id] = &entry{participant: p, sink: sink}
	_ = sink.Consume(ctx, event.RosterSnapshot{For: id, Participants: roster})
}

func (r *Registry) Get(id domain.ConnectionID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return domain.Participant{}, false
	}
	return e.participant, true
}

// UpdatePosition reports whether the entry existed. A false return is the
// expected outcome of an update racing with terminate and is not an error.
func (r *Registry) UpdatePosition(id domain.ConnectionID, pos domain.Position) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.participant.Position = pos
	return true
}

func (r *Registry) UpdateMessage(id domain.ConnectionID, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.participant.Message = message
	return true
}

// Remove deletes the entry and reports whether it was present, so a
// racing double-terminate produces exactly one departure broadcast.
func (r *Registry) Remove(id domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// SnapshotExcluding returns a consistent point-in-time view of every
// participant except the given one, for initial roster delivery.
func (r *Registry) SnapshotExcluding(id domain.ConnectionID) []domain.RemoteParticipant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotExcludingLocked(id)
}

func (r *Registry) snapshotExcludingLocked(id domain.ConnectionID) []domain.RemoteParticipant {
	snapshot := make([]domain.RemoteParticipant, 0, len(r.entries))
	for connID, e := range r.entries {
		if connID == id {
			continue
		}
		snapshot = append(snapshot, domain.RemoteParticipant{ID: connID, Participant: e.participant})
	}
	return snapshot
}

// SinksExcluding returns the delivery sinks of every active session except
// the originator. The slice is a copy: callers iterate it without holding
// the registry lock.
func (r *Registry) SinksExcluding(id domain.ConnectionID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sinks := make([]contract.EventSink, 0, len(r.entries))
	for connID, e := range r.entries {
		if connID == id {
			continue
		}
		sinks = append(sinks, e.sink)
	}
	return sinks
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

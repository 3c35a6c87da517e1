package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/repositories"
)

// PresenceSink is the write-behind path to the durable store. It consumes
// move/say events from the fanout, coalesces the latest change per
// username in a debounce buffer, and flushes on a timer with a bounded
// number of concurrent writes.
//
// The real-time path never waits on it: Consume only mutates the buffer.
// Write failures are logged and swallowed; the in-memory registry remains
// the source of truth until a later flush overwrites the record.
type PresenceSink struct {
	mu         sync.Mutex
	timer      *time.Timer
	pending    map[string]*pendingUpdate
	repository repositories.IPresenceRepository
	log        *slog.Logger
	debounce   time.Duration
	inFlight   chan struct{}
}

// pendingUpdate accumulates the fields touched since the last flush. Nil
// means untouched: the flush preserves whatever the stored record holds.
type pendingUpdate struct {
	position *domain.Position
	message  *string
}

func NewPresenceSink(repository repositories.IPresenceRepository, log *slog.Logger,
	debounce time.Duration, maxInFlight int) *PresenceSink {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &PresenceSink{
		pending:    make(map[string]*pendingUpdate),
		repository: repository,
		log:        log,
		debounce:   debounce,
		inFlight:   make(chan struct{}, maxInFlight),
	}
}

// Consume buffers the change carried by the event. Rapid successive moves
// by the same username collapse into one pending record, decoupling write
// volume from input event rate.
func (s *PresenceSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ParticipantMoved:
		pos := evt.Position
		s.buffer(evt.Username, func(u *pendingUpdate) { u.position = &pos })
	case event.ParticipantSaid:
		text := evt.Text
		s.buffer(evt.Username, func(u *pendingUpdate) { u.message = &text })
	default:
		// Joins and departures don't change the durable record.
	}
	return nil
}

func (s *PresenceSink) buffer(username string, apply func(*pendingUpdate)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update, ok := s.pending[username]
	if !ok {
		update = &pendingUpdate{}
		s.pending[username] = update
	}
	apply(update)

	// First change since the last flush arms the debounce timer.
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.Flush)
	}
}

// Flush swaps the buffer out under the lock, then writes each username's
// record outside it. The semaphore caps concurrent store operations so a
// slow store cannot accumulate unbounded write attempts.
func (s *PresenceSink) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.pending
	s.pending = make(map[string]*pendingUpdate)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for username, update := range batch {
		wg.Add(1)
		s.inFlight <- struct{}{}
		go func(username string, update *pendingUpdate) {
			defer wg.Done()
			defer func() { <-s.inFlight }()
			s.write(username, update)
		}(username, update)
	}
	wg.Wait()
}

// write merges the pending fields over the stored record and saves it.
// Untouched fields keep their stored value, so a burst of moves cannot
// erase the last spoken message.
func (s *PresenceSink) write(username string, update *pendingUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), s.debounce)
	defer cancel()

	record, _, err := s.repository.Load(ctx, username)
	if err != nil {
		s.log.Warn("Durable read before write-behind failed", "username", username, "error", err)
		record = domain.PersistedRecord{Position: domain.DefaultSpawn}
	}
	if update.position != nil {
		record.Position = *update.position
	}
	if update.message != nil {
		record.Message = *update.message
	}

	if err := s.repository.Save(ctx, username, record); err != nil {
		// Divergence between live and durable state is accepted here: the
		// next flush for this username overwrites the record anyway.
		s.log.Error("Durable write failed", "username", username, "error", err)
	}
}

package runtime

import (
	"context"
	"fmt"
	"sync"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/errors"
	"presence-lab/protocol"

	"github.com/go-playground/validator/v10"
)

type SessionState int

const (
	// Connecting means the handshake is done but no identity was announced.
	Connecting SessionState = iota
	// announcing is the transient window while the durable record is being
	// loaded. Kept internal: externally the session is still Connecting.
	announcing
	// Active means the identity is announced and the registry entry exists.
	Active
	// Terminated means the connection closed or the identity was rejected.
	Terminated
)

var validate = validator.New()

// Identity is the post-authentication payload a session announces. The
// presence core trusts it blindly: credentials never reach this layer.
type Identity struct {
	Username string `validate:"required,min=1,max=32"`
	Avatar   string `validate:"required,max=64"`
}

// Session binds one connection to its participant. It is the only owner
// of the participant value: once Terminate runs, no other component may
// hold it. All methods are safe for concurrent use, although a well
// behaved transport calls them from a single read pump.
type Session struct {
	id     domain.ConnectionID
	engine *Engine
	sink   contract.EventSink

	mu       sync.Mutex
	state    SessionState
	username string
}

func (s *Session) ID() domain.ConnectionID { return s.id }

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Announce promotes a Connecting session to Active. It validates the
// identity, loads the durable record for the username (absent or failing
// reads seed the spawn defaults), inserts the participant into the
// registry, and broadcasts the join. A malformed identity returns
// ErrIdentityInvalid and leaves no partial registry entry.
func (s *Session) Announce(ctx context.Context, identity Identity) error {
	if err := validate.Struct(identity); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrIdentityInvalid, err)
	}

	s.mu.Lock()
	switch s.state {
	case Terminated:
		// Lost the race with disconnect: silently drop, nothing was admitted.
		s.mu.Unlock()
		return nil
	case Active, announcing:
		s.mu.Unlock()
		return errors.ErrAlreadyAnnounced
	}
	s.state = announcing
	s.mu.Unlock()

	// The durable read happens outside every lock: a slow store must not
	// stall other sessions, nor this session's own terminate.
	position, message := domain.DefaultSpawn, ""
	record, found, err := s.engine.records.Load(ctx, identity.Username)
	if err != nil {
		s.engine.log.Warn("Durable read failed, seeding spawn defaults",
			"username", identity.Username, "error", err)
	} else if found {
		position, message = record.Position, record.Message
	}

	participant := domain.NewParticipant(identity.Username, identity.Avatar, position, message)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Terminated {
		// Disconnected while the record was loading: never admit the entry.
		return nil
	}
	s.state = Active
	s.username = identity.Username

	// Put delivers the roster into our sink atomically with the insert,
	// then the join is fanned out to everyone else.
	s.engine.registry.Put(ctx, s.id, participant, s.sink)
	s.engine.Dispatch(event.ParticipantJoined{ID: s.id, Participant: participant})
	return nil
}

// Move updates the session's position and broadcasts it. Calls against a
// session that already terminated are silent no-ops: they are the
// expected outcome of an update racing with disconnect.
func (s *Session) Move(pos domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return
	}
	if !s.engine.registry.UpdatePosition(s.id, pos) {
		return
	}
	s.engine.Dispatch(event.ParticipantMoved{ID: s.id, Username: s.username, Position: pos})
}

// Say records and broadcasts a spoken message, truncated to the engine's
// cap before both broadcast and persistence.
func (s *Session) Say(text string) {
	text = protocol.Truncate(text, s.engine.sayCap)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return
	}
	if !s.engine.registry.UpdateMessage(s.id, text) {
		return
	}
	s.engine.Dispatch(event.ParticipantSaid{ID: s.id, Username: s.username, Text: text})
}

// Terminate tears the session down from any state. It is idempotent: the
// registry entry is removed at most once and the departure is broadcast
// only if the session had reached Active.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Terminated {
		return
	}
	wasActive := s.state == Active
	s.state = Terminated

	if wasActive && s.engine.registry.Remove(s.id) {
		s.engine.Dispatch(event.ParticipantLeft{ID: s.id})
	}
}

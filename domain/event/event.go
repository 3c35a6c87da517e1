package event

import (
	"presence-lab/domain"
)

// DomainEvent is a presence state change flowing from the engine to the
// fanout worker. Origin identifies the session that caused the change, so
// the router can exclude it from delivery.
type DomainEvent interface {
	Origin() domain.ConnectionID
}

// RosterSnapshot is delivered once, to a joining session only, before any
// incremental event referencing a connection it contains. It never contains
// the joining session itself.
type RosterSnapshot struct {
	For          domain.ConnectionID
	Participants []domain.RemoteParticipant
}

func (e RosterSnapshot) Origin() domain.ConnectionID { return e.For }

// ParticipantJoined announces a newly active session to everyone else.
type ParticipantJoined struct {
	ID          domain.ConnectionID
	Participant domain.Participant
}

func (e ParticipantJoined) Origin() domain.ConnectionID { return e.ID }

// ParticipantMoved carries a position change.
type ParticipantMoved struct {
	ID       domain.ConnectionID
	Username string
	Position domain.Position
}

func (e ParticipantMoved) Origin() domain.ConnectionID { return e.ID }

// ParticipantSaid carries a spoken message, already truncated to the cap.
type ParticipantSaid struct {
	ID       domain.ConnectionID
	Username string
	Text     string
}

func (e ParticipantSaid) Origin() domain.ConnectionID { return e.ID }

// ParticipantLeft announces a departed session.
type ParticipantLeft struct {
	ID domain.ConnectionID
}

func (e ParticipantLeft) Origin() domain.ConnectionID { return e.ID }

// Package domain contains core concepts of the presence system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// ConnectionID identifies one live connection. It is assigned at handshake
// time and is unique among currently active sessions. It is NOT a user
// identity: two connections announcing the same username keep distinct
// connection IDs.
type ConnectionID string

// Position is a pair of coordinates inside the shared space.
type Position struct {
	X float64
	Y float64
}

// DefaultSpawn is where a participant appears when no durable record
// exists for their username yet.
var DefaultSpawn = Position{X: 100, Y: 100}

// Participant is the live presence state of one connected identity.
// A Participant is owned exclusively by its session: once the session
// terminates, no component may keep a reference to it.
type Participant struct {
	Username string
	Avatar   string
	Position Position
	Message  string
}

// NewParticipant seeds a participant from an announced identity and the
// last-known durable state (or the spawn defaults when none exists).
func NewParticipant(username, avatar string, position Position, message string) Participant {
	return Participant{
		Username: username,
		Avatar:   avatar,
		Position: position,
		Message:  message,
	}
}

// RemoteParticipant pairs a participant with its connection ID, as seen by
// other sessions in roster snapshots and join events.
type RemoteParticipant struct {
	ID          ConnectionID
	Participant Participant
}

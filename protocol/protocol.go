// Package protocol defines the wire vocabulary spoken between clients and
// the presence core: three inbound intents and five outbound state-change
// frames, all JSON envelopes of the form {"type": ..., "data": ...}.
package protocol

import (
	"encoding/json"
	"fmt"

	"presence-lab/domain"
	"presence-lab/domain/event"

	"github.com/samber/lo"
)

const (
	TypeAnnounce = "announce"
	TypeMove     = "move"
	TypeSay      = "say"

	TypeRoster = "roster"
	TypeJoined = "joined"
	TypeMoved  = "moved"
	TypeSaid   = "said"
	TypeLeft   = "left"
)

// DefaultSayCap bounds the length of a spoken message, in runes, before
// both broadcast and persistence. Display wrapping beyond the cap belongs
// to the presentation layer.
const DefaultSayCap = 40

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads.

type Announce struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type Move struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Say struct {
	Text string `json:"text"`
}

// Outbound payloads.

type ParticipantPayload struct {
	Username string  `json:"username"`
	Avatar   string  `json:"avatar"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Message  string  `json:"message,omitempty"`
}

type Roster struct {
	Participants map[string]ParticipantPayload `json:"participants"`
}

type Joined struct {
	ID          string             `json:"id"`
	Participant ParticipantPayload `json:"participant"`
}

type Moved struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type Said struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Left struct {
	ID string `json:"id"`
}

// Decode parses a raw client frame into its envelope. The payload stays
// raw: the caller decodes it against the type it expects.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed frame: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("frame has no type")
	}
	return env, nil
}

// Encode wraps a payload into an envelope frame.
func Encode(msgType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: data})
}

// EncodeEvent renders a presence event as the frame a client receives.
func EncodeEvent(e event.DomainEvent) ([]byte, error) {
	switch evt := e.(type) {
	case event.RosterSnapshot:
		participants := lo.SliceToMap(evt.Participants,
			func(remote domain.RemoteParticipant) (string, ParticipantPayload) {
				return string(remote.ID), toPayload(remote.Participant)
			})
		return Encode(TypeRoster, Roster{Participants: participants})
	case event.ParticipantJoined:
		return Encode(TypeJoined, Joined{ID: string(evt.ID), Participant: toPayload(evt.Participant)})
	case event.ParticipantMoved:
		return Encode(TypeMoved, Moved{ID: string(evt.ID), X: evt.Position.X, Y: evt.Position.Y})
	case event.ParticipantSaid:
		return Encode(TypeSaid, Said{ID: string(evt.ID), Text: evt.Text})
	case event.ParticipantLeft:
		return Encode(TypeLeft, Left{ID: string(evt.ID)})
	default:
		return nil, fmt.Errorf("no wire representation for event %T", e)
	}
}

func toPayload(p domain.Participant) ParticipantPayload {
	return ParticipantPayload{
		Username: p.Username,
		Avatar:   p.Avatar,
		X:        p.Position.X,
		Y:        p.Position.Y,
		Message:  p.Message,
	}
}

// Truncate caps a message to n runes. Byte-slicing would split multi-byte
// characters, so the cut happens on the rune boundary.
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

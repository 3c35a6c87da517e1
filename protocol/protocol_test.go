package protocol

import (
	"encoding/json"
	"testing"

	"presence-lab/domain"
	"presence-lab/domain/event"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	req := require.New(t)

	t.Run("valid frame", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"move","data":{"x":150,"y":220}}`))
		req.NoError(err)
		req.Equal(TypeMove, env.Type)

		var move Move
		req.NoError(json.Unmarshal(env.Data, &move))
		req.Equal(150.0, move.X)
		req.Equal(220.0, move.Y)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":`))
		req.Error(err)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := Decode([]byte(`{"data":{"x":1}}`))
		req.Error(err)
	})
}

func TestEncodeEvent_Roster(t *testing.T) {
	req := require.New(t)

	frame, err := EncodeEvent(event.RosterSnapshot{
		For: "conn-b",
		Participants: []domain.RemoteParticipant{
			{
				ID: "conn-a",
				Participant: domain.NewParticipant("alice", "cat",
					domain.Position{X: 40, Y: 60}, "hello"),
			},
		},
	})
	req.NoError(err)

	env, err := Decode(frame)
	req.NoError(err)
	req.Equal(TypeRoster, env.Type)

	var roster Roster
	req.NoError(json.Unmarshal(env.Data, &roster))
	req.Len(roster.Participants, 1)

	alice := roster.Participants["conn-a"]
	req.Equal("alice", alice.Username)
	req.Equal("cat", alice.Avatar)
	req.Equal(40.0, alice.X)
	req.Equal(60.0, alice.Y)
	req.Equal("hello", alice.Message)
}

func TestEncodeEvent_IncrementalFrames(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		event    event.DomainEvent
		wantType string
	}{
		{"joined", event.ParticipantJoined{
			ID:          "conn-a",
			Participant: domain.NewParticipant("alice", "cat", domain.DefaultSpawn, ""),
		}, TypeJoined},
		{"moved", event.ParticipantMoved{
			ID: "conn-a", Username: "alice", Position: domain.Position{X: 1, Y: 2},
		}, TypeMoved},
		{"said", event.ParticipantSaid{
			ID: "conn-a", Username: "alice", Text: "hi",
		}, TypeSaid},
		{"left", event.ParticipantLeft{ID: "conn-a"}, TypeLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeEvent(tt.event)
			req.NoError(err)

			env, err := Decode(frame)
			req.NoError(err)
			req.Equal(tt.wantType, env.Type)
		})
	}
}

func TestEncodeEvent_MovedCarriesCoordinates(t *testing.T) {
	req := require.New(t)

	frame, err := EncodeEvent(event.ParticipantMoved{
		ID: "conn-a", Username: "alice", Position: domain.Position{X: 150, Y: 220},
	})
	req.NoError(err)

	env, err := Decode(frame)
	req.NoError(err)

	var moved Moved
	req.NoError(json.Unmarshal(env.Data, &moved))
	req.Equal("conn-a", moved.ID)
	req.Equal(150.0, moved.X)
	req.Equal(220.0, moved.Y)
}

func TestTruncate(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than cap", "hello", 40, "hello"},
		{"exactly at cap", "0123456789", 10, "0123456789"},
		{"over cap", "01234567890", 10, "0123456789"},
		{"multibyte runes cut on rune boundary", "héhéhé", 3, "héh"},
		{"zero cap", "hello", 0, ""},
		{"negative cap", "hello", -1, ""},
		{"empty input", "", 40, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.want, Truncate(tt.in, tt.n))
		})
	}
}

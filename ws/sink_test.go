package ws

import (
	"context"
	"testing"

	"presence-lab/domain/event"

	"github.com/stretchr/testify/require"
)

func TestSink_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	req := require.New(t)
	s := NewSink(1)
	ctx := context.Background()

	req.NoError(s.Consume(ctx, event.ParticipantLeft{ID: "conn-a"}))

	// A second event against a full buffer is dropped for this recipient
	// only; Consume must not block the fanout.
	req.NoError(s.Consume(ctx, event.ParticipantLeft{ID: "conn-b"}))

	evt := <-s.Events()
	left, ok := evt.(event.ParticipantLeft)
	req.True(ok)
	req.Equal("conn-a", string(left.ID))

	select {
	case <-s.Events():
		req.Fail("the overflowing event should have been dropped")
	default:
	}
}

func TestSink_CanceledContextSurfacesOnFullBuffer(t *testing.T) {
	req := require.New(t)
	s := NewSink(1)
	req.NoError(s.Consume(context.Background(), event.ParticipantLeft{ID: "conn-a"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Consume(ctx, event.ParticipantLeft{ID: "conn-b"})
	req.ErrorIs(err, context.Canceled)
}

func TestSink_PreservesOrder(t *testing.T) {
	req := require.New(t)
	s := NewSink(8)
	ctx := context.Background()

	req.NoError(s.Consume(ctx, event.ParticipantJoined{ID: "conn-a"}))
	req.NoError(s.Consume(ctx, event.ParticipantLeft{ID: "conn-a"}))

	_, isJoined := (<-s.Events()).(event.ParticipantJoined)
	req.True(isJoined)
	_, isLeft := (<-s.Events()).(event.ParticipantLeft)
	req.True(isLeft)
}

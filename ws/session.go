package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"presence-lab/domain"
	"presence-lab/protocol"
	"presence-lab/runtime"

	"github.com/gorilla/websocket"
)

// serveSession runs one connection's read pump until the client goes away.
// Inbound frames are processed strictly in receipt order, which is what
// gives each connection its per-session ordering guarantee.
func (s *Server) serveSession(ctx context.Context, conn *websocket.Conn, session *runtime.Session, sink *Sink) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Teardown is idempotent: whether the client closed cleanly, the read
	// failed, or the write pump gave up, exactly one departure is emitted.
	defer session.Terminate()

	go s.writePump(ctx, cancel, conn, session, sink)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Connection read failed", "connection", session.ID(), "error", err)
			}
			return
		}
		if err := s.handleFrame(ctx, session, data); err != nil {
			s.log.Warn("Rejecting session", "connection", session.ID(), "error", err)
			return
		}
	}
}

// handleFrame dispatches one inbound frame. Unknown types and malformed
// payloads are logged and skipped; only a rejected identity tears the
// session down.
func (s *Server) handleFrame(ctx context.Context, session *runtime.Session, data []byte) error {
	env, err := protocol.Decode(data)
	if err != nil {
		s.log.Debug("Dropping malformed frame", "connection", session.ID(), "error", err)
		return nil
	}

	switch env.Type {
	case protocol.TypeAnnounce:
		var announce protocol.Announce
		if err := json.Unmarshal(env.Data, &announce); err != nil {
			return fmt.Errorf("malformed announce: %w", err)
		}
		return session.Announce(ctx, runtime.Identity{
			Username: announce.Username,
			Avatar:   announce.Avatar,
		})
	case protocol.TypeMove:
		var move protocol.Move
		if err := json.Unmarshal(env.Data, &move); err != nil {
			s.log.Debug("Dropping malformed move", "connection", session.ID(), "error", err)
			return nil
		}
		session.Move(domain.Position{X: move.X, Y: move.Y})
	case protocol.TypeSay:
		var say protocol.Say
		if err := json.Unmarshal(env.Data, &say); err != nil {
			s.log.Debug("Dropping malformed say", "connection", session.ID(), "error", err)
			return nil
		}
		session.Say(say.Text)
	default:
		s.log.Debug("Dropping frame with unknown type", "connection", session.ID(), "type", env.Type)
	}
	return nil
}

// writePump drains the session sink and pushes frames to the client. The
// sink channel is FIFO, so the roster delivered at announce time always
// reaches the client before any broadcast referencing a roster member.
func (s *Server) writePump(ctx context.Context, cancel context.CancelFunc,
	conn *websocket.Conn, session *runtime.Session, sink *Sink) {
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sink.Events():
			frame, err := protocol.EncodeEvent(evt)
			if err != nil {
				s.log.Error("Failed to encode event", "connection", session.ID(), "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.log.Debug("Connection write failed", "connection", session.ID(), "error", err)
				return
			}
		}
	}
}

// Package ws is the transport layer: it upgrades HTTP connections to
// WebSockets, feeds connect/disconnect lifecycle events into the presence
// engine, and exposes the signup/login endpoints of the account service.
// The engine itself never touches a socket.
package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "presence-lab/errors"
	"presence-lab/runtime"
	"presence-lab/services"

	"github.com/gorilla/websocket"
)

type Server struct {
	log                  *slog.Logger
	engine               *runtime.Engine
	accounts             services.IAccountService
	upgrader             websocket.Upgrader
	connectionBufferSize int
}

func NewServer(log *slog.Logger, engine *runtime.Engine,
	accounts services.IAccountService, connectionBufferSize int) *Server {
	return &Server{
		log:      log,
		engine:   engine,
		accounts: accounts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients are served from arbitrary dev origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connectionBufferSize: connectionBufferSize,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleConnect)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)
	return mux
}

// handleConnect is the session's connect() lifecycle event: upgrade the
// socket, create a Connecting session, and block on the read pump until
// the client disconnects.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	sink := NewSink(s.connectionBufferSize)
	session := s.engine.NewSession(sink)
	s.log.Info("Client connected", "connection", session.ID(), "remote", r.RemoteAddr)

	s.serveSession(r.Context(), conn, session, sink)
	s.log.Info("Client disconnected", "connection", session.ID())
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, account, err := s.accounts.Register(req.Username, req.Password, req.Avatar)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token: string(token),
		User:  userPayload{Username: account.Username, Avatar: account.Avatar},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, account, err := s.accounts.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: string(token),
		User:  userPayload{Username: account.Username, Avatar: account.Avatar},
	})
}

// statusFor maps the service error taxonomy onto HTTP statuses. Anything
// unrecognized is a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists),
		errors.Is(err, apperrors.ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

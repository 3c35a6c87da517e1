package ws

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "presence-lab/errors"
	"presence-lab/mocks"
	"presence-lab/protocol"
	"presence-lab/runtime"
	"presence-lab/runtime/workers"
	"presence-lab/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthTestServer(t *testing.T, accounts services.IAccountService) *httptest.Server {
	t.Helper()
	log := slog.Default()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIPresenceRepository(ctrl)

	// The engine is never started: auth endpoints don't touch it.
	engine := runtime.NewEngine(log, workers.NewSupervisor(log), runtime.NewRegistry(),
		repo, 1, protocol.DefaultSayCap, time.Second)

	ts := httptest.NewServer(NewServer(log, engine, accounts, 8).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandleSignup_Success(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := mocks.NewMockIAccountService(ctrl)
	accounts.EXPECT().
		Register("alice42", "ComplexPass123!", "cat").
		Return(services.Token("signed-token"), services.Account{
			UserID: "user-123", Username: "alice42", Avatar: "cat",
		}, nil)

	ts := newAuthTestServer(t, accounts)

	resp := postJSON(t, ts.URL+"/signup", credentialsRequest{
		Username: "alice42", Password: "ComplexPass123!", Avatar: "cat",
	})
	req.Equal(http.StatusCreated, resp.StatusCode)

	var body authResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Equal("signed-token", body.Token)
	req.Equal("alice42", body.User.Username)
	req.Equal("cat", body.User.Avatar)
}

func TestHandleSignup_DuplicateUsername(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := mocks.NewMockIAccountService(ctrl)
	accounts.EXPECT().
		Register("alice42", "ComplexPass123!", "cat").
		Return(services.Token(""), services.Account{}, apperrors.ErrUserAlreadyExists)

	ts := newAuthTestServer(t, accounts)

	resp := postJSON(t, ts.URL+"/signup", credentialsRequest{
		Username: "alice42", Password: "ComplexPass123!", Avatar: "cat",
	})
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSignup_InvalidBody(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No Register expectation: the body never parses.
	accounts := mocks.NewMockIAccountService(ctrl)
	ts := newAuthTestServer(t, accounts)

	resp, err := http.Post(ts.URL+"/signup", "application/json", bytes.NewReader([]byte("{not json")))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestHandleLogin_Success(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := mocks.NewMockIAccountService(ctrl)
	accounts.EXPECT().
		Login("alice42", "ComplexPass123!").
		Return(services.Token("signed-token"), services.Account{
			UserID: "user-123", Username: "alice42", Avatar: "cat",
		}, nil)

	ts := newAuthTestServer(t, accounts)

	resp := postJSON(t, ts.URL+"/login", credentialsRequest{
		Username: "alice42", Password: "ComplexPass123!",
	})
	req.Equal(http.StatusOK, resp.StatusCode)

	var body authResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Equal("signed-token", body.Token)
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := mocks.NewMockIAccountService(ctrl)
	accounts.EXPECT().
		Login("alice42", "wrong").
		Return(services.Token(""), services.Account{}, apperrors.ErrInvalidCredentials)

	ts := newAuthTestServer(t, accounts)

	resp := postJSON(t, ts.URL+"/login", credentialsRequest{
		Username: "alice42", Password: "wrong",
	})
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

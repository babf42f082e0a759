// internal/ws/handler_test.go
package ws

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmansell/camelup/internal/auth"
)

// newTestServer builds a server with routes mounted on a fresh mux.
func newTestServer(t *testing.T) (*Server, *http.ServeMux) {
	t.Helper()
	s := NewServer(auth.NewService("test-secret", 0), 0)
	mux := http.NewServeMux()
	s.Routes(mux)
	return s, mux
}

// loginToken performs a login and returns the issued token.
func loginToken(t *testing.T, mux *http.ServeMux, username string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// TestLoginIssuesVerifiableToken verifies the login flow produces a
// token the auth service accepts.
func TestLoginIssuesVerifiableToken(t *testing.T) {
	s, mux := newTestServer(t)
	token := loginToken(t, mux, "sam")

	userID, username, err := s.Auth.VerifyToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, userID)
	assert.Equal(t, "sam", username)
}

// TestLoginRejectsEmptyUsername verifies a blank username is a 400.
func TestLoginRejectsEmptyUsername(t *testing.T) {
	_, mux := newTestServer(t)
	body, _ := json.Marshal(map[string]string{"username": "  "})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestCreateMatchRequiresAuth verifies match creation needs a token.
func TestCreateMatchRequiresAuth(t *testing.T) {
	_, mux := newTestServer(t)
	body, _ := json.Marshal(createMatchRequest{Seats: 2})
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestCreateMatchRegistersMatch verifies a created match lands in the
// registry with its AI seats filled.
func TestCreateMatchRegistersMatch(t *testing.T) {
	s, mux := newTestServer(t)
	token := loginToken(t, mux, "sam")

	body, _ := json.Marshal(createMatchRequest{Seats: 3, AISeats: 2, AIDifficulty: "smart"})
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		MatchID string `json:"matchId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	matchID, err := uuid.Parse(resp.MatchID)
	require.NoError(t, err)

	m, _, ok := s.Registry.Get(matchID)
	require.True(t, ok, "Match should be registered")
	assert.Len(t, m.Players, 2, "AI seats should be filled at creation")
	for _, p := range m.Players {
		assert.True(t, p.IsAI)
	}
	assert.False(t, m.Started, "Match waits for the human seat")
}

// TestCreateMatchRejectsAllAISeats verifies at least one human seat is
// required.
func TestCreateMatchRejectsAllAISeats(t *testing.T) {
	_, mux := newTestServer(t)
	token := loginToken(t, mux, "sam")

	body, _ := json.Marshal(createMatchRequest{Seats: 2, AISeats: 2})
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

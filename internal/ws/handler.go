// internal/ws/handler.go
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/jmansell/camelup/engine"
	"github.com/jmansell/camelup/internal/auth"
	"github.com/jmansell/camelup/internal/game"
	"github.com/jmansell/camelup/internal/models"
)

// Server holds the HTTP/websocket handlers and their dependencies.
type Server struct {
	Auth     *auth.Service
	Registry *MatchRegistry

	// TurnDuration is applied to every created match. 0 disables the
	// idle-turn timer.
	TurnDuration time.Duration
}

// NewServer constructs the websocket server.
func NewServer(authSvc *auth.Service, turnDuration time.Duration) *Server {
	return &Server{
		Auth:         authSvc,
		Registry:     NewMatchRegistry(),
		TurnDuration: turnDuration,
	}
}

// Routes registers the server's handlers on a mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", s.HandleLogin)
	mux.HandleFunc("POST /match", s.HandleCreateMatch)
	mux.HandleFunc("GET /ws/match/{id}", s.HandleMatchWS)
}

// HandleLogin issues a session token for a username. There is no
// account store; identity is a fresh UUID bound to the token.
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		http.Error(w, "username required", http.StatusBadRequest)
		return
	}

	userID := uuid.New()
	token, err := s.Auth.CreateToken(userID, req.Username)
	if err != nil {
		logrus.WithError(err).Error("token creation failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"userId": userID.String(),
		"token":  token,
	})
}

// createMatchRequest configures a new match: total seats and how many
// of them are AI driven.
type createMatchRequest struct {
	Seats        int    `json:"seats"`
	AISeats      int    `json:"aiSeats"`
	AIDifficulty string `json:"aiDifficulty"` // "random", "basic", "smart"
}

// HandleCreateMatch creates a match and registers it. The match starts
// once every human seat has connected.
func (s *Server) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.authenticate(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Seats < 2 || req.Seats > engine.MaxPlayers {
		http.Error(w, "seats must be 2-8", http.StatusBadRequest)
		return
	}
	if req.AISeats < 0 || req.AISeats >= req.Seats {
		http.Error(w, "at least one human seat required", http.StatusBadRequest)
		return
	}

	m := game.NewCamelMatch()
	m.Rules.NumPlayers = uint8(req.Seats)
	m.TurnDuration = s.TurnDuration

	difficulty := req.AIDifficulty
	if difficulty == "" {
		difficulty = "basic"
	}
	m.Mu.Lock()
	for i := 0; i < req.AISeats; i++ {
		m.AddPlayer(&models.Player{
			ID:         uuid.New(),
			User:       models.User{ID: uuid.New(), Username: "Bot " + string(rune('1'+i))},
			IsAI:       true,
			Difficulty: difficulty,
		})
	}
	m.Mu.Unlock()

	s.Registry.Create(m)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"matchId": m.ID.String(),
		"seats":   req.Seats,
		"aiSeats": req.AISeats,
	})
}

// HandleMatchWS upgrades the connection, authenticates the player, and
// runs the intent read loop until the connection drops.
func (s *Server) HandleMatchWS(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	userID, username, err := s.authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	m, hub, ok := s.Registry.Get(matchID)
	if !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{"camelup"},
	})
	if err != nil {
		logrus.WithError(err).Warn("websocket accept failed")
		return
	}

	hub.register(userID, conn)

	player := &models.Player{
		ID:        userID,
		User:      models.User{ID: userID, Username: username},
		Conn:      conn,
		Connected: true,
	}

	m.Mu.Lock()
	if m.Started {
		m.HandleReconnect(userID, conn)
	} else {
		m.AddPlayer(player)
	}
	seats := int(m.Rules.NumPlayers)
	full := !m.Started && len(m.Players) == seats
	m.Mu.Unlock()

	if full {
		m.Start()
	}

	s.readLoop(r.Context(), m, hub, userID, conn)
}

// readLoop consumes intents from one connection until it closes.
func (s *Server) readLoop(ctx context.Context, m *game.CamelMatch, hub *matchHub, playerID uuid.UUID, conn *websocket.Conn) {
	defer func() {
		hub.unregister(playerID, conn)
		conn.Close(websocket.StatusNormalClosure, "")
		m.Mu.Lock()
		m.HandleDisconnect(playerID)
		m.Mu.Unlock()
	}()

	for {
		var intent models.GameIntent
		if err := wsjson.Read(ctx, conn, &intent); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				logrus.WithError(err).WithField("player", playerID).Debug("read loop ended")
			}
			return
		}
		m.HandleIntent(playerID, intent)
	}
}

// authenticate resolves the caller's identity from the Authorization
// header or, for websocket connects, a token query parameter.
func (s *Server) authenticate(r *http.Request) (uuid.UUID, string, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	return s.Auth.VerifyToken(token)
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("response write failed")
	}
}

// internal/game/game.go
package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	engine "github.com/jmansell/camelup/engine"
	"github.com/jmansell/camelup/engine/agent"
	"github.com/jmansell/camelup/internal/cache"
	"github.com/jmansell/camelup/internal/models"

	"github.com/coder/websocket"
)

// OnMatchEndFunc defines the signature for a callback function executed
// when a match ends. It receives the lobby ID, the winner's ID, and the
// final coin totals.
type OnMatchEndFunc func(lobbyID uuid.UUID, winner uuid.UUID, coins map[uuid.UUID]int)

// GameEventType represents the type of a match-related event broadcast
// via WebSockets.
type GameEventType string

// Constants defining the various GameEvent types used for WebSocket
// communication.
const (
	EventMatchStart         GameEventType = "match_start"             // Public: match started, initial positions rolled.
	EventPyramidRollResult  GameEventType = "pyramid_roll_result"     // Public: a regular die came out of the pyramid.
	EventCrazyRollResult    GameEventType = "crazy_roll_result"       // Public: the crazy die came out of the pyramid.
	EventMovementComplete   GameEventType = "movement_complete"       // Public: the rolled camel finished moving.
	EventLegBetTaken        GameEventType = "player_leg_bet"          // Public: player claimed a wager tile (color + value).
	EventRaceBetPlaced      GameEventType = "player_race_bet"         // Public: player placed a race bet (kind only, color hidden).
	EventPrivateRaceBet     GameEventType = "private_race_bet"        // Private: color of the race bet just placed.
	EventDesertTilePlaced   GameEventType = "player_desert_tile"      // Public: player placed a desert tile.
	EventPlayerTurn         GameEventType = "game_player_turn"        // Public: notification of the current player's turn.
	EventLegEnd             GameEventType = "game_leg_end"            // Public: leg scored, includes per-player deltas.
	EventMatchEnd           GameEventType = "game_end"                // Public: match has ended, includes results.
	EventPrivateSyncState   GameEventType = "private_sync_state"      // Private: full board sync for a player.
	EventPrivateIntentFail  GameEventType = "private_intent_fail"     // Private: an intent was rejected.
)

// EventPlayer identifies a player within a GameEvent payload.
type EventPlayer struct {
	ID uuid.UUID `json:"id"`
}

// GameEvent is the standard structure for broadcasting match state
// changes and actions.
type GameEvent struct {
	Type   GameEventType `json:"type"`
	Player *EventPlayer  `json:"player,omitempty"` // The player initiating the event.

	Payload map[string]interface{} `json:"payload,omitempty"` // Additional arbitrary data.

	State *SyncState `json:"state,omitempty"` // Full state for sync events.
}

// CamelMatch represents the state and logic for a single running match.
type CamelMatch struct {
	ID      uuid.UUID // Unique identifier for this match instance.
	LobbyID uuid.UUID // ID of the lobby that created this match.

	Rules engine.MatchRules // Configurable match rules.

	Players []*models.Player // Seats in the match, human and AI.

	// Engine integration: authoritative game state.
	Engine         engine.GameState
	PlayerToEngine map[uuid.UUID]uint8          // Service player UUID -> engine index.
	EngineToPlayer [engine.MaxPlayers]uuid.UUID // Engine index -> service player UUID.

	// Turn management.
	TurnID       int           // Increments each turn, used for timer validity checks.
	TurnDuration time.Duration // Configurable duration for each turn timer.
	turnTimer    *time.Timer   // Active timer for the current player's turn.
	delayTimer   *time.Timer   // Presentation pacing between action and turn advance.
	actionIndex  int           // Sequential index for action history logging.
	syncVersion  uint64        // Monotonic state version; clients drop stale syncs.

	// Presentation pacing. When disabled (headless play, tests, fast
	// AI-only matches) turns resolve synchronously after each action.
	PacingEnabled bool

	// AI seat driving.
	AIThinkDelay time.Duration // Delay before an AI seat acts on its turn.
	aiTimer      *time.Timer
	policies     map[uuid.UUID]*agent.Policy

	// Match lifecycle state.
	Started  bool
	GameOver bool

	lastSeen map[uuid.UUID]time.Time // Last activity per player.
	Mu       sync.Mutex              // Mutex protecting concurrent access to match state.

	// Communication callbacks.
	BroadcastFn         func(ev GameEvent)                     // Sends an event to all connected players.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent) // Sends an event to a single player.
	OnMatchEnd          OnMatchEndFunc                         // Callback executed when the match finishes.
}

// NewCamelMatch creates a new match instance with default settings.
// The engine is initialized during Start.
func NewCamelMatch() *CamelMatch {
	id, _ := uuid.NewRandom()
	return &CamelMatch{
		ID:             id,
		Rules:          engine.DefaultMatchRules(),
		PlayerToEngine: make(map[uuid.UUID]uint8),
		lastSeen:       make(map[uuid.UUID]time.Time),
		policies:       make(map[uuid.UUID]*agent.Policy),
		TurnDuration:   30 * time.Second,
		AIThinkDelay:   time.Second,
		PacingEnabled:  true,
	}
}

// AddPlayer adds a player to the match if not started, or marks them as
// reconnected. AI seats get a decision policy keyed to their difficulty.
// Assumes lock is held by caller.
func (m *CamelMatch) AddPlayer(p *models.Player) {
	for i, pl := range m.Players {
		if pl.ID == p.ID {
			m.Players[i].Conn = p.Conn
			m.Players[i].Connected = true
			m.Players[i].User = p.User
			m.lastSeen[p.ID] = time.Now()
			log.Printf("Match %s: Player %s (%s) reconnected.", m.ID, p.ID, p.User.Username)
			m.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": true, "username": p.User.Username})
			return
		}
	}

	if m.Started {
		log.Printf("Match %s: Player %s cannot be added because the match has already started.", m.ID, p.ID)
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Match already in progress.")
		}
		return
	}

	m.Players = append(m.Players, p)
	m.lastSeen[p.ID] = time.Now()
	if p.IsAI {
		tier, ok := agent.ParseDifficulty(p.Difficulty)
		if !ok {
			tier = agent.DifficultyBasic
		}
		m.policies[p.ID] = agent.NewPolicy(tier, int64(time.Now().UnixNano()))
	}
	log.Printf("Match %s: Player %s (%s) added (ai=%v).", m.ID, p.ID, p.User.Username, p.IsAI)
	m.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": false, "username": p.User.Username, "ai": p.IsAI})
}

// Start initializes the engine, rolls starting positions, and begins
// the first turn.
func (m *CamelMatch) Start() {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if m.Started || m.GameOver {
		log.Printf("Match %s: Start called in invalid state (Started:%v, Over:%v). Ignoring.", m.ID, m.Started, m.GameOver)
		return
	}
	if len(m.Players) < 2 || len(m.Players) > engine.MaxPlayers {
		log.Printf("Match %s: Need 2-%d players, got %d. Cannot start.", m.ID, engine.MaxPlayers, len(m.Players))
		return
	}

	// Build player <-> engine index mapping.
	for i, p := range m.Players {
		m.PlayerToEngine[p.ID] = uint8(i)
		m.EngineToPlayer[i] = p.ID
	}

	rules := m.Rules
	rules.NumPlayers = uint8(len(m.Players))
	seed := uint64(time.Now().UnixNano())
	m.Engine = engine.NewGame(seed, rules)
	m.Engine.Setup()

	m.Started = true
	m.logAction(uuid.Nil, "match_start", map[string]interface{}{"players": len(m.Players)})
	m.persistInitialMatchState(seed)

	m.fireEvent(GameEvent{
		Type:    EventMatchStart,
		Payload: map[string]interface{}{"players": len(m.Players)},
	})
	m.broadcastSyncStateToAll()

	m.scheduleNextTurnTimer()
	m.broadcastPlayerTurn()
	m.maybeScheduleAI()
}

// HandleDisconnect marks a player as disconnected. The match plays on;
// a disconnected player's turns are resolved by the turn timer.
// Assumes lock is held by caller.
func (m *CamelMatch) HandleDisconnect(playerID uuid.UUID) {
	log.Printf("Match %s: Handling disconnect for player %s.", m.ID, playerID)
	m.logAction(playerID, "player_disconnect", nil)

	for i := range m.Players {
		if m.Players[i].ID == playerID {
			if !m.Players[i].Connected {
				return
			}
			m.Players[i].Connected = false
			m.Players[i].Conn = nil
			break
		}
	}
	m.broadcastSyncStateToAll()
}

// HandleReconnect marks a player as connected and sends them the
// current board state.
// Assumes lock is held by caller.
func (m *CamelMatch) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	for i := range m.Players {
		if m.Players[i].ID == playerID {
			m.Players[i].Connected = true
			m.Players[i].Conn = conn
			m.lastSeen[playerID] = time.Now()
			m.logAction(playerID, "player_reconnect", nil)

			m.sendSyncState(playerID)
			m.broadcastSyncStateToAll()
			return
		}
	}

	log.Printf("Match %s: Reconnecting player %s not found.", m.ID, playerID)
	if conn != nil {
		conn.Close(websocket.StatusPolicyViolation, "Match not found or you were removed.")
	}
}

// sendSyncState sends the current board state to a single player.
// Assumes lock is held by caller.
func (m *CamelMatch) sendSyncState(playerID uuid.UUID) {
	state := m.BuildSyncState(playerID)
	m.fireEventToPlayer(playerID, GameEvent{
		Type:  EventPrivateSyncState,
		State: &state,
	})
}

// broadcastSyncStateToAll sends the board state to every connected
// player. The sync version increments once per broadcast so clients can
// drop stale snapshots delivered out of order.
// Assumes lock is held by caller.
func (m *CamelMatch) broadcastSyncStateToAll() {
	m.syncVersion++
	for _, p := range m.Players {
		if p.Connected {
			m.sendSyncState(p.ID)
		}
	}
}

// countConnectedPlayers returns the number of players currently marked
// as connected.
// Assumes lock is held by caller.
func (m *CamelMatch) countConnectedPlayers() int {
	count := 0
	for _, p := range m.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

// getPlayerByID finds a player struct by ID within the match.
// Assumes lock is held by caller.
func (m *CamelMatch) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range m.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// fireEvent broadcasts an event to all connected players via the
// BroadcastFn callback.
// Assumes lock is held by caller.
func (m *CamelMatch) fireEvent(ev GameEvent) {
	if m.BroadcastFn != nil {
		m.BroadcastFn(ev)
	} else {
		log.Printf("Warning: Match %s: BroadcastFn is nil, cannot broadcast event type %s.", m.ID, ev.Type)
	}
}

// fireEventToPlayer sends an event to a specific connected player via
// the BroadcastToPlayerFn callback. AI seats are skipped.
// Assumes lock is held by caller.
func (m *CamelMatch) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if m.BroadcastToPlayerFn == nil {
		return
	}
	target := m.getPlayerByID(playerID)
	if target != nil && target.Connected && !target.IsAI {
		m.BroadcastToPlayerFn(playerID, ev)
	}
}

// logAction sends match action details to the history consumer via the
// Redis queue. Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (m *CamelMatch) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	m.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.MatchActionRecord{
		MatchID:       m.ID,
		ActionIndex:   m.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	// Asynchronously publish to Redis.
	go func(rec cache.MatchActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishMatchAction(ctx, rec); err != nil {
			log.Printf("Error: Match %s: Failed publishing action %d ('%s') to Redis: %v", m.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

// stopTimers halts every pending timer.
// Assumes lock is held by caller.
func (m *CamelMatch) stopTimers() {
	if m.turnTimer != nil {
		m.turnTimer.Stop()
		m.turnTimer = nil
	}
	if m.delayTimer != nil {
		m.delayTimer.Stop()
		m.delayTimer = nil
	}
	if m.aiTimer != nil {
		m.aiTimer.Stop()
		m.aiTimer = nil
	}
}

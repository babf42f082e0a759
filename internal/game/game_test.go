// internal/game/game_test.go
package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	engine "github.com/jmansell/camelup/engine"
	"github.com/jmansell/camelup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster captures match events for testing assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

// newMockBroadcaster creates an instance of the mock broadcaster.
func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = []GameEvent{}
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

func (mb *mockBroadcaster) findEventByType(eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == eventType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) findPlayerEventByType(playerID uuid.UUID, eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

// setupTestMatch initializes a CamelMatch with mock players and
// broadcasters. Pacing and timers are off so every action resolves
// synchronously. aiSeats marks which seats (by index) are AI driven.
func setupTestMatch(t *testing.T, numPlayers int, aiSeats map[int]string) (*CamelMatch, []*models.Player, *mockBroadcaster) {
	t.Helper()

	m := NewCamelMatch()
	mb := newMockBroadcaster()
	m.BroadcastFn = mb.broadcastFn
	m.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	m.PacingEnabled = false
	m.TurnDuration = 0
	m.AIThinkDelay = 0

	players := make([]*models.Player, numPlayers)
	for i := 0; i < numPlayers; i++ {
		difficulty, isAI := aiSeats[i]
		player := &models.Player{
			ID:         uuid.New(),
			Connected:  !isAI,
			User:       models.User{ID: uuid.New(), Username: "Player" + string(rune('A'+i))},
			IsAI:       isAI,
			Difficulty: difficulty,
		}
		players[i] = player
		m.AddPlayer(player)
	}

	return m, players, mb
}

// currentTurnPlayer returns the player whose turn it currently is.
func currentTurnPlayer(m *CamelMatch) *models.Player {
	playerID := m.EngineToPlayer[m.Engine.CurrentPlayer]
	return m.getPlayerByID(playerID)
}

// otherPlayer returns the first player that is not current.
func otherPlayer(m *CamelMatch, current *models.Player) *models.Player {
	for _, p := range m.Players {
		if p.ID != current.ID {
			return p
		}
	}
	return nil
}

// TestStartRequiresTwoPlayers verifies a match will not start short-handed.
func TestStartRequiresTwoPlayers(t *testing.T) {
	m, _, _ := setupTestMatch(t, 1, nil)
	m.Start()
	assert.False(t, m.Started, "Match should not start with one player")
}

// TestStartBroadcastsOpeningState verifies the start event, turn
// announcement, and per-player sync snapshots.
func TestStartBroadcastsOpeningState(t *testing.T) {
	m, players, mb := setupTestMatch(t, 2, nil)
	m.Start()
	require.True(t, m.Started, "Match should be marked as started")

	require.NotNil(t, mb.findEventByType(EventMatchStart), "Expected match start event")
	turnEvent := mb.findEventByType(EventPlayerTurn)
	require.NotNil(t, turnEvent, "Expected player turn event")
	require.NotNil(t, turnEvent.Player)
	assert.Equal(t, currentTurnPlayer(m).ID, turnEvent.Player.ID)

	for _, p := range players {
		syncEvent := mb.findPlayerEventByType(p.ID, EventPrivateSyncState)
		require.NotNil(t, syncEvent, "Expected private sync for %s", p.User.Username)
		require.NotNil(t, syncEvent.State)
		assert.True(t, syncEvent.State.Started)
		assert.Len(t, syncEvent.State.Camels, engine.NumCamels)
		assert.Len(t, syncEvent.State.Players, 2)
	}
}

// TestRollIntentAdvancesTurn verifies the roll flow: dice event,
// movement event, and the turn passing to the other player.
func TestRollIntentAdvancesTurn(t *testing.T) {
	m, _, mb := setupTestMatch(t, 2, nil)
	m.Start()

	first := currentTurnPlayer(m)
	second := otherPlayer(m, first)
	mb.clear()

	m.HandleIntent(first.ID, models.GameIntent{IntentType: IntentRollPyramid})

	rollEvent := mb.findEventByType(EventPyramidRollResult)
	if rollEvent == nil {
		rollEvent = mb.findEventByType(EventCrazyRollResult)
	}
	require.NotNil(t, rollEvent, "Expected a roll result event")
	require.NotNil(t, rollEvent.Player)
	assert.Equal(t, first.ID, rollEvent.Player.ID)

	moveEvent := mb.findEventByType(EventMovementComplete)
	require.NotNil(t, moveEvent, "Expected movement complete event")

	assert.Equal(t, uint8(1), m.Engine.RolledLen, "One die should be drawn")
	assert.Equal(t, second.ID, currentTurnPlayer(m).ID, "Turn should advance to the other player")
	assert.False(t, m.Engine.ActionTaken(), "New turn should have no action taken")
}

// TestOutOfTurnIntentRejected verifies a non-current player gets a
// private failure and the board is untouched.
func TestOutOfTurnIntentRejected(t *testing.T) {
	m, _, mb := setupTestMatch(t, 2, nil)
	m.Start()

	first := currentTurnPlayer(m)
	second := otherPlayer(m, first)
	mb.clear()

	m.HandleIntent(second.ID, models.GameIntent{IntentType: IntentRollPyramid})

	failEvent := mb.findPlayerEventByType(second.ID, EventPrivateIntentFail)
	require.NotNil(t, failEvent, "Expected private intent failure")
	assert.Equal(t, uint8(0), m.Engine.RolledLen, "No die should be drawn")
	assert.Equal(t, first.ID, currentTurnPlayer(m).ID, "Turn should not advance")
}

// TestLegBetIntent verifies claiming a wager tile broadcasts color and
// value and consumes the tile.
func TestLegBetIntent(t *testing.T) {
	m, _, mb := setupTestMatch(t, 2, nil)
	m.Start()

	first := currentTurnPlayer(m)
	mb.clear()

	m.HandleIntent(first.ID, models.GameIntent{
		IntentType: IntentTakeLegBet,
		Payload:    map[string]interface{}{"color": "blue"},
	})

	betEvent := mb.findEventByType(EventLegBetTaken)
	require.NotNil(t, betEvent, "Expected leg bet event")
	assert.Equal(t, "blue", betEvent.Payload["color"])
	assert.Equal(t, uint8(5), betEvent.Payload["value"], "First tile pays 5")
	assert.Equal(t, uint8(2), m.Engine.LegTilesLeft[engine.ColorBlue], "Two tiles should remain")
}

// TestRaceBetPrivacy verifies the bet color reaches only the betting
// player: the public event and other players' sync snapshots carry the
// kind and count alone.
func TestRaceBetPrivacy(t *testing.T) {
	m, _, mb := setupTestMatch(t, 2, nil)
	m.Start()

	first := currentTurnPlayer(m)
	second := otherPlayer(m, first)
	mb.clear()

	m.HandleIntent(first.ID, models.GameIntent{
		IntentType: IntentPlaceRaceBet,
		Payload:    map[string]interface{}{"color": "green", "winner": true},
	})

	publicEvent := mb.findEventByType(EventRaceBetPlaced)
	require.NotNil(t, publicEvent, "Expected public race bet event")
	assert.Equal(t, "winner", publicEvent.Payload["kind"])
	assert.NotContains(t, publicEvent.Payload, "color", "Public event must not reveal the color")

	privateEvent := mb.findPlayerEventByType(first.ID, EventPrivateRaceBet)
	require.NotNil(t, privateEvent, "Expected private race bet event")
	assert.Equal(t, "green", privateEvent.Payload["color"])

	ownState := m.BuildSyncState(first.ID)
	otherState := m.BuildSyncState(second.ID)
	assert.Equal(t, 1, ownState.WinnerBetCount)
	for _, sp := range ownState.Players {
		if sp.ID == first.ID {
			require.Len(t, sp.RaceBets, 1)
			assert.Equal(t, "green", sp.RaceBets[0].Color)
		}
	}
	for _, sp := range otherState.Players {
		if sp.ID == first.ID {
			assert.Empty(t, sp.RaceBets, "Other observers must not see bet colors")
		}
	}
}

// TestDesertTileIntent verifies placing a tile on an open space.
func TestDesertTileIntent(t *testing.T) {
	m, _, mb := setupTestMatch(t, 2, nil)
	m.Start()

	first := currentTurnPlayer(m)
	engineIdx := m.PlayerToEngine[first.ID]
	mb.clear()

	// Racing camels start on spaces 0-2 and crazy camels on 13-15, so
	// space 7 is always open after setup.
	m.HandleIntent(first.ID, models.GameIntent{
		IntentType: IntentPlaceDesertTile,
		Payload:    map[string]interface{}{"space": float64(7), "oasis": true},
	})

	tileEvent := mb.findEventByType(EventDesertTilePlaced)
	require.NotNil(t, tileEvent, "Expected desert tile event")
	assert.Equal(t, uint8(7), tileEvent.Payload["space"])
	assert.Equal(t, "oasis", tileEvent.Payload["side"])

	tile := m.Engine.Desert[7]
	assert.Equal(t, int8(engineIdx), tile.Owner)
	assert.True(t, tile.Oasis)
	assert.False(t, m.Engine.Players[engineIdx].HasDesertTile, "Tile should leave the player's hand")
}

// TestLegEndScoresAndResets drives five rolls and verifies the leg is
// scored and the board reset for the next leg.
func TestLegEndScoresAndResets(t *testing.T) {
	m, _, mb := setupTestMatch(t, 2, nil)
	m.Start()

	// Spread the racing camels out so no roll chain can reach the
	// finish during the first leg.
	for c := uint8(0); c < engine.NumColors; c++ {
		m.Engine.Camels[c] = engine.CamelPos{Space: c, StackPos: 0}
	}

	for i := 0; i < int(engine.LegDiceCount); i++ {
		current := currentTurnPlayer(m)
		m.HandleIntent(current.ID, models.GameIntent{IntentType: IntentRollPyramid})
		require.False(t, m.GameOver, "Match should not end during the first leg")
	}

	legEndEvent := mb.findEventByType(EventLegEnd)
	require.NotNil(t, legEndEvent, "Expected leg end event")
	assert.Contains(t, legEndEvent.Payload, "payouts")

	assert.Equal(t, uint16(2), m.Engine.LegNumber, "Second leg should have begun")
	assert.Equal(t, uint8(0), m.Engine.RolledLen, "Pyramid should be refilled")
}

// TestAIMatchRunsToCompletion verifies a match of AI seats plays itself
// out synchronously and reports a winner.
func TestAIMatchRunsToCompletion(t *testing.T) {
	m, players, mb := setupTestMatch(t, 3, map[int]string{0: "random", 1: "basic", 2: "smart"})

	var endLobby uuid.UUID
	var endWinner uuid.UUID
	var endCoins map[uuid.UUID]int
	m.OnMatchEnd = func(lobbyID uuid.UUID, winner uuid.UUID, coins map[uuid.UUID]int) {
		endLobby = lobbyID
		endWinner = winner
		endCoins = coins
	}

	m.Start()

	require.True(t, m.GameOver, "AI match should run to completion")
	assert.True(t, m.Engine.FinishCrossed(), "A camel should have crossed the finish")

	endEvent := mb.findEventByType(EventMatchEnd)
	require.NotNil(t, endEvent, "Expected match end event")
	assert.Contains(t, endEvent.Payload, "winner")
	assert.Contains(t, endEvent.Payload, "results")

	assert.Equal(t, m.LobbyID, endLobby)
	assert.NotEqual(t, uuid.Nil, endWinner, "Winner should be reported")
	require.Len(t, endCoins, len(players))
	for _, p := range players {
		assert.GreaterOrEqual(t, endCoins[p.ID], 0, "Money never goes negative")
	}
}

// TestTurnTimeoutRollsForIdlePlayer verifies the idle timer rolls the
// pyramid on the current player's behalf.
func TestTurnTimeoutRollsForIdlePlayer(t *testing.T) {
	m, _, _ := setupTestMatch(t, 2, nil)
	m.TurnDuration = 50 * time.Millisecond
	m.Start()

	assert.Eventually(t, func() bool {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		return m.Engine.RolledLen >= 1
	}, 2*time.Second, 10*time.Millisecond, "Timer should roll for the idle player")
}

// TestReconnectReceivesSyncState verifies a returning player gets a
// fresh snapshot.
func TestReconnectReceivesSyncState(t *testing.T) {
	m, players, mb := setupTestMatch(t, 2, nil)
	m.Start()

	target := players[0]
	m.Mu.Lock()
	m.HandleDisconnect(target.ID)
	m.Mu.Unlock()
	assert.False(t, m.getPlayerByID(target.ID).Connected)

	mb.clear()
	m.Mu.Lock()
	m.HandleReconnect(target.ID, nil)
	m.Mu.Unlock()

	assert.True(t, m.getPlayerByID(target.ID).Connected)
	syncEvent := mb.findPlayerEventByType(target.ID, EventPrivateSyncState)
	require.NotNil(t, syncEvent, "Expected sync snapshot on reconnect")
	require.NotNil(t, syncEvent.State)
	assert.Equal(t, m.ID, syncEvent.State.MatchID)
}

// TestApplySyncStateDropsStale verifies out-of-order snapshots are
// ignored.
func TestApplySyncStateDropsStale(t *testing.T) {
	m, players, _ := setupTestMatch(t, 2, nil)
	m.Start()

	older := m.BuildSyncState(players[0].ID)
	m.HandleIntent(currentTurnPlayer(m).ID, models.GameIntent{IntentType: IntentRollPyramid})
	newer := m.BuildSyncState(players[0].ID)

	held := older
	assert.True(t, ApplySyncState(&held, newer), "Newer snapshot should apply")
	assert.Equal(t, newer.Version, held.Version)
	assert.False(t, ApplySyncState(&held, older), "Stale snapshot should be dropped")
	assert.Equal(t, newer.Version, held.Version)
}

// TestSyncVersionMonotonic verifies snapshot versions only grow.
func TestSyncVersionMonotonic(t *testing.T) {
	m, players, mb := setupTestMatch(t, 2, nil)
	m.Start()

	first := mb.findPlayerEventByType(players[0].ID, EventPrivateSyncState)
	require.NotNil(t, first)
	v1 := first.State.Version

	m.HandleIntent(currentTurnPlayer(m).ID, models.GameIntent{IntentType: IntentRollPyramid})

	second := mb.findPlayerEventByType(players[0].ID, EventPrivateSyncState)
	require.NotNil(t, second)
	assert.Greater(t, second.State.Version, v1, "Version should increase with each broadcast")
}

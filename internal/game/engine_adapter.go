// internal/game/engine_adapter.go
package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	engine "github.com/jmansell/camelup/engine"
	"github.com/jmansell/camelup/internal/database"
	"github.com/jmansell/camelup/internal/models"
)

// Intent type strings accepted from clients.
const (
	IntentRollPyramid     = "intent_roll_pyramid"
	IntentTakeLegBet      = "intent_take_leg_bet"
	IntentPlaceRaceBet    = "intent_place_race_bet"
	IntentPlaceDesertTile = "intent_place_desert_tile"
)

// Presentation pacing per action kind. Dice rolls get the longest pause
// so clients can animate the pyramid and camel movement before the next
// turn begins.
const (
	rollDelay = 1500 * time.Millisecond
	betDelay  = 800 * time.Millisecond
	tileDelay = 1000 * time.Millisecond
)

// intentToAction translates a client intent into an engine action index.
func intentToAction(intent models.GameIntent) (uint16, error) {
	switch intent.IntentType {
	case IntentRollPyramid:
		return engine.ActionRollPyramid, nil

	case IntentTakeLegBet:
		color, err := payloadRacingColor(intent.Payload)
		if err != nil {
			return 0, err
		}
		return engine.EncodeTakeLegBet(color), nil

	case IntentPlaceRaceBet:
		color, err := payloadRacingColor(intent.Payload)
		if err != nil {
			return 0, err
		}
		winner, _ := intent.Payload["winner"].(bool)
		return engine.EncodeRaceBet(color, winner), nil

	case IntentPlaceDesertTile:
		space, ok := intent.Payload["space"].(float64)
		if !ok || space < 1 || space >= float64(engine.TrackLength) {
			return 0, fmt.Errorf("invalid space in payload")
		}
		oasis, _ := intent.Payload["oasis"].(bool)
		return engine.EncodeDesertTile(uint8(space), oasis), nil

	default:
		return 0, fmt.Errorf("unknown intent type %q", intent.IntentType)
	}
}

// payloadRacingColor pulls a racing camel color out of an intent payload.
// Crazy camels are not valid betting targets.
func payloadRacingColor(payload map[string]interface{}) (uint8, error) {
	name, ok := payload["color"].(string)
	if !ok {
		return 0, fmt.Errorf("missing color in payload")
	}
	color, ok := engine.ColorFromName(name)
	if !ok || color >= engine.NumColors {
		return 0, fmt.Errorf("invalid color %q", name)
	}
	return color, nil
}

// actionDelay returns the pacing pause that follows an action.
func actionDelay(actionIdx uint16) time.Duration {
	if actionIdx == engine.ActionRollPyramid {
		return rollDelay
	}
	if _, _, ok := engine.ActionIsDesertTile(actionIdx); ok {
		return tileDelay
	}
	return betDelay
}

// HandleIntent processes a decoded client intent. Illegal or
// out-of-turn intents are rejected with a private failure event; the
// turn state is untouched so the player may retry.
func (m *CamelMatch) HandleIntent(playerID uuid.UUID, intent models.GameIntent) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if !m.Started || m.GameOver {
		m.rejectIntent(playerID, intent.IntentType, "match not in progress")
		return
	}

	idx, ok := m.PlayerToEngine[playerID]
	if !ok || idx != m.Engine.CurrentPlayer {
		m.rejectIntent(playerID, intent.IntentType, "not your turn")
		return
	}
	if m.Engine.ActionTaken() {
		m.rejectIntent(playerID, intent.IntentType, "action already taken this turn")
		return
	}

	actionIdx, err := intentToAction(intent)
	if err != nil {
		m.rejectIntent(playerID, intent.IntentType, err.Error())
		return
	}
	if !m.Engine.IsLegalAction(actionIdx) {
		m.rejectIntent(playerID, intent.IntentType, "action is not legal right now")
		return
	}

	m.lastSeen[playerID] = time.Now()
	m.applyAction(actionIdx, playerID)
}

// rejectIntent tells a player their intent failed.
// Assumes lock is held by caller.
func (m *CamelMatch) rejectIntent(playerID uuid.UUID, intentType, reason string) {
	log.Printf("Match %s: Rejected intent '%s' from %s: %s", m.ID, intentType, playerID, reason)
	m.fireEventToPlayer(playerID, GameEvent{
		Type: EventPrivateIntentFail,
		Payload: map[string]interface{}{
			"intent": intentType,
			"reason": reason,
		},
	})
}

// applyAction commits a validated action to the engine, broadcasts the
// resulting events, and schedules turn resolution.
// Assumes lock is held by caller.
func (m *CamelMatch) applyAction(actionIdx uint16, actorID uuid.UUID) {
	if err := m.Engine.ApplyAction(actionIdx); err != nil {
		// Legality was checked up front; reaching here means the check
		// and the engine disagree.
		log.Printf("Error: Match %s: Engine rejected action %d from %s: %v", m.ID, actionIdx, actorID, err)
		m.rejectIntent(actorID, "action", err.Error())
		return
	}

	m.broadcastAction(actionIdx, actorID)
	m.broadcastSyncStateToAll()

	delay := time.Duration(0)
	if m.PacingEnabled {
		delay = actionDelay(actionIdx)
	}
	if delay <= 0 {
		m.resolveTurn()
		return
	}

	turnID := m.TurnID
	m.delayTimer = time.AfterFunc(delay, func() {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		if m.GameOver || m.TurnID != turnID {
			return
		}
		m.resolveTurn()
	})
}

// broadcastAction emits the public (and, for race bets, private) events
// describing a committed action.
// Assumes lock is held by caller.
func (m *CamelMatch) broadcastAction(actionIdx uint16, actorID uuid.UUID) {
	actor := &EventPlayer{ID: actorID}

	if actionIdx == engine.ActionRollPyramid {
		roll := m.Engine.LastRoll
		evType := EventPyramidRollResult
		if roll.Crazy {
			evType = EventCrazyRollResult
		}
		m.fireEvent(GameEvent{
			Type:   evType,
			Player: actor,
			Payload: map[string]interface{}{
				"camel": engine.ColorName(roll.Camel),
				"value": roll.Value,
			},
		})
		pos := m.Engine.Camels[roll.Camel]
		m.fireEvent(GameEvent{
			Type:   EventMovementComplete,
			Player: actor,
			Payload: map[string]interface{}{
				"camel":         engine.ColorName(roll.Camel),
				"space":         pos.Space,
				"stackPos":      pos.StackPos,
				"crossedFinish": m.Engine.FinishCrossed(),
			},
		})
		m.logAction(actorID, "action_roll", map[string]interface{}{
			"camel": engine.ColorName(roll.Camel),
			"value": roll.Value,
			"crazy": roll.Crazy,
		})
		return
	}

	if color, ok := engine.ActionIsTakeLegBet(actionIdx); ok {
		player := m.PlayerToEngine[actorID]
		tiles := m.Engine.Players[player]
		taken := tiles.LegTiles[tiles.LegTileLen-1]
		m.fireEvent(GameEvent{
			Type:   EventLegBetTaken,
			Player: actor,
			Payload: map[string]interface{}{
				"color": engine.ColorName(color),
				"value": taken.Value,
			},
		})
		m.logAction(actorID, "action_leg_bet", map[string]interface{}{
			"color": engine.ColorName(color),
			"value": taken.Value,
		})
		return
	}

	if color, winner, ok := engine.ActionIsRaceBet(actionIdx); ok {
		kind := "loser"
		if winner {
			kind = "winner"
		}
		// Color is hidden from the table until the race is scored.
		m.fireEvent(GameEvent{
			Type:    EventRaceBetPlaced,
			Player:  actor,
			Payload: map[string]interface{}{"kind": kind},
		})
		m.fireEventToPlayer(actorID, GameEvent{
			Type: EventPrivateRaceBet,
			Payload: map[string]interface{}{
				"kind":  kind,
				"color": engine.ColorName(color),
			},
		})
		m.logAction(actorID, "action_race_bet", map[string]interface{}{
			"kind":  kind,
			"color": engine.ColorName(color),
		})
		return
	}

	if space, oasis, ok := engine.ActionIsDesertTile(actionIdx); ok {
		side := "mirage"
		if oasis {
			side = "oasis"
		}
		m.fireEvent(GameEvent{
			Type:   EventDesertTilePlaced,
			Player: actor,
			Payload: map[string]interface{}{
				"space": space,
				"side":  side,
			},
		})
		m.logAction(actorID, "action_desert_tile", map[string]interface{}{
			"space": space,
			"side":  side,
		})
	}
}

// resolveTurn advances play after an action's pacing pause: finishes
// the match if the finish line was crossed, otherwise scores the leg if
// it ended and hands the turn to the next player.
// Assumes lock is held by caller.
func (m *CamelMatch) resolveTurn() {
	if m.Engine.FinishCrossed() {
		m.EndMatch()
		return
	}

	m.Engine.AdvanceTurn()
	m.TurnID++

	if m.Engine.LegEnded() {
		m.settleLeg()
	}

	m.scheduleNextTurnTimer()
	m.broadcastPlayerTurn()
	m.maybeScheduleAI()
}

// settleLeg scores the finished leg, broadcasts the deltas, and resets
// the board for the next leg.
// Assumes lock is held by caller.
func (m *CamelMatch) settleLeg() {
	deltas := m.Engine.ScoreLeg()
	legNumber := m.Engine.LegNumber

	payouts := make(map[string]interface{}, len(m.Players))
	for i := range m.Players {
		payouts[m.EngineToPlayer[i].String()] = deltas[i]
	}
	m.fireEvent(GameEvent{
		Type: EventLegEnd,
		Payload: map[string]interface{}{
			"leg":     legNumber,
			"payouts": payouts,
		},
	})
	m.logAction(uuid.Nil, "leg_end", map[string]interface{}{"leg": legNumber})

	m.Engine.ResetLeg()
	m.broadcastSyncStateToAll()
}

// broadcastPlayerTurn announces whose turn it is.
// Assumes lock is held by caller.
func (m *CamelMatch) broadcastPlayerTurn() {
	currentID := m.EngineToPlayer[m.Engine.CurrentPlayer]
	m.fireEvent(GameEvent{
		Type:   EventPlayerTurn,
		Player: &EventPlayer{ID: currentID},
		Payload: map[string]interface{}{
			"turnId": m.TurnID,
		},
	})
}

// scheduleNextTurnTimer arms the idle-turn timer for the current
// player. A stale fire (turn already resolved) is detected via TurnID.
// Assumes lock is held by caller.
func (m *CamelMatch) scheduleNextTurnTimer() {
	if m.turnTimer != nil {
		m.turnTimer.Stop()
	}
	if m.TurnDuration <= 0 {
		return
	}

	turnID := m.TurnID
	m.turnTimer = time.AfterFunc(m.TurnDuration, func() {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		if m.GameOver || m.TurnID != turnID || m.Engine.ActionTaken() {
			return
		}
		m.handleTurnTimeout()
	})
}

// handleTurnTimeout rolls the pyramid for a player who let their turn
// expire. Rolling is always legal on a fresh turn.
// Assumes lock is held by caller.
func (m *CamelMatch) handleTurnTimeout() {
	currentID := m.EngineToPlayer[m.Engine.CurrentPlayer]
	log.Printf("Match %s: Turn timeout for player %s, rolling the pyramid.", m.ID, currentID)
	m.logAction(currentID, "turn_timeout", nil)
	m.applyAction(engine.ActionRollPyramid, currentID)
}

// maybeScheduleAI arms the think timer when the current seat is an AI.
// With no think delay the AI acts synchronously, which lets headless
// matches run to completion without timers.
// Assumes lock is held by caller.
func (m *CamelMatch) maybeScheduleAI() {
	currentID := m.EngineToPlayer[m.Engine.CurrentPlayer]
	policy, ok := m.policies[currentID]
	if !ok {
		return
	}

	if m.AIThinkDelay <= 0 {
		m.applyAction(policy.ChooseAction(&m.Engine), currentID)
		return
	}

	turnID := m.TurnID
	m.aiTimer = time.AfterFunc(m.AIThinkDelay, func() {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		if m.GameOver || m.TurnID != turnID || m.Engine.ActionTaken() {
			return
		}
		m.applyAction(policy.ChooseAction(&m.Engine), currentID)
	})
}

// EndMatch scores the race, broadcasts results, persists the final
// state, and fires the end-of-match callback.
// Assumes lock is held by caller.
func (m *CamelMatch) EndMatch() {
	if m.GameOver {
		return
	}
	m.GameOver = true
	m.stopTimers()

	legDeltas, raceDeltas := m.Engine.FinishGame()
	winnerIdx := m.Engine.GameWinner()
	winnerID := m.EngineToPlayer[winnerIdx]

	coins := make(map[uuid.UUID]int, len(m.Players))
	results := make([]map[string]interface{}, 0, len(m.Players))
	for i, p := range m.Players {
		money := int(m.Engine.Players[i].Money)
		coins[p.ID] = money
		results = append(results, map[string]interface{}{
			"playerId":  p.ID.String(),
			"username":  p.User.Username,
			"money":     money,
			"legDelta":  legDeltas[i],
			"raceDelta": raceDeltas[i],
		})
	}

	m.fireEvent(GameEvent{
		Type:   EventMatchEnd,
		Player: &EventPlayer{ID: winnerID},
		Payload: map[string]interface{}{
			"winner":  winnerID.String(),
			"results": results,
		},
	})
	m.broadcastSyncStateToAll()
	m.logAction(uuid.Nil, "match_end", map[string]interface{}{"winner": winnerID.String()})

	if database.DB != nil {
		snapshot := map[string]interface{}{
			"matchId": m.ID.String(),
			"winner":  winnerID.String(),
			"legs":    m.Engine.LegNumber,
			"results": results,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			database.StoreFinalMatchState(ctx, m.ID, snapshot)
		}()
	}

	if m.OnMatchEnd != nil {
		m.OnMatchEnd(m.LobbyID, winnerID, coins)
	}
}

// persistInitialMatchState records the opening snapshot so a finished
// match row always has its starting conditions.
// Assumes lock is held by caller.
func (m *CamelMatch) persistInitialMatchState(seed uint64) {
	if database.DB == nil {
		return
	}

	camels := make(map[string]interface{}, engine.NumCamels)
	for c := uint8(0); c < engine.NumCamels; c++ {
		pos := m.Engine.Camels[c]
		camels[engine.ColorName(c)] = map[string]interface{}{
			"space":    pos.Space,
			"stackPos": pos.StackPos,
		}
	}
	players := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		players = append(players, p.ID.String())
	}
	snapshot := map[string]interface{}{
		"matchId": m.ID.String(),
		"seed":    seed,
		"rules": map[string]interface{}{
			"numPlayers":    m.Rules.NumPlayers,
			"startingMoney": m.Rules.StartingMoney,
		},
		"players": players,
		"camels":  camels,
	}
	go database.UpsertInitialMatchState(m.ID, snapshot)
}

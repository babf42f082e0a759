// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	engine "github.com/jmansell/camelup/engine"
)

// SyncState is the full board snapshot sent to one observer. Race bet
// colors belong to the betting player alone until the race is scored,
// so every observer gets their own copy with other players' bets
// reduced to counts.
type SyncState struct {
	MatchID  uuid.UUID `json:"matchId"`
	Version  uint64    `json:"version"` // monotonic; clients drop stale snapshots
	Started  bool      `json:"started"`
	GameOver bool      `json:"gameOver"`

	LegNumber       uint16    `json:"legNumber"`
	TurnID          int       `json:"turnId"`
	CurrentPlayerID uuid.UUID `json:"currentPlayerId"`

	Camels      []SyncCamel      `json:"camels"`
	DesertTiles []SyncDesertTile `json:"desertTiles"`

	DiceRemaining int        `json:"diceRemaining"`
	RolledDice    []SyncRoll `json:"rolledDice"`

	// Top wager tile value still available per racing color (0 = gone).
	LegTileValues map[string]uint8 `json:"legTileValues"`

	// Counts only; colors stay hidden until scoring.
	WinnerBetCount int `json:"winnerBetCount"`
	LoserBetCount  int `json:"loserBetCount"`

	Players []SyncPlayer `json:"players"`
}

// SyncCamel is one camel token's public position.
type SyncCamel struct {
	Color    string `json:"color"`
	Crazy    bool   `json:"crazy"`
	Space    uint8  `json:"space"`
	StackPos uint8  `json:"stackPos"`
}

// SyncDesertTile is one placed desert tile.
type SyncDesertTile struct {
	Space   uint8     `json:"space"`
	Oasis   bool      `json:"oasis"`
	OwnerID uuid.UUID `json:"ownerId"`
}

// SyncRoll is one die already drawn from the pyramid this leg.
type SyncRoll struct {
	Color string `json:"color"`
	Value uint8  `json:"value"`
	Crazy bool   `json:"crazy"`
}

// SyncPlayer is one seat's visible state. RaceBets is populated only in
// the snapshot sent to that player.
type SyncPlayer struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Connected     bool      `json:"connected"`
	IsAI          bool      `json:"isAi"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`

	Money         int16 `json:"money"`
	PyramidTokens uint8 `json:"pyramidTokens"`
	HasDesertTile bool  `json:"hasDesertTile"`
	RaceCardsLeft int   `json:"raceCardsLeft"`

	LegTiles []SyncLegTile `json:"legTiles"`
	RaceBets []SyncRaceBet `json:"raceBets,omitempty"` // observer's own bets only
}

// SyncLegTile is one claimed wager tile. Claimed tiles are public.
type SyncLegTile struct {
	Color string `json:"color"`
	Value uint8  `json:"value"`
}

// SyncRaceBet is one of the observer's own race bets.
type SyncRaceBet struct {
	Kind  string `json:"kind"` // "winner" or "loser"
	Color string `json:"color"`
}

// BuildSyncState assembles the snapshot for one observer.
// Assumes lock is held by caller.
func (m *CamelMatch) BuildSyncState(forPlayer uuid.UUID) SyncState {
	g := &m.Engine

	state := SyncState{
		MatchID:        m.ID,
		Version:        m.syncVersion,
		Started:        m.Started,
		GameOver:       m.GameOver,
		LegNumber:      g.LegNumber,
		TurnID:         m.TurnID,
		DiceRemaining:  int(g.RemainingDiceCount()),
		LegTileValues:  make(map[string]uint8, engine.NumColors),
		WinnerBetCount: int(g.WinnerBetLen),
		LoserBetCount:  int(g.LoserBetLen),
	}
	if m.Started && !m.GameOver {
		state.CurrentPlayerID = m.EngineToPlayer[g.CurrentPlayer]
	}

	for c := uint8(0); c < engine.NumCamels; c++ {
		pos := g.Camels[c]
		state.Camels = append(state.Camels, SyncCamel{
			Color:    engine.ColorName(c),
			Crazy:    engine.IsCrazyCamel(c),
			Space:    pos.Space,
			StackPos: pos.StackPos,
		})
	}

	for space := uint8(0); space < engine.TrackLength; space++ {
		tile := g.Desert[space]
		if tile.Owner < 0 {
			continue
		}
		state.DesertTiles = append(state.DesertTiles, SyncDesertTile{
			Space:   space,
			Oasis:   tile.Oasis,
			OwnerID: m.EngineToPlayer[tile.Owner],
		})
	}

	for i := uint8(0); i < g.RolledLen; i++ {
		roll := g.Rolled[i]
		state.RolledDice = append(state.RolledDice, SyncRoll{
			Color: engine.ColorName(roll.Camel),
			Value: roll.Value,
			Crazy: roll.Crazy,
		})
	}

	for c := uint8(0); c < engine.NumColors; c++ {
		tile, ok := g.TopLegTile(c)
		if ok {
			state.LegTileValues[engine.ColorName(c)] = tile.Value
		} else {
			state.LegTileValues[engine.ColorName(c)] = 0
		}
	}

	for i, p := range m.Players {
		ps := g.Players[i]
		sp := SyncPlayer{
			ID:            p.ID,
			Username:      p.User.Username,
			Connected:     p.Connected,
			IsAI:          p.IsAI,
			IsCurrentTurn: m.Started && !m.GameOver && uint8(i) == g.CurrentPlayer,
			Money:         ps.Money,
			PyramidTokens: ps.PyramidTokens,
			HasDesertTile: ps.HasDesertTile,
			RaceCardsLeft: raceCardCount(ps.RaceCards),
		}
		for t := uint8(0); t < ps.LegTileLen; t++ {
			sp.LegTiles = append(sp.LegTiles, SyncLegTile{
				Color: engine.ColorName(ps.LegTiles[t].Color),
				Value: ps.LegTiles[t].Value,
			})
		}
		if p.ID == forPlayer {
			sp.RaceBets = m.ownRaceBets(uint8(i))
		}
		state.Players = append(state.Players, sp)
	}

	return state
}

// ownRaceBets collects the race bets placed by one engine seat.
// Assumes lock is held by caller.
func (m *CamelMatch) ownRaceBets(player uint8) []SyncRaceBet {
	var bets []SyncRaceBet
	for i := uint8(0); i < m.Engine.WinnerBetLen; i++ {
		bet := m.Engine.WinnerBets[i]
		if bet.Player == player {
			bets = append(bets, SyncRaceBet{Kind: "winner", Color: engine.ColorName(bet.Color)})
		}
	}
	for i := uint8(0); i < m.Engine.LoserBetLen; i++ {
		bet := m.Engine.LoserBets[i]
		if bet.Player == player {
			bets = append(bets, SyncRaceBet{Kind: "loser", Color: engine.ColorName(bet.Color)})
		}
	}
	return bets
}

// ApplySyncState copies src over dst when src is newer. Snapshots can
// arrive out of order on reconnect; stale ones are dropped.
func ApplySyncState(dst *SyncState, src SyncState) bool {
	if dst.MatchID == src.MatchID && src.Version <= dst.Version {
		return false
	}
	*dst = src
	return true
}

// raceCardCount counts set bits in a race card bitmask.
func raceCardCount(mask uint8) int {
	count := 0
	for mask != 0 {
		count += int(mask & 1)
		mask >>= 1
	}
	return count
}

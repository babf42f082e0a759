// Package engine implements the Camel Up race rules.
//
// This package provides a flat, allocation-free game state suitable for
// both real-time match play (via the service adapter) and AI rollout
// simulation.
package engine

import "fmt"

const (
	MaxPlayers   = 8
	TrackLength  = 16 // track spaces 0..15
	FinishLine   = 16 // a raw forward target >= FinishLine crosses the finish
	NumDice      = 6  // one regular die per racing color + one shared crazy die
	LegDiceCount = 5  // dice drawn before a leg ends; one die stays undrawn

	crazyDieBit  = 5
	fullDiceMask = (1 << NumDice) - 1
)

// maxLegTiles is the per-player bound: 3 tiles per color exist in total.
const maxLegTiles = 3 * NumColors

// maxRaceBets bounds each bet list: one card per color per player.
const maxRaceBets = NumColors * MaxPlayers

// PlayerState holds one player's money and betting resources.
type PlayerState struct {
	Money         int16
	RaceCards     uint8 // bitmask over racing colors still in hand
	HasDesertTile bool  // tile in hand, available to place
	PyramidTokens uint8 // +1 coin tokens collected for regular-die rolls
	LegTiles      [maxLegTiles]LegBetTile
	LegTileLen    uint8
}

// GameState holds the complete, self-contained state of a Camel Up match.
// It is a flat value type (no pointers, no slices) so AI rollouts can
// copy it freely.
type GameState struct {
	Camels       [NumCamels]CamelPos
	Desert       [TrackLength]DesertTile
	LegTilesLeft [NumColors]uint8 // remaining wager tiles per color (3..0)

	WinnerBets   [maxRaceBets]RaceBet
	WinnerBetLen uint8
	LoserBets    [maxRaceBets]RaceBet
	LoserBetLen  uint8

	Players [MaxPlayers]PlayerState

	DiceLeft  uint8 // bitmask: bits 0-4 regular dice by color, bit 5 crazy die
	Rolled    [NumDice]RollResult
	RolledLen uint8

	CurrentPlayer uint8
	LegNumber     uint16
	Flags         uint16
	LastRoll      RollResult // most recent pyramid draw, for event reporting
	RNG           uint64
	Rules         MatchRules
}

// ---------------------------------------------------------------------------
// Flags bitfield
// ---------------------------------------------------------------------------

const (
	FlagGameStarted    uint16 = 1 << 0
	FlagGameOver       uint16 = 1 << 1
	FlagLegStarted     uint16 = 1 << 2 // set by the first action of a leg
	FlagActionTaken    uint16 = 1 << 3 // current player has acted this turn
	FlagFinishCrossed  uint16 = 1 << 4 // a racing camel reached the finish
)

func (g *GameState) IsGameOver() bool     { return g.Flags&FlagGameOver != 0 }
func (g *GameState) IsTerminal() bool     { return g.Flags&FlagGameOver != 0 }
func (g *GameState) ActionTaken() bool    { return g.Flags&FlagActionTaken != 0 }
func (g *GameState) LegStarted() bool     { return g.Flags&FlagLegStarted != 0 }
func (g *GameState) FinishCrossed() bool  { return g.Flags&FlagFinishCrossed != 0 }

// ---------------------------------------------------------------------------
// xorshift64 RNG (inline, no interface)
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewGame and Setup
// ---------------------------------------------------------------------------

// NewGame initializes a new GameState with the given seed and rules.
// Camels are not placed until Setup is called.
func NewGame(seed uint64, rules MatchRules) GameState {
	var g GameState
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Rules = rules
	g.LegNumber = 1
	g.DiceLeft = fullDiceMask

	for s := 0; s < TrackLength; s++ {
		g.Desert[s].Owner = -1
	}
	for c := 0; c < NumColors; c++ {
		g.LegTilesLeft[c] = 3
	}

	money := rules.StartingMoney
	if money == 0 {
		money = 3
	}
	for p := uint8(0); p < rules.numPlayers(); p++ {
		g.Players[p].Money = money
		g.Players[p].RaceCards = (1 << NumColors) - 1
		g.Players[p].HasDesertTile = true
	}

	return g
}

// Setup rolls the starting positions for every camel token.
//
// Racing camels are placed in shuffled color order: each rolls 1-3 and
// starts on space roll-1 (spaces 0-2), stacking on earlier arrivals.
// Crazy camels roll 1-3 and start on space 16-roll (spaces 15-13),
// counted back from the finish line.
func (g *GameState) Setup() {
	// Fisher-Yates shuffle of the racing placement order.
	var order [NumColors]uint8
	for i := range order {
		order[i] = uint8(i)
	}
	for i := len(order) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		order[i], order[j] = order[j], order[i]
	}

	for _, color := range order {
		roll := uint8(g.randN(3)) + 1
		space := roll - 1
		g.Camels[color] = CamelPos{Space: space, StackPos: g.stackHeight(space)}
	}

	var crazyOrder [NumCrazyCamels]uint8
	for i := range crazyOrder {
		crazyOrder[i] = uint8(i)
	}
	if g.randN(2) == 1 {
		crazyOrder[0], crazyOrder[1] = crazyOrder[1], crazyOrder[0]
	}

	for _, crazy := range crazyOrder {
		roll := uint8(g.randN(3)) + 1
		space := uint8(FinishLine) - roll
		camel := CrazyCamelIndex(crazy)
		g.Camels[camel] = CamelPos{Space: space, StackPos: g.stackHeight(space)}
	}

	g.Flags |= FlagGameStarted
}

// stackHeight returns the number of camels currently on the given space.
func (g *GameState) stackHeight(space uint8) uint8 {
	var n uint8
	for c := 0; c < NumCamels; c++ {
		if g.Camels[c].Space == space {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// NumActivePlayers returns the number of active players in this match.
func (g *GameState) NumActivePlayers() uint8 { return g.Rules.numPlayers() }

// NextPlayer returns the next player after current in turn order.
func (g *GameState) NextPlayer(current uint8) uint8 {
	return (current + 1) % g.Rules.numPlayers()
}

// rankLess reports whether racing camel a is ahead of racing camel b.
// Rank compares space first, then stack position; higher in a shared
// stack means further ahead.
func (g *GameState) rankAhead(a, b uint8) bool {
	pa, pb := g.Camels[a], g.Camels[b]
	if pa.Space != pb.Space {
		return pa.Space > pb.Space
	}
	return pa.StackPos > pb.StackPos
}

// Rankings returns the racing colors ordered from first place to last.
func (g *GameState) Rankings() [NumColors]uint8 {
	var ranks [NumColors]uint8
	for i := range ranks {
		ranks[i] = uint8(i)
	}
	// Insertion sort; only five elements.
	for i := 1; i < NumColors; i++ {
		for j := i; j > 0 && g.rankAhead(ranks[j], ranks[j-1]); j-- {
			ranks[j], ranks[j-1] = ranks[j-1], ranks[j]
		}
	}
	return ranks
}

// Leader returns the racing color currently in first place.
func (g *GameState) Leader() uint8 {
	best := uint8(0)
	for c := uint8(1); c < NumColors; c++ {
		if g.rankAhead(c, best) {
			best = c
		}
	}
	return best
}

// SecondPlace returns the racing color currently in second place.
func (g *GameState) SecondPlace() uint8 {
	return g.Rankings()[1]
}

// LastPlace returns the racing color currently in last place.
func (g *GameState) LastPlace() uint8 {
	return g.Rankings()[NumColors-1]
}

// SpaceOccupied reports whether any camel token stands on the given space.
func (g *GameState) SpaceOccupied(space uint8) bool {
	for c := 0; c < NumCamels; c++ {
		if g.Camels[c].Space == space {
			return true
		}
	}
	return false
}

// CheckInvariants verifies the stack model: every space's occupants hold
// contiguous, unique stack positions starting at 0. A violation is a
// programming error, not a recoverable state.
func (g *GameState) CheckInvariants() error {
	for space := uint8(0); space < TrackLength; space++ {
		var seen [NumCamels]bool
		var count uint8
		for c := 0; c < NumCamels; c++ {
			if g.Camels[c].Space != space {
				continue
			}
			pos := g.Camels[c].StackPos
			if pos >= NumCamels {
				return fmt.Errorf("space %d: stack position %d out of range", space, pos)
			}
			if seen[pos] {
				return fmt.Errorf("space %d: duplicate stack position %d", space, pos)
			}
			seen[pos] = true
			count++
		}
		for pos := uint8(0); pos < count; pos++ {
			if !seen[pos] {
				return fmt.Errorf("space %d: stack positions not contiguous (missing %d of %d)", space, pos, count)
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of GameState for rollback support.
// No heap allocation, saving and restoring are plain struct copies.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }

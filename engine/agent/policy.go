package agent

import (
	"math/rand"

	engine "github.com/jmansell/camelup/engine"
)

// Policy chooses actions for one computer player. It carries its own
// RNG so match replays stay deterministic per seed; it never touches
// the engine's internal RNG.
type Policy struct {
	Tier Difficulty
	rng  *rand.Rand
}

// NewPolicy returns a policy of the given tier seeded for reproducible
// decisions.
func NewPolicy(tier Difficulty, seed int64) *Policy {
	return &Policy{Tier: tier, rng: rand.New(rand.NewSource(seed))}
}

// ChooseAction picks one action index from the current player's legal
// set. The result is always legal; when nothing is legal (which only
// happens between turns) it degrades to the roll action.
func (p *Policy) ChooseAction(g *engine.GameState) uint16 {
	legal := g.LegalActionsList()
	if len(legal) == 0 {
		return engine.ActionRollPyramid
	}

	switch p.Tier {
	case DifficultyBasic:
		return p.chooseBasic(g, legal)
	case DifficultySmart:
		return p.chooseSmart(g, legal)
	}
	return legal[p.rng.Intn(len(legal))]
}

func containsAction(legal []uint16, idx uint16) bool {
	for _, a := range legal {
		if a == idx {
			return true
		}
	}
	return false
}

// chooseBasic follows fixed priorities: grab the leader's 5-value wager
// tile when it shows, otherwise flip for the leader's tile, bet on the
// leader late in the leg, and fall back to rolling for the sure coin.
func (p *Policy) chooseBasic(g *engine.GameState, legal []uint16) uint16 {
	leader := g.Leader()

	leaderBet := engine.EncodeTakeLegBet(leader)
	if containsAction(legal, leaderBet) {
		if tile, ok := g.TopLegTile(leader); ok && tile.Value == 5 {
			return leaderBet
		}
		if p.rng.Float64() < 0.5 {
			return leaderBet
		}
	}

	if g.RemainingDiceCount() <= 2 {
		winnerBet := engine.EncodeRaceBet(leader, true)
		if containsAction(legal, winnerBet) && p.rng.Float64() < 0.3 {
			return winnerBet
		}
	}

	if containsAction(legal, engine.ActionRollPyramid) {
		return engine.ActionRollPyramid
	}
	return legal[p.rng.Intn(len(legal))]
}

// chooseSmart weighs wager tiles by expected value and mixes in race
// bets once enough of the leg has played out to trust the standings.
func (p *Policy) chooseSmart(g *engine.GameState, legal []uint16) uint16 {
	ranks := g.Rankings()

	// Best wager tile with EV above the floor.
	var bestBet uint16
	bestEV := float32(0.5)
	found := false
	for rank, color := range ranks {
		idx := engine.EncodeTakeLegBet(color)
		if !containsAction(legal, idx) {
			continue
		}
		tile, ok := g.TopLegTile(color)
		if !ok {
			continue
		}
		ev := legBetEV(tile.Value, rank, g.DieRemaining(color))
		if ev > bestEV {
			bestEV = ev
			bestBet = idx
			found = true
		}
	}
	if found && bestEV > 1.5 {
		return bestBet
	}

	// Race bets once 40% of the leg's dice have been drawn and the
	// standings have spread out.
	progress := float32(g.RolledLen) / float32(engine.LegDiceCount)
	if progress > 0.4 {
		leader := ranks[0]
		lead := g.Camels[leader].Space - g.Camels[ranks[1]].Space
		winnerBet := engine.EncodeRaceBet(leader, true)
		if lead >= 2 && containsAction(legal, winnerBet) && p.rng.Float64() < 0.4 {
			return winnerBet
		}

		last := ranks[engine.NumColors-1]
		behind := g.Camels[ranks[engine.NumColors-2]].Space - g.Camels[last].Space
		loserBet := engine.EncodeRaceBet(last, false)
		if behind >= 2 && containsAction(legal, loserBet) && p.rng.Float64() < 0.3 {
			return loserBet
		}
	}

	if found {
		return bestBet
	}

	// An oasis 2-3 spaces ahead of the leader catches the most traffic.
	leaderSpace := g.Camels[ranks[0]].Space
	for _, offset := range [2]uint8{2, 3} {
		space := leaderSpace + offset
		if space >= engine.TrackLength {
			continue
		}
		idx := engine.EncodeDesertTile(space, true)
		if containsAction(legal, idx) && p.rng.Float64() < 0.3 {
			return idx
		}
	}

	if containsAction(legal, engine.ActionRollPyramid) {
		return engine.ActionRollPyramid
	}
	return legal[p.rng.Intn(len(legal))]
}

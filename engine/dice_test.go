package engine

import (
	"testing"
)

// TestFreshPyramid verifies the starting pool: one die per racing color
// plus the crazy die.
func TestFreshPyramid(t *testing.T) {
	g := NewGame(1, DefaultMatchRules())
	if g.RemainingDiceCount() != 6 {
		t.Errorf("expected 6 dice, got %d", g.RemainingDiceCount())
	}
	if !g.CrazyDieRemaining() {
		t.Errorf("expected crazy die in pyramid")
	}
	for c := uint8(0); c < NumColors; c++ {
		if !g.DieRemaining(c) {
			t.Errorf("expected die for color %d in pyramid", c)
		}
	}
}

// TestDrawWithoutReplacement verifies a full leg of draws: 5 rolls end
// the leg with exactly one die left, the 6th empties the pool, and a 7th
// draw is a no-op.
func TestDrawWithoutReplacement(t *testing.T) {
	g := NewGame(99, DefaultMatchRules())

	var seen [NumDice]bool
	for i := 0; i < LegDiceCount; i++ {
		result, ok := g.RollRandomDie()
		if !ok {
			t.Fatalf("roll %d: expected a die, pool empty", i)
		}
		die := result.Camel
		if result.Crazy {
			die = crazyDieBit
		}
		if seen[die] {
			t.Errorf("roll %d: die %d drawn twice", i, die)
		}
		seen[die] = true
	}

	if !g.AllDiceRolled() {
		t.Errorf("expected leg-end condition after %d rolls", LegDiceCount)
	}
	if g.RemainingDiceCount() != 1 {
		t.Errorf("expected 1 die remaining, got %d", g.RemainingDiceCount())
	}

	if _, ok := g.RollRandomDie(); !ok {
		t.Errorf("expected 6th draw to succeed")
	}
	if g.RemainingDiceCount() != 0 {
		t.Errorf("expected empty pool, got %d", g.RemainingDiceCount())
	}
	if _, ok := g.RollRandomDie(); ok {
		t.Errorf("expected draw from empty pool to fail")
	}
	if g.RolledLen != NumDice {
		t.Errorf("expected %d logged rolls, got %d", NumDice, g.RolledLen)
	}
}

// TestRollValueRange verifies every die value lands in 1-3.
func TestRollValueRange(t *testing.T) {
	for seed := uint64(1); seed <= 40; seed++ {
		g := NewGame(seed, DefaultMatchRules())
		for {
			result, ok := g.RollRandomDie()
			if !ok {
				break
			}
			if result.Value < 1 || result.Value > 3 {
				t.Errorf("seed %d: die value %d out of range 1-3", seed, result.Value)
			}
		}
	}
}

// TestCrazyDraw verifies the crazy die yields one of the two crazy
// camels, chosen independently of the physical die.
func TestCrazyDraw(t *testing.T) {
	var sawBlack, sawWhite bool
	for seed := uint64(1); seed <= 60; seed++ {
		g := NewGame(seed, DefaultMatchRules())
		g.DiceLeft = 1 << crazyDieBit

		result, ok := g.RollRandomDie()
		if !ok {
			t.Fatalf("seed %d: expected crazy die draw", seed)
		}
		if !result.Crazy {
			t.Errorf("seed %d: expected crazy result", seed)
		}
		switch result.Camel {
		case CrazyCamelIndex(CrazyBlack):
			sawBlack = true
		case CrazyCamelIndex(CrazyWhite):
			sawWhite = true
		default:
			t.Errorf("seed %d: crazy draw produced camel %d", seed, result.Camel)
		}
	}
	if !sawBlack || !sawWhite {
		t.Errorf("expected both crazy colors across 60 seeds, black=%v white=%v", sawBlack, sawWhite)
	}
}

// TestResetPyramid verifies the pool and roll log reset for a new leg.
func TestResetPyramid(t *testing.T) {
	g := NewGame(5, DefaultMatchRules())
	for i := 0; i < LegDiceCount; i++ {
		g.RollRandomDie()
	}

	g.ResetPyramid()
	if g.RemainingDiceCount() != NumDice {
		t.Errorf("expected %d dice after reset, got %d", NumDice, g.RemainingDiceCount())
	}
	if g.RolledLen != 0 {
		t.Errorf("expected empty roll log after reset, got %d", g.RolledLen)
	}
}

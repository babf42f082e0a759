package engine

// The pyramid holds one regular die per racing color plus one shared
// crazy die. Draws are uniform over all remaining dice; the crazy die is
// one candidate among them. Drawing the crazy die additionally picks the
// crazy color (50/50) and a value 1-3, independent of which physical die
// came out.

// RollRandomDie draws one die uniformly at random from the remaining
// pool, removes it, and returns the rolled result. Returns ok=false when
// the pool is empty; this is a no-op, never an error.
func (g *GameState) RollRandomDie() (RollResult, bool) {
	remaining := g.remainingDiceCount()
	if remaining == 0 {
		return RollResult{}, false
	}

	// Pick the nth set bit of the remaining-dice mask.
	nth := uint8(g.randN(uint64(remaining)))
	die := uint8(0)
	for ; die < NumDice; die++ {
		if g.DiceLeft&(1<<die) == 0 {
			continue
		}
		if nth == 0 {
			break
		}
		nth--
	}
	g.DiceLeft &^= 1 << die

	var result RollResult
	result.Value = uint8(g.randN(3)) + 1
	if die == crazyDieBit {
		result.Crazy = true
		crazy := uint8(CrazyBlack)
		if g.randN(2) == 1 {
			crazy = CrazyWhite
		}
		result.Camel = CrazyCamelIndex(crazy)
	} else {
		result.Camel = die
	}

	g.Rolled[g.RolledLen] = result
	g.RolledLen++
	return result, true
}

// AllDiceRolled reports the leg-end condition: 5 of the 6 dice drawn.
// Exactly one die stays in the pyramid each leg.
func (g *GameState) AllDiceRolled() bool {
	return g.RolledLen >= LegDiceCount
}

// RemainingDiceCount returns how many dice are still in the pyramid,
// counting the crazy die.
func (g *GameState) RemainingDiceCount() uint8 {
	return g.remainingDiceCount()
}

func (g *GameState) remainingDiceCount() uint8 {
	var n uint8
	for die := uint8(0); die < NumDice; die++ {
		if g.DiceLeft&(1<<die) != 0 {
			n++
		}
	}
	return n
}

// DieRemaining reports whether the regular die for a racing color is
// still in the pyramid.
func (g *GameState) DieRemaining(color uint8) bool {
	return color < NumColors && g.DiceLeft&(1<<color) != 0
}

// CrazyDieRemaining reports whether the shared crazy die is still in the
// pyramid.
func (g *GameState) CrazyDieRemaining() bool {
	return g.DiceLeft&(1<<crazyDieBit) != 0
}

// ResetPyramid returns all drawn dice to the pool and clears the rolled
// log. Used at leg boundaries.
func (g *GameState) ResetPyramid() {
	g.DiceLeft = fullDiceMask
	g.RolledLen = 0
}

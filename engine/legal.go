package engine

// LegalActions returns a bitmask over the action space for the current
// player. Bit i set means action index i is legal right now. The mask is
// empty when the game is over or the player already acted this turn.
func (g *GameState) LegalActions() uint64 {
	if g.IsGameOver() || g.ActionTaken() {
		return 0
	}

	var mask uint64

	if !g.AllDiceRolled() {
		mask |= 1 << ActionRollPyramid
	}

	for color := uint8(0); color < NumColors; color++ {
		if g.LegTilesLeft[color] > 0 {
			mask |= 1 << EncodeTakeLegBet(color)
		}
		if g.HasRaceCard(g.CurrentPlayer, color) {
			mask |= 1 << EncodeRaceBet(color, true)
			mask |= 1 << EncodeRaceBet(color, false)
		}
	}

	if g.Players[g.CurrentPlayer].HasDesertTile {
		for space := uint8(1); space < TrackLength; space++ {
			if g.CanPlaceDesertTile(g.CurrentPlayer, space) {
				mask |= 1 << EncodeDesertTile(space, true)
				mask |= 1 << EncodeDesertTile(space, false)
			}
		}
	}

	return mask
}

// IsLegalAction reports whether a single action index is currently legal.
func (g *GameState) IsLegalAction(idx uint16) bool {
	return idx < NumActions && g.LegalActions()&(1<<idx) != 0
}

// LegalActionsList expands the legal-action mask into a slice of action
// indexes. Intended for AI policies and debugging; hot paths should use
// the mask directly.
func (g *GameState) LegalActionsList() []uint16 {
	mask := g.LegalActions()
	out := make([]uint16, 0, NumActions)
	for idx := uint16(0); idx < NumActions; idx++ {
		if mask&(1<<idx) != 0 {
			out = append(out, idx)
		}
	}
	return out
}

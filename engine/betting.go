package engine

// Each racing color owns a stack of three wager tiles popped top to
// bottom: 5 first, then 3, then 2. legTileValue maps a color's remaining
// count to the value currently on top.
var legTileValue = [4]uint8{0, 2, 3, 5}

// TopLegTile peeks at the top wager tile for a color without removing
// it. ok is false once the color's stack is empty.
func (g *GameState) TopLegTile(color uint8) (LegBetTile, bool) {
	if color >= NumColors || g.LegTilesLeft[color] == 0 {
		return LegBetTile{}, false
	}
	return LegBetTile{Color: color, Value: legTileValue[g.LegTilesLeft[color]]}, true
}

// takeLegTile pops the top wager tile for a color into the player's
// claimed set. ok is false when the stack is empty.
func (g *GameState) takeLegTile(player, color uint8) (LegBetTile, bool) {
	tile, ok := g.TopLegTile(color)
	if !ok {
		return LegBetTile{}, false
	}
	g.LegTilesLeft[color]--

	p := &g.Players[player]
	p.LegTiles[p.LegTileLen] = tile
	p.LegTileLen++
	return tile, true
}

// HasRaceCard reports whether the player still holds the race bet card
// for a color. Cards are consumed on use and only return at match start.
func (g *GameState) HasRaceCard(player, color uint8) bool {
	return color < NumColors && g.Players[player].RaceCards&(1<<color) != 0
}

// placeRaceBet consumes the player's card for a color and appends the
// bet to the winner or loser list. Submission order is preserved; it
// determines the payout schedule at match end.
func (g *GameState) placeRaceBet(player, color uint8, winner bool) bool {
	if !g.HasRaceCard(player, color) {
		return false
	}
	g.Players[player].RaceCards &^= 1 << color

	bet := RaceBet{Color: color, Player: player}
	if winner {
		g.WinnerBets[g.WinnerBetLen] = bet
		g.WinnerBetLen++
	} else {
		g.LoserBets[g.LoserBetLen] = bet
		g.LoserBetLen++
	}
	return true
}

// DesertTileAt returns the tile on a space, if any.
func (g *GameState) DesertTileAt(space uint8) (DesertTile, bool) {
	if space >= TrackLength || g.Desert[space].Owner < 0 {
		return DesertTile{}, false
	}
	return g.Desert[space], true
}

// CanPlaceDesertTile validates a placement target: never space 0, no
// existing tile, no camel standing there, and the player's tile must
// still be in hand.
func (g *GameState) CanPlaceDesertTile(player, space uint8) bool {
	if space == 0 || space >= TrackLength {
		return false
	}
	if g.Desert[space].Owner >= 0 {
		return false
	}
	if g.SpaceOccupied(space) {
		return false
	}
	return g.Players[player].HasDesertTile
}

// placeDesertTile puts the player's tile on a space. The tile stays on
// the board until the leg boundary returns it to the player's hand.
func (g *GameState) placeDesertTile(player, space uint8, oasis bool) bool {
	if !g.CanPlaceDesertTile(player, space) {
		return false
	}
	g.Desert[space] = DesertTile{Owner: int8(player), Oasis: oasis}
	g.Players[player].HasDesertTile = false
	return true
}

package engine

import "errors"

var (
	// ErrGameOver is returned when an action arrives after the match ended.
	ErrGameOver = errors.New("game is over")
	// ErrActionTaken is returned when the current player already acted
	// this turn and the turn has not advanced yet.
	ErrActionTaken = errors.New("action already taken this turn")
	// ErrIllegalAction is returned for actions outside the legal set.
	ErrIllegalAction = errors.New("illegal action")
)

// ApplyAction executes one encoded action for the current player. Every
// turn is exactly one action; a second submission before AdvanceTurn
// fails with ErrActionTaken.
func (g *GameState) ApplyAction(idx uint16) error {
	if g.IsGameOver() {
		return ErrGameOver
	}
	if g.ActionTaken() {
		return ErrActionTaken
	}

	switch {
	case idx == ActionRollPyramid:
		if err := g.applyRoll(); err != nil {
			return err
		}

	default:
		if color, ok := ActionIsTakeLegBet(idx); ok {
			if _, taken := g.takeLegTile(g.CurrentPlayer, color); !taken {
				return ErrIllegalAction
			}
			break
		}
		if color, winner, ok := ActionIsRaceBet(idx); ok {
			if !g.placeRaceBet(g.CurrentPlayer, color, winner) {
				return ErrIllegalAction
			}
			break
		}
		if space, oasis, ok := ActionIsDesertTile(idx); ok {
			if !g.placeDesertTile(g.CurrentPlayer, space, oasis) {
				return ErrIllegalAction
			}
			break
		}
		return ErrIllegalAction
	}

	g.Flags |= FlagActionTaken | FlagLegStarted
	return nil
}

// applyRoll draws a die, pays the roller the coin immediately, and
// moves the rolled camel. Regular-die rolls also count a pyramid token
// for the leg summary; the crazy die pays the coin but no token.
func (g *GameState) applyRoll() error {
	result, ok := g.RollRandomDie()
	if !ok {
		return ErrIllegalAction
	}

	p := &g.Players[g.CurrentPlayer]
	p.Money++
	if !result.Crazy {
		p.PyramidTokens++
	}
	g.LastRoll = result

	if g.moveCamel(result.Camel, result.Value) {
		g.Flags |= FlagFinishCrossed
	}
	return nil
}

// AdvanceTurn passes the turn to the next player and re-arms the
// one-action-per-turn gate.
func (g *GameState) AdvanceTurn() {
	g.CurrentPlayer = g.NextPlayer(g.CurrentPlayer)
	g.Flags &^= FlagActionTaken
}

// LegEnded reports whether the current leg has finished resolving: the
// leg saw at least one action, the pyramid hit its draw limit, and the
// final turn has been advanced past.
func (g *GameState) LegEnded() bool {
	return g.LegStarted() && g.AllDiceRolled() && !g.ActionTaken()
}

// ResetLeg prepares the board for the next leg: dice return to the
// pyramid, fresh wager tiles come out, claimed leg tiles and pyramid
// tokens are discarded, and desert tiles go back to their owners' hands.
// Race bets and camel positions carry across legs untouched.
func (g *GameState) ResetLeg() {
	g.ResetPyramid()

	for c := 0; c < NumColors; c++ {
		g.LegTilesLeft[c] = 3
	}
	for p := uint8(0); p < g.Rules.numPlayers(); p++ {
		g.Players[p].LegTileLen = 0
		g.Players[p].PyramidTokens = 0
	}
	for s := 0; s < TrackLength; s++ {
		if g.Desert[s].Owner >= 0 {
			g.Players[g.Desert[s].Owner].HasDesertTile = true
			g.Desert[s] = DesertTile{Owner: -1}
		}
	}

	g.LegNumber++
	g.Flags &^= FlagLegStarted
}

package engine

// Race bet payouts by submission order among the correct bets. Bets past
// the table pay 1.
var raceBetPayouts = [5]int16{8, 5, 3, 2, 1}

// ScoreLeg settles every player's claimed leg tiles against the current
// standings and applies the result to their money. A tile on the leg's
// first-place camel pays its face value, second place pays 1, anything
// else costs 1. The per-player deltas are aggregated before applying,
// and money never drops below zero. Returns the deltas for reporting.
//
// Pyramid roll coins were paid at roll time and are not re-counted here.
func (g *GameState) ScoreLeg() [MaxPlayers]int16 {
	first := g.Leader()
	second := g.SecondPlace()

	var deltas [MaxPlayers]int16
	for pi := uint8(0); pi < g.Rules.numPlayers(); pi++ {
		p := &g.Players[pi]

		var delta int16
		for i := uint8(0); i < p.LegTileLen; i++ {
			tile := p.LegTiles[i]
			switch tile.Color {
			case first:
				delta += int16(tile.Value)
			case second:
				delta++
			default:
				delta--
			}
		}

		p.Money += delta
		if p.Money < 0 {
			p.Money = 0
		}
		deltas[pi] = delta
	}
	return deltas
}

// ScoreRaceBets settles the winner and loser bet lists against the final
// standings and applies the payouts. Correct bets pay 8/5/3/2/1 by
// submission order within their list; wrong bets cost 1 each, applied
// one at a time with money floored at zero after each. Returns the net
// per-player deltas for reporting.
func (g *GameState) ScoreRaceBets() [MaxPlayers]int16 {
	winner := g.Leader()
	loser := g.LastPlace()

	var deltas [MaxPlayers]int16
	var before [MaxPlayers]int16
	for pi := uint8(0); pi < g.Rules.numPlayers(); pi++ {
		before[pi] = g.Players[pi].Money
	}

	g.settleBetList(g.WinnerBets[:g.WinnerBetLen], winner)
	g.settleBetList(g.LoserBets[:g.LoserBetLen], loser)

	for pi := uint8(0); pi < g.Rules.numPlayers(); pi++ {
		deltas[pi] = g.Players[pi].Money - before[pi]
	}
	return deltas
}

func (g *GameState) settleBetList(bets []RaceBet, target uint8) {
	correct := 0
	for _, bet := range bets {
		p := &g.Players[bet.Player]
		if bet.Color == target {
			payout := int16(1)
			if correct < len(raceBetPayouts) {
				payout = raceBetPayouts[correct]
			}
			correct++
			p.Money += payout
		} else {
			p.Money--
			if p.Money < 0 {
				p.Money = 0
			}
		}
	}
}

// FinishGame scores the final leg, settles all race bets, and marks the
// match over. Call once when a racing camel has crossed the finish line
// and the triggering turn has resolved.
func (g *GameState) FinishGame() (legDeltas, raceDeltas [MaxPlayers]int16) {
	legDeltas = g.ScoreLeg()
	raceDeltas = g.ScoreRaceBets()
	g.Flags |= FlagGameOver
	return legDeltas, raceDeltas
}

// GameWinner returns the index of the player with the most money. Ties
// go to the lower player index.
func (g *GameState) GameWinner() uint8 {
	best := uint8(0)
	for pi := uint8(1); pi < g.Rules.numPlayers(); pi++ {
		if g.Players[pi].Money > g.Players[best].Money {
			best = pi
		}
	}
	return best
}

package engine

// MatchRules holds configurable match settings.
type MatchRules struct {
	NumPlayers    uint8 // number of active players (2-8); 0 treated as 2
	StartingMoney int16
}

// DefaultMatchRules returns the standard tabletop settings.
func DefaultMatchRules() MatchRules {
	return MatchRules{
		NumPlayers:    2,
		StartingMoney: 3,
	}
}

// numPlayers returns the effective number of players, treating 0 as 2.
func (r *MatchRules) numPlayers() uint8 {
	if r.NumPlayers == 0 {
		return 2
	}
	return r.NumPlayers
}

// Package agent implements computer-player policies over the engine's
// action space. Three tiers are provided: Random picks uniformly from
// the legal set, Basic follows fixed betting heuristics, and Smart
// estimates leg bet expected values from camel rank and die state.
package agent

// Difficulty selects the decision policy tier for a computer player.
type Difficulty uint8

const (
	DifficultyRandom Difficulty = iota
	DifficultyBasic
	DifficultySmart
)

// String returns the lowercase wire name for the tier.
func (d Difficulty) String() string {
	switch d {
	case DifficultyRandom:
		return "random"
	case DifficultyBasic:
		return "basic"
	case DifficultySmart:
		return "smart"
	}
	return "?"
}

// ParseDifficulty is the inverse of String.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "random":
		return DifficultyRandom, true
	case "basic":
		return DifficultyBasic, true
	case "smart":
		return DifficultySmart, true
	}
	return 0, false
}

// legBetProb holds the estimated chance of a racing camel finishing the
// leg in first or second place.
type legBetProb struct {
	first  float32
	second float32
}

// legBetProbs is indexed by rank bucket (0 = leading, 1 = second,
// 2 = third, 3 = fourth or fifth) and by whether the camel's die is
// still in the pyramid (0 = spent, 1 = can still move).
var legBetProbs = [4][2]legBetProb{
	{{0.5, 0.3}, {0.7, 0.2}},
	{{0.25, 0.35}, {0.35, 0.35}},
	{{0.1, 0.2}, {0.15, 0.25}},
	{{0.05, 0.1}, {0.08, 0.15}},
}

// legBetEV estimates the expected coin value of claiming a wager tile:
// P(1st) pays the tile value, P(2nd) pays 1, anything else costs 1.
func legBetEV(tileValue uint8, rank int, canMove bool) float32 {
	bucket := rank
	if bucket > 3 {
		bucket = 3
	}
	move := 0
	if canMove {
		move = 1
	}
	pr := legBetProbs[bucket][move]
	pOther := 1.0 - pr.first - pr.second
	return pr.first*float32(tileValue) + pr.second - pOther
}

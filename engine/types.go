package engine

// Racing camel colors, used as array indices throughout.
const (
	ColorBlue uint8 = iota
	ColorGreen
	ColorRed
	ColorYellow
	ColorPurple

	NumColors = 5
)

// Crazy camel colors. Crazy camels continue the camel index space after
// the racing colors: camel index = NumColors + crazy color.
const (
	CrazyBlack uint8 = iota
	CrazyWhite

	NumCrazyCamels = 2
)

// NumCamels is the total number of camel tokens on the track.
const NumCamels = NumColors + NumCrazyCamels

// CrazyCamelIndex returns the token index for a crazy color.
func CrazyCamelIndex(crazy uint8) uint8 { return NumColors + crazy }

// IsCrazyCamel reports whether a token index belongs to a crazy camel.
func IsCrazyCamel(camel uint8) bool { return camel >= NumColors }

// ColorName returns the display name for a racing or crazy camel token index.
func ColorName(camel uint8) string {
	switch camel {
	case ColorBlue:
		return "blue"
	case ColorGreen:
		return "green"
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	case ColorPurple:
		return "purple"
	case NumColors + CrazyBlack:
		return "black"
	case NumColors + CrazyWhite:
		return "white"
	}
	return "?"
}

// ColorFromName is the inverse of ColorName. Returns the camel token index.
func ColorFromName(name string) (uint8, bool) {
	switch name {
	case "blue":
		return ColorBlue, true
	case "green":
		return ColorGreen, true
	case "red":
		return ColorRed, true
	case "yellow":
		return ColorYellow, true
	case "purple":
		return ColorPurple, true
	case "black":
		return NumColors + CrazyBlack, true
	case "white":
		return NumColors + CrazyWhite, true
	}
	return 0, false
}

// CamelPos is a camel token's location: track space and position within
// the space's stack (0 = bottom).
type CamelPos struct {
	Space    uint8
	StackPos uint8
}

// DesertTile is a player-placed track modifier. Owner is -1 when the
// space holds no tile.
type DesertTile struct {
	Owner int8
	Oasis bool
}

// LegBetTile is a claimed per-leg wager tile.
type LegBetTile struct {
	Color uint8
	Value uint8 // 5, 3, or 2
}

// RaceBet is a match-long winner or loser wager, recorded in submission
// order.
type RaceBet struct {
	Color  uint8
	Player uint8
}

// RollResult is the outcome of one pyramid die draw.
type RollResult struct {
	Camel uint8 // camel token index (racing or crazy)
	Value uint8 // 1-3
	Crazy bool
}

// ---------------------------------------------------------------------------
// Action index constants
// ---------------------------------------------------------------------------

const (
	ActionRollPyramid uint16 = 0

	ActionBaseTakeLegBet uint16 = 1  // TakeLegBet(color), 5 entries
	ActionBaseWinnerBet  uint16 = 6  // RaceBetWinner(color), 5 entries
	ActionBaseLoserBet   uint16 = 11 // RaceBetLoser(color), 5 entries
	ActionBaseOasis      uint16 = 16 // PlaceOasis(space 1..15), 15 entries
	ActionBaseMirage     uint16 = 31 // PlaceMirage(space 1..15), 15 entries

	NumActions uint16 = 46
)

// ---------------------------------------------------------------------------
// Encode functions
// ---------------------------------------------------------------------------

// EncodeTakeLegBet returns the action index for claiming color's top leg
// bet tile.
func EncodeTakeLegBet(color uint8) uint16 { return ActionBaseTakeLegBet + uint16(color) }

// EncodeRaceBet returns the action index for placing a winner or loser
// race bet on color.
func EncodeRaceBet(color uint8, winner bool) uint16 {
	if winner {
		return ActionBaseWinnerBet + uint16(color)
	}
	return ActionBaseLoserBet + uint16(color)
}

// EncodeDesertTile returns the action index for placing a desert tile on
// space (1..15). Oasis and mirage sides encode separately.
func EncodeDesertTile(space uint8, oasis bool) uint16 {
	if oasis {
		return ActionBaseOasis + uint16(space) - 1
	}
	return ActionBaseMirage + uint16(space) - 1
}

// ---------------------------------------------------------------------------
// Decode / predicate functions
// ---------------------------------------------------------------------------

// ActionIsTakeLegBet returns the color if idx encodes a TakeLegBet action.
func ActionIsTakeLegBet(idx uint16) (color uint8, ok bool) {
	if idx >= ActionBaseTakeLegBet && idx < ActionBaseWinnerBet {
		return uint8(idx - ActionBaseTakeLegBet), true
	}
	return 0, false
}

// ActionIsRaceBet returns the color and bet kind if idx encodes a race bet.
func ActionIsRaceBet(idx uint16) (color uint8, winner bool, ok bool) {
	if idx >= ActionBaseWinnerBet && idx < ActionBaseLoserBet {
		return uint8(idx - ActionBaseWinnerBet), true, true
	}
	if idx >= ActionBaseLoserBet && idx < ActionBaseOasis {
		return uint8(idx - ActionBaseLoserBet), false, true
	}
	return 0, false, false
}

// ActionIsDesertTile returns the space and tile side if idx encodes a
// desert tile placement.
func ActionIsDesertTile(idx uint16) (space uint8, oasis bool, ok bool) {
	if idx >= ActionBaseOasis && idx < ActionBaseMirage {
		return uint8(idx-ActionBaseOasis) + 1, true, true
	}
	if idx >= ActionBaseMirage && idx < NumActions {
		return uint8(idx-ActionBaseMirage) + 1, false, true
	}
	return 0, false, false
}

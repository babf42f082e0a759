package engine

// moveCamel relocates a camel token and every token stacked above it,
// preserving their relative order. Racing camels move forward and are
// subject to desert tile diversion at the naive target space; crazy
// camels move the same magnitude backward (clamped at space 0), never
// interact with desert tiles, and always land on top.
//
// Returns true when a racing camel's final target reached the finish
// line. Finish detection uses the diverted target, not the naive one:
// an oasis one space short of the line still wins the race.
func (g *GameState) moveCamel(camel uint8, spaces uint8) bool {
	start := g.Camels[camel]

	// Collect the moving group: the camel itself plus everything above
	// it on the same space, in ascending stack order.
	var group [NumCamels]uint8
	var inGroup [NumCamels]bool
	groupLen := uint8(0)
	for pos := start.StackPos; pos < NumCamels; pos++ {
		for c := uint8(0); c < NumCamels; c++ {
			if g.Camels[c].Space == start.Space && g.Camels[c].StackPos == pos {
				group[groupLen] = c
				inGroup[c] = true
				groupLen++
			}
		}
	}

	crossed := false
	landUnderneath := false
	var final uint8

	if IsCrazyCamel(camel) {
		if spaces >= start.Space {
			final = 0
		} else {
			final = start.Space - spaces
		}
	} else {
		target := uint16(start.Space) + uint16(spaces)
		crossed = target >= FinishLine

		// Desert tile diversion applies only to forward movement that
		// stays on the track.
		if !crossed {
			tile := g.Desert[target]
			if tile.Owner >= 0 {
				g.Players[tile.Owner].Money++
				if tile.Oasis {
					target++
					crossed = target >= FinishLine
				} else {
					target-- // tiles never sit on space 0, so target stays >= 0
					landUnderneath = true
				}
			}
		}

		if target > TrackLength-1 {
			final = TrackLength - 1
		} else {
			final = uint8(target)
		}
	}

	if landUnderneath {
		// Existing occupants shift up to make room; the moving group
		// slides in at the bottom.
		for c := uint8(0); c < NumCamels; c++ {
			if g.Camels[c].Space == final && !inGroup[c] {
				g.Camels[c].StackPos += groupLen
			}
		}
		for i := uint8(0); i < groupLen; i++ {
			g.Camels[group[i]] = CamelPos{Space: final, StackPos: i}
		}
	} else {
		// Normal landing: the group stacks on top of the occupants
		// already there.
		var height uint8
		for c := uint8(0); c < NumCamels; c++ {
			if g.Camels[c].Space == final && !inGroup[c] && g.Camels[c].StackPos+1 > height {
				height = g.Camels[c].StackPos + 1
			}
		}
		for i := uint8(0); i < groupLen; i++ {
			g.Camels[group[i]] = CamelPos{Space: final, StackPos: height + i}
		}
	}

	return crossed
}

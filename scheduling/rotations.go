package scheduling

import "fmt"

// ErrRotationPlayerCount is returned when a group does not hold exactly four
// players; rotations are never generated from a truncated group.
type ErrRotationPlayerCount struct {
	Got int
}

func (e ErrRotationPlayerCount) Error() string {
	return fmt.Sprintf("rotations require exactly 4 players, got %d", e.Got)
}

// Pairing is one of the three fixed doubles pairings of a day-group.
type Pairing struct {
	Number int
	PairA  [2]int
	PairB  [2]int
}

// BuildRotations derives the three round-robin pairings from the group's
// player order [P0, P1, P2, P3]:
//
//	1: (P0,P1) vs (P2,P3)
//	2: (P0,P2) vs (P1,P3)
//	3: (P0,P3) vs (P1,P2)
//
// Every player partners each other player exactly once and opposes each other
// player exactly twice.
func BuildRotations(playerIDs []int) ([]Pairing, error) {
	if len(playerIDs) != 4 {
		return nil, ErrRotationPlayerCount{Got: len(playerIDs)}
	}
	p := playerIDs
	return []Pairing{
		{Number: 1, PairA: [2]int{p[0], p[1]}, PairB: [2]int{p[2], p[3]}},
		{Number: 2, PairA: [2]int{p[0], p[2]}, PairB: [2]int{p[1], p[3]}},
		{Number: 3, PairA: [2]int{p[0], p[3]}, PairB: [2]int{p[1], p[2]}},
	}, nil
}

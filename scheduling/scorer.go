package scheduling

import "time"

// SlotScore is the availability score of one day-group for one candidate
// (date, time slot). Score is players-available / active-players in [0,1];
// a group without active players scores 0 and must not be auto-assigned.
type SlotScore struct {
	Score                float64
	ActiveCount          int
	AvailableCount       int
	UnavailablePlayerIDs []int
}

// ScoreSlot computes the availability score of a group of players for one
// candidate slot. Court identity never affects availability, so scores are
// computed per time slot only.
func ScoreSlot(ix *Index, playerIDs []int, date time.Time, slot string) SlotScore {
	score := SlotScore{ActiveCount: len(playerIDs)}
	if score.ActiveCount == 0 {
		return score
	}
	for _, id := range playerIDs {
		if ix.Check(id, date, slot).Available {
			score.AvailableCount++
		} else {
			score.UnavailablePlayerIDs = append(score.UnavailablePlayerIDs, id)
		}
	}
	score.Score = float64(score.AvailableCount) / float64(score.ActiveCount)
	return score
}

package scheduling

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Group is one day-group as seen by the assignment engine: its identity, the
// active (non waiting-list) players and the date the group should play on.
type Group struct {
	ID         int
	Number     int
	PlayerIDs  []int
	TargetDate time.Time
}

// Options control one auto-scheduling run.
//
// RespectAvailability gates placement on availability scores; when false the
// scores only order candidate slots. StrictMode requires full availability
// (every active player free) and skips groups that cannot get it; flexible
// mode accepts partially available slots. Capacity — no two groups on one
// (date, time slot, court) — is an invariant in every mode.
type Options struct {
	RespectAvailability   bool
	PreferTimeSlotVariety bool
	StrictMode            bool
}

// Assignment is a successfully placed group.
type Assignment struct {
	GroupID              int
	GroupNumber          int
	Date                 time.Time
	TimeSlot             string
	CourtID              int
	Score                float64
	UnavailablePlayerIDs []int
}

// SkippedGroup is a group the engine could not place.
type SkippedGroup struct {
	GroupID     int
	GroupNumber int
	Reason      string
}

// Result of one engine run. Every skipped group is also enumerated in
// Warnings, never just counted.
type Result struct {
	Assigned []Assignment
	Skipped  []SkippedGroup
	Warnings []string
}

type candidate struct {
	slot  string
	score SlotScore
}

type scoredGroup struct {
	group      Group
	candidates []candidate
	best       SlotScore
}

// Assign greedily places groups onto (time slot, court) combinations on each
// group's target date. The run is deterministic: groups are processed in
// descending order of best achievable score (ties by group number ascending)
// and slot ties resolve to the lexicographically lowest time slot, so harder
// to place groups are not starved and repeated runs produce identical output.
func Assign(ix *Index, groups []Group, courtIDs []int, timeSlots []string, opts Options) Result {
	var res Result

	// usage[dateKey][slot] = number of courts already taken.
	usage := make(map[string]map[string]int)
	slotUsed := func(date time.Time, slot string) int {
		byDate := usage[date.Format(dateLayout)]
		if byDate == nil {
			return 0
		}
		return byDate[slot]
	}
	take := func(date time.Time, slot string) int {
		key := date.Format(dateLayout)
		if usage[key] == nil {
			usage[key] = make(map[string]int)
		}
		court := courtIDs[usage[key][slot]]
		usage[key][slot]++
		return court
	}

	scored := make([]*scoredGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.PlayerIDs) == 0 {
			res.Skipped = append(res.Skipped, SkippedGroup{GroupID: g.ID, GroupNumber: g.Number, Reason: "no active players"})
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("Group %d has no active players and was excluded from auto-assignment", g.Number))
			continue
		}
		sg := &scoredGroup{group: g}
		for _, slot := range timeSlots {
			sg.candidates = append(sg.candidates, candidate{slot: slot, score: ScoreSlot(ix, g.PlayerIDs, g.TargetDate, slot)})
		}
		if len(sg.candidates) > 0 {
			sg.best = sg.candidates[0].score
			for _, c := range sg.candidates[1:] {
				if c.score.Score > sg.best.Score {
					sg.best = c.score
				}
			}
		}
		scored = append(scored, sg)
	}

	// Highest best-achievable score first, so groups with scarce good slots
	// keep them; group number breaks ties for reproducibility.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].best.Score != scored[j].best.Score {
			return scored[i].best.Score > scored[j].best.Score
		}
		return scored[i].group.Number < scored[j].group.Number
	})

	for _, sg := range scored {
		g := sg.group

		free := make([]candidate, 0, len(sg.candidates))
		for _, c := range sg.candidates {
			if slotUsed(g.TargetDate, c.slot) < len(courtIDs) {
				free = append(free, c)
			}
		}
		if len(free) == 0 {
			res.Skipped = append(res.Skipped, SkippedGroup{GroupID: g.ID, GroupNumber: g.Number, Reason: "no free court remaining"})
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("Group %d skipped: no free court remaining on %s", g.Number, g.TargetDate.Format(dateLayout)))
			continue
		}

		sort.SliceStable(free, func(i, j int) bool {
			if free[i].score.Score != free[j].score.Score {
				return free[i].score.Score > free[j].score.Score
			}
			if opts.PreferTimeSlotVariety {
				ui, uj := slotUsed(g.TargetDate, free[i].slot), slotUsed(g.TargetDate, free[j].slot)
				if ui != uj {
					return ui < uj
				}
			}
			return free[i].slot < free[j].slot
		})

		pick, reason := pickCandidate(free, opts)
		if pick == nil {
			res.Skipped = append(res.Skipped, SkippedGroup{GroupID: g.ID, GroupNumber: g.Number, Reason: reason})
			res.Warnings = append(res.Warnings, skipWarning(g, free[0], reason))
			continue
		}

		court := take(g.TargetDate, pick.slot)
		res.Assigned = append(res.Assigned, Assignment{
			GroupID:              g.ID,
			GroupNumber:          g.Number,
			Date:                 g.TargetDate,
			TimeSlot:             pick.slot,
			CourtID:              court,
			Score:                pick.score.Score,
			UnavailablePlayerIDs: sortedIDs(pick.score.UnavailablePlayerIDs),
		})
	}

	return res
}

// pickCandidate applies the availability gate to the ordered free candidates.
func pickCandidate(free []candidate, opts Options) (*candidate, string) {
	if !opts.RespectAvailability {
		return &free[0], ""
	}

	if opts.StrictMode {
		for i := range free {
			if free[i].score.AvailableCount == free[i].score.ActiveCount {
				return &free[i], ""
			}
		}
		return nil, "no fully available time slot"
	}

	allZero := true
	for i := range free {
		if free[i].score.AvailableCount > 0 {
			allZero = false
			break
		}
	}
	if allZero {
		// Every slot is equally bad; assign to the best-ordered one anyway.
		return &free[0], ""
	}
	for i := range free {
		if free[i].score.AvailableCount > 0 {
			return &free[i], ""
		}
	}
	return nil, "no available time slot"
}

func skipWarning(g Group, best candidate, reason string) string {
	ids := sortedIDs(best.score.UnavailablePlayerIDs)
	if len(ids) == 0 {
		return fmt.Sprintf("Group %d skipped: %s on %s", g.Number, reason, g.TargetDate.Format(dateLayout))
	}
	if best.score.AvailableCount == 0 {
		return fmt.Sprintf("Group %d has no available players for any slot on %s (unavailable: %s)",
			g.Number, g.TargetDate.Format(dateLayout), joinIDs(ids))
	}
	return fmt.Sprintf("Group %d skipped: players %s unavailable at every time slot on %s",
		g.Number, joinIDs(ids), g.TargetDate.Format(dateLayout))
}

func sortedIDs(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	sort.Ints(out)
	return out
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}

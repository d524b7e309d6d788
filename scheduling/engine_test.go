package scheduling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padeliga/league-system/models"
)

func allAvailableIndex(playerIDs []int, slots []string) *Index {
	weekly := make([]models.WeeklyAvailability, 0, len(playerIDs)*7)
	for _, id := range playerIDs {
		for dow := 0; dow < 7; dow++ {
			weekly = append(weekly, models.WeeklyAvailability{PlayerID: id, DayOfWeek: dow, TimeSlots: slots})
		}
	}
	return NewIndex(weekly, nil)
}

func makeGroups(n int, target time.Time) []Group {
	groups := make([]Group, 0, n)
	pid := 1
	for i := 1; i <= n; i++ {
		g := Group{ID: 100 + i, Number: i, TargetDate: target}
		for j := 0; j < 4; j++ {
			g.PlayerIDs = append(g.PlayerIDs, pid)
			pid++
		}
		groups = append(groups, g)
	}
	return groups
}

func TestAssignAllGroupsFitWhenFullyAvailable(t *testing.T) {
	target := date("2024-03-01")
	slots := []string{"18:30", "19:45", "21:00"}
	courts := []int{11, 12, 13, 14}
	groups := makeGroups(8, target)

	var allPlayers []int
	for _, g := range groups {
		allPlayers = append(allPlayers, g.PlayerIDs...)
	}
	ix := allAvailableIndex(allPlayers, slots)

	res := Assign(ix, groups, courts, slots, Options{RespectAvailability: true, StrictMode: true})

	require.Len(t, res.Assigned, 8)
	assert.Empty(t, res.Skipped)
	assert.Empty(t, res.Warnings)

	seen := make(map[models.SlotRef]int)
	for _, a := range res.Assigned {
		assert.InDelta(t, 1.0, a.Score, 1e-9)
		assert.Empty(t, a.UnavailablePlayerIDs)
		ref := models.SlotRef{MatchDate: a.Date, TimeSlot: a.TimeSlot, CourtID: a.CourtID}
		prev, dup := seen[ref]
		require.Falsef(t, dup, "groups %d and %d share slot %+v", prev, a.GroupNumber, ref)
		seen[ref] = a.GroupNumber
	}
}

func TestAssignStrictSkipsGroupWithUnavailablePlayers(t *testing.T) {
	target := date("2024-03-01")
	slots := []string{"19:45", "21:00"}
	courts := []int{1}

	// Only player 1 has availability; players 2, 3, 4 are unavailable at
	// every time slot of the target date.
	ix := NewIndex([]models.WeeklyAvailability{
		{PlayerID: 1, DayOfWeek: 5, TimeSlots: slots},
	}, nil)

	groups := []Group{{ID: 7, Number: 3, PlayerIDs: []int{1, 2, 3, 4}, TargetDate: target}}
	res := Assign(ix, groups, courts, slots, Options{RespectAvailability: true, StrictMode: true})

	assert.Empty(t, res.Assigned)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 7, res.Skipped[0].GroupID)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Group 3")
	assert.Contains(t, res.Warnings[0], "2, 3, 4")
}

func TestAssignFlexibleAcceptsPartialAvailability(t *testing.T) {
	target := date("2024-03-01")
	slots := []string{"19:45", "21:00"}
	courts := []int{1, 2}

	ix := NewIndex([]models.WeeklyAvailability{
		{PlayerID: 1, DayOfWeek: 5, TimeSlots: []string{"21:00"}},
		{PlayerID: 2, DayOfWeek: 5, TimeSlots: []string{"21:00"}},
		{PlayerID: 3, DayOfWeek: 5, TimeSlots: []string{"21:00"}},
	}, nil)

	groups := []Group{{ID: 1, Number: 1, PlayerIDs: []int{1, 2, 3, 4}, TargetDate: target}}

	strict := Assign(ix, groups, courts, slots, Options{RespectAvailability: true, StrictMode: true})
	assert.Empty(t, strict.Assigned)
	assert.Len(t, strict.Skipped, 1)

	flexible := Assign(ix, groups, courts, slots, Options{RespectAvailability: true})
	require.Len(t, flexible.Assigned, 1)
	assert.Equal(t, "21:00", flexible.Assigned[0].TimeSlot)
	assert.InDelta(t, 0.75, flexible.Assigned[0].Score, 1e-9)
	assert.Equal(t, []int{4}, flexible.Assigned[0].UnavailablePlayerIDs)
}

func TestAssignSkipsWhenCapacityExhausted(t *testing.T) {
	target := date("2024-03-01")
	slots := []string{"19:45"}
	courts := []int{1}
	groups := makeGroups(2, target)

	var allPlayers []int
	for _, g := range groups {
		allPlayers = append(allPlayers, g.PlayerIDs...)
	}
	ix := allAvailableIndex(allPlayers, slots)

	res := Assign(ix, groups, courts, slots, Options{RespectAvailability: true, StrictMode: true})
	require.Len(t, res.Assigned, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "no free court remaining", res.Skipped[0].Reason)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no free court remaining")
}

func TestAssignExcludesGroupWithoutActivePlayers(t *testing.T) {
	target := date("2024-03-01")
	res := Assign(NewIndex(nil, nil),
		[]Group{{ID: 9, Number: 2, TargetDate: target}},
		[]int{1}, []string{"19:45"}, Options{RespectAvailability: true})

	assert.Empty(t, res.Assigned)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "no active players", res.Skipped[0].Reason)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Group 2 has no active players")
}

func TestAssignDeterministic(t *testing.T) {
	target := date("2024-03-01")
	slots := []string{"18:30", "19:45", "21:00"}
	courts := []int{1, 2}
	groups := makeGroups(6, target)

	var allPlayers []int
	for _, g := range groups {
		allPlayers = append(allPlayers, g.PlayerIDs...)
	}
	ix := allAvailableIndex(allPlayers, slots)

	opts := Options{RespectAvailability: true, PreferTimeSlotVariety: true}
	first := Assign(ix, groups, courts, slots, opts)
	second := Assign(ix, groups, courts, slots, opts)
	assert.Equal(t, first, second)
}

func TestAssignPreferTimeSlotVarietySpreadsGroups(t *testing.T) {
	target := date("2024-03-01")
	slots := []string{"18:30", "19:45", "21:00"}
	courts := []int{1, 2, 3}
	groups := makeGroups(3, target)

	var allPlayers []int
	for _, g := range groups {
		allPlayers = append(allPlayers, g.PlayerIDs...)
	}
	ix := allAvailableIndex(allPlayers, slots)

	res := Assign(ix, groups, courts, slots, Options{RespectAvailability: true, PreferTimeSlotVariety: true})
	require.Len(t, res.Assigned, 3)

	used := make(map[string]bool)
	for _, a := range res.Assigned {
		used[a.TimeSlot] = true
	}
	assert.Lenf(t, used, 3, "expected groups spread over all time slots, got %v", used)
}

func TestAssignHarderGroupsAreNotStarved(t *testing.T) {
	target := date("2024-03-01")
	slots := []string{"19:45", "21:00"}
	courts := []int{1}

	// Group 1 can play either slot; group 2 only 21:00. Group 1 is processed
	// first (higher best score would tie at 1.0, so group number orders them)
	// and must not take 21:00 away from group 2.
	weekly := []models.WeeklyAvailability{
		{PlayerID: 5, DayOfWeek: 5, TimeSlots: []string{"21:00"}},
		{PlayerID: 6, DayOfWeek: 5, TimeSlots: []string{"21:00"}},
		{PlayerID: 7, DayOfWeek: 5, TimeSlots: []string{"21:00"}},
		{PlayerID: 8, DayOfWeek: 5, TimeSlots: []string{"21:00"}},
	}
	for _, id := range []int{1, 2, 3, 4} {
		weekly = append(weekly, models.WeeklyAvailability{PlayerID: id, DayOfWeek: 5, TimeSlots: slots})
	}
	ix := NewIndex(weekly, nil)

	groups := []Group{
		{ID: 1, Number: 1, PlayerIDs: []int{1, 2, 3, 4}, TargetDate: target},
		{ID: 2, Number: 2, PlayerIDs: []int{5, 6, 7, 8}, TargetDate: target},
	}

	res := Assign(ix, groups, courts, slots, Options{RespectAvailability: true, StrictMode: true})
	require.Lenf(t, res.Assigned, 2, "warnings: %v", res.Warnings)

	bySlot := make(map[string]int)
	for _, a := range res.Assigned {
		bySlot[a.TimeSlot] = a.GroupNumber
	}
	assert.Equal(t, 1, bySlot["19:45"])
	assert.Equal(t, 2, bySlot["21:00"])
}

func TestBuildRotations(t *testing.T) {
	rotations, err := BuildRotations([]int{10, 20, 30, 40})
	require.NoError(t, err)
	require.Len(t, rotations, 3)

	assert.Equal(t, Pairing{Number: 1, PairA: [2]int{10, 20}, PairB: [2]int{30, 40}}, rotations[0])
	assert.Equal(t, Pairing{Number: 2, PairA: [2]int{10, 30}, PairB: [2]int{20, 40}}, rotations[1])
	assert.Equal(t, Pairing{Number: 3, PairA: [2]int{10, 40}, PairB: [2]int{20, 30}}, rotations[2])

	// Every player partners every other player exactly once and opposes each
	// other player exactly twice.
	partners := make(map[string]int)
	opponents := make(map[string]int)
	pairKey := func(a, b int) string {
		if a > b {
			a, b = b, a
		}
		return fmt.Sprintf("%d-%d", a, b)
	}
	for _, r := range rotations {
		partners[pairKey(r.PairA[0], r.PairA[1])]++
		partners[pairKey(r.PairB[0], r.PairB[1])]++
		for _, a := range r.PairA {
			for _, b := range r.PairB {
				opponents[pairKey(a, b)]++
			}
		}
	}
	require.Len(t, partners, 6)
	for key, count := range partners {
		assert.Equalf(t, 1, count, "pair %s should partner exactly once", key)
	}
	require.Len(t, opponents, 6)
	for key, count := range opponents {
		assert.Equalf(t, 2, count, "pair %s should oppose exactly twice", key)
	}
}

func TestBuildRotationsRejectsWrongPlayerCount(t *testing.T) {
	for _, n := range []int{0, 3, 5} {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i + 1
		}
		_, err := BuildRotations(ids)
		require.Errorf(t, err, "expected error for %d players", n)
		assert.ErrorAs(t, err, &ErrRotationPlayerCount{})
	}
}

package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padeliga/league-system/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

func TestIndexWeeklyLookup(t *testing.T) {
	// 2024-03-01 is a Friday (day_of_week 5).
	ix := NewIndex([]models.WeeklyAvailability{
		{PlayerID: 1, SeasonID: 1, DayOfWeek: 5, TimeSlots: []string{"19:45", "21:00"}},
	}, nil)

	assert.True(t, ix.Check(1, date("2024-03-01"), "19:45").Available)
	assert.True(t, ix.Check(1, date("2024-03-01"), "21:00").Available)

	res := ix.Check(1, date("2024-03-01"), "18:30")
	assert.False(t, res.Available)
	assert.Equal(t, "Not available at this time", res.Reason)

	// Same slot on a weekday without a template is unavailable.
	res = ix.Check(1, date("2024-03-02"), "19:45")
	assert.False(t, res.Available)
	assert.Equal(t, "No availability set", res.Reason)
}

func TestIndexFailClosedWithoutRecords(t *testing.T) {
	ix := NewIndex(nil, nil)
	res := ix.Check(42, date("2024-03-01"), "19:45")
	require.False(t, res.Available)
	assert.Equal(t, "No availability set", res.Reason)
}

func TestIndexOverrideReplacesWeekly(t *testing.T) {
	weekly := []models.WeeklyAvailability{
		{PlayerID: 1, SeasonID: 1, DayOfWeek: 5, TimeSlots: []string{"19:45"}},
	}

	t.Run("unavailable override wins over weekly slot", func(t *testing.T) {
		ix := NewIndex(weekly, []models.AvailabilityOverride{
			{PlayerID: 1, SeasonID: 1, Date: date("2024-03-01"), IsUnavailable: true, Reason: strPtr("Injured")},
		})
		res := ix.Check(1, date("2024-03-01"), "19:45")
		assert.False(t, res.Available)
		assert.Equal(t, "Injured", res.Reason)

		// Other Fridays still use the weekly template.
		assert.True(t, ix.Check(1, date("2024-03-08"), "19:45").Available)
	})

	t.Run("explicit slot override wins over missing weekly slot", func(t *testing.T) {
		ix := NewIndex(weekly, []models.AvailabilityOverride{
			{PlayerID: 1, SeasonID: 1, Date: date("2024-03-01"), TimeSlots: []string{"21:00"}},
		})
		assert.True(t, ix.Check(1, date("2024-03-01"), "21:00").Available)
		// The override fully replaces the weekly answer: 19:45 is gone.
		assert.False(t, ix.Check(1, date("2024-03-01"), "19:45").Available)
	})

	t.Run("unavailable override without reason uses generic text", func(t *testing.T) {
		ix := NewIndex(weekly, []models.AvailabilityOverride{
			{PlayerID: 1, SeasonID: 1, Date: date("2024-03-01"), IsUnavailable: true},
		})
		res := ix.Check(1, date("2024-03-01"), "19:45")
		assert.False(t, res.Available)
		assert.Equal(t, "Marked unavailable for this date", res.Reason)
	})
}

func TestScoreSlot(t *testing.T) {
	ix := NewIndex([]models.WeeklyAvailability{
		{PlayerID: 1, SeasonID: 1, DayOfWeek: 5, TimeSlots: []string{"19:45"}},
		{PlayerID: 2, SeasonID: 1, DayOfWeek: 5, TimeSlots: []string{"19:45"}},
		{PlayerID: 3, SeasonID: 1, DayOfWeek: 5, TimeSlots: []string{"21:00"}},
	}, nil)

	score := ScoreSlot(ix, []int{1, 2, 3, 4}, date("2024-03-01"), "19:45")
	assert.InDelta(t, 0.5, score.Score, 1e-9)
	assert.Equal(t, 4, score.ActiveCount)
	assert.Equal(t, 2, score.AvailableCount)
	assert.ElementsMatch(t, []int{3, 4}, score.UnavailablePlayerIDs)
}

func TestScoreSlotEmptyGroup(t *testing.T) {
	ix := NewIndex(nil, nil)
	score := ScoreSlot(ix, nil, date("2024-03-01"), "19:45")
	assert.Zero(t, score.Score)
	assert.Zero(t, score.ActiveCount)
	assert.Empty(t, score.UnavailablePlayerIDs)
}

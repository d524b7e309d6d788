package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padeliga/league-system/models"
)

func availabilityFixture(t *testing.T) (AvailabilityService, *fakeAvailabilityRepo) {
	t.Helper()
	players := []*models.Player{
		{ID: 1, CategoryID: 10, FullName: "Ana"},
		{ID: 2, CategoryID: 10, FullName: "Borja"},
		{ID: 3, CategoryID: 10, FullName: "Clara", WaitingList: true},
	}
	availabilityRepo := &fakeAvailabilityRepo{}
	service := NewAvailabilityService(availabilityRepo, newFakePlayerRepo(players...), newFakeSeasonRepo())
	return service, availabilityRepo
}

func TestAvailabilityService_SetWeeklyAvailability_Validation(t *testing.T) {
	service, _ := availabilityFixture(t)

	_, err := service.SetWeeklyAvailability(context.Background(), 1, 1, []WeeklyAvailabilityInput{
		{DayOfWeek: 7, TimeSlots: []string{"19:45"}},
	})
	assert.ErrorIs(t, err, ErrInvalidDayOfWeek)

	_, err = service.SetWeeklyAvailability(context.Background(), 1, 1, []WeeklyAvailabilityInput{
		{DayOfWeek: 5, TimeSlots: nil},
	})
	assert.ErrorIs(t, err, ErrEmptyTimeSlots)

	_, err = service.SetWeeklyAvailability(context.Background(), 1, 1, []WeeklyAvailabilityInput{
		{DayOfWeek: 5, TimeSlots: []string{"19:45"}},
		{DayOfWeek: 5, TimeSlots: []string{"21:00"}},
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAvailabilityService_SetWeeklyAvailability_Replaces(t *testing.T) {
	service, availabilityRepo := availabilityFixture(t)

	_, err := service.SetWeeklyAvailability(context.Background(), 1, 1, []WeeklyAvailabilityInput{
		{DayOfWeek: 5, TimeSlots: []string{"19:45"}},
		{DayOfWeek: 6, TimeSlots: []string{"21:00"}},
	})
	require.NoError(t, err)

	_, err = service.SetWeeklyAvailability(context.Background(), 1, 1, []WeeklyAvailabilityInput{
		{DayOfWeek: 0, TimeSlots: []string{"10:00"}},
	})
	require.NoError(t, err)

	stored, err := availabilityRepo.ListWeeklyForPlayer(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, stored, 1, "replace should drop the previous template")
	assert.Equal(t, 0, stored[0].DayOfWeek)
}

func TestAvailabilityService_SetOverride(t *testing.T) {
	service, _ := availabilityFixture(t)

	_, err := service.SetOverride(context.Background(), 1, 1, AvailabilityOverrideInput{
		Date:      testDate("2024-03-01"),
		TimeSlots: []string{"21:00"},
	})
	require.NoError(t, err)

	// Недоступность без слотов допустима; слоты при ней игнорируются.
	override, err := service.SetOverride(context.Background(), 2, 1, AvailabilityOverrideInput{
		Date:          testDate("2024-03-01"),
		TimeSlots:     []string{"19:45"},
		IsUnavailable: true,
		Reason:        stringPtr("injury"),
	})
	require.NoError(t, err)
	assert.Empty(t, override.TimeSlots)

	_, err = service.SetOverride(context.Background(), 1, 1, AvailabilityOverrideInput{
		Date: testDate("2024-03-08"),
	})
	assert.ErrorIs(t, err, ErrEmptyTimeSlots)
}

func TestAvailabilityService_CheckSlot_Breakdown(t *testing.T) {
	service, _ := availabilityFixture(t)

	// 2024-03-01 — пятница (day_of_week 5).
	_, err := service.SetWeeklyAvailability(context.Background(), 1, 1, []WeeklyAvailabilityInput{
		{DayOfWeek: 5, TimeSlots: []string{"19:45", "21:00"}},
	})
	require.NoError(t, err)
	_, err = service.SetOverride(context.Background(), 2, 1, AvailabilityOverrideInput{
		Date:          testDate("2024-03-01"),
		IsUnavailable: true,
		Reason:        stringPtr("travelling"),
	})
	require.NoError(t, err)

	check, err := service.CheckSlot(context.Background(), 10, 1, testDate("2024-03-01"), "19:45")
	require.NoError(t, err)

	// Лист ожидания в раскладку не входит.
	require.Equal(t, 2, check.TotalCount)
	assert.Equal(t, 1, check.AvailableCount)

	byID := make(map[int]PlayerSlotStatus)
	for _, p := range check.Players {
		byID[p.PlayerID] = p
	}
	assert.True(t, byID[1].Available)
	require.False(t, byID[2].Available)
	assert.Equal(t, "travelling", byID[2].Reason)
}

func TestAvailabilityService_DeleteOverride_NotFound(t *testing.T) {
	service, _ := availabilityFixture(t)

	err := service.DeleteOverride(context.Background(), 1, 1, testDate("2024-03-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

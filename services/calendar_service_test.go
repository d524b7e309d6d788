package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padeliga/league-system/models"
)

func calendarFixture(t *testing.T, playerCount int) (CalendarService, *fakeMatchDayRepo, *fakeDayGroupRepo, *fakeRotationRepo) {
	t.Helper()

	category := &models.Category{ID: 10, SeasonID: 1, Name: "Nivel 2", MaxPlayers: 16}
	players := make([]*models.Player, 0, playerCount)
	for i := 1; i <= playerCount; i++ {
		players = append(players, &models.Player{ID: i, CategoryID: 10, FullName: "Player"})
	}

	matchDayRepo := newFakeMatchDayRepo()
	dayGroupRepo := newFakeDayGroupRepo()
	rotationRepo := newFakeRotationRepo()
	service := NewCalendarService(
		matchDayRepo,
		dayGroupRepo,
		rotationRepo,
		newFakePlayerRepo(players...),
		newFakeCategoryRepo(category),
		&fakeTxRunner{},
		testLogger(),
	)
	return service, matchDayRepo, dayGroupRepo, rotationRepo
}

func TestCalendarService_GenerateCalendar(t *testing.T) {
	service, matchDayRepo, dayGroupRepo, rotationRepo := calendarFixture(t, 8)

	matchDays, err := service.GenerateCalendar(context.Background(), 10, 3)
	require.NoError(t, err)
	require.Len(t, matchDays, 3)

	count, err := matchDayRepo.CountByCategory(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// По две четверки на тур, каждая с тремя ротациями.
	for _, md := range matchDays {
		require.Len(t, md.Groups, 2, "matchday %d", md.Number)
		for _, group := range md.Groups {
			assert.Len(t, group.PlayerIDs(), 4)
			rotations, err := rotationRepo.ListByGroup(context.Background(), group.ID)
			require.NoError(t, err)
			assert.Len(t, rotations, 3)
		}
	}

	groups, err := dayGroupRepo.ListByMatchDayIDs(context.Background(), []int{matchDays[0].ID, matchDays[1].ID, matchDays[2].ID})
	require.NoError(t, err)
	assert.Len(t, groups, 6)
}

func TestCalendarService_GenerateCalendar_GuardsDoubleGeneration(t *testing.T) {
	service, _, _, _ := calendarFixture(t, 8)

	_, err := service.GenerateCalendar(context.Background(), 10, 2)
	require.NoError(t, err)

	_, err = service.GenerateCalendar(context.Background(), 10, 2)
	assert.ErrorIs(t, err, ErrCalendarAlreadyGenerated)
}

func TestCalendarService_GenerateCalendar_PlayerCountValidation(t *testing.T) {
	t.Run("fewer than four players", func(t *testing.T) {
		service, _, _, _ := calendarFixture(t, 3)
		_, err := service.GenerateCalendar(context.Background(), 10, 1)
		assert.ErrorIs(t, err, ErrCalendarNotEnoughPlayers)
	})

	t.Run("count not divisible by four", func(t *testing.T) {
		service, _, _, _ := calendarFixture(t, 10)
		_, err := service.GenerateCalendar(context.Background(), 10, 1)
		assert.ErrorIs(t, err, ErrCalendarPlayerCount)
	})

	t.Run("waiting list excluded", func(t *testing.T) {
		category := &models.Category{ID: 10, SeasonID: 1, Name: "Nivel 2", MaxPlayers: 4}
		players := []*models.Player{
			{ID: 1, CategoryID: 10, FullName: "A"},
			{ID: 2, CategoryID: 10, FullName: "B"},
			{ID: 3, CategoryID: 10, FullName: "C"},
			{ID: 4, CategoryID: 10, FullName: "D"},
			{ID: 5, CategoryID: 10, FullName: "E", WaitingList: true},
		}
		service := NewCalendarService(
			newFakeMatchDayRepo(),
			newFakeDayGroupRepo(),
			newFakeRotationRepo(),
			newFakePlayerRepo(players...),
			newFakeCategoryRepo(category),
			&fakeTxRunner{},
			testLogger(),
		)

		matchDays, err := service.GenerateCalendar(context.Background(), 10, 1)
		require.NoError(t, err)
		require.Len(t, matchDays, 1)
		require.Len(t, matchDays[0].Groups, 1)
		assert.NotContains(t, matchDays[0].Groups[0].PlayerIDs(), 5)
	})
}

func TestCalendarService_GenerateCalendar_InvalidRounds(t *testing.T) {
	service, _, _, _ := calendarFixture(t, 8)

	_, err := service.GenerateCalendar(context.Background(), 10, 0)
	assert.ErrorIs(t, err, ErrCalendarInvalidRounds)
}

func TestCalendarService_RegenerateRotations_Idempotent(t *testing.T) {
	group := &models.DayGroup{
		ID: 500, MatchDayID: 1, GroupNumber: 1,
		Player1ID: intPtr(1), Player2ID: intPtr(2), Player3ID: intPtr(3), Player4ID: intPtr(4),
	}
	rotationRepo := newFakeRotationRepo()
	service := NewCalendarService(
		newFakeMatchDayRepo(),
		newFakeDayGroupRepo(group),
		rotationRepo,
		newFakePlayerRepo(),
		newFakeCategoryRepo(),
		&fakeTxRunner{},
		testLogger(),
	)

	first, alreadyExisted, err := service.RegenerateRotations(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.False(t, alreadyExisted)

	// Повторный вызов не создает дубликатов и сообщает, что ротации уже были.
	second, alreadyExisted, err := service.RegenerateRotations(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.True(t, alreadyExisted)

	stored, err := rotationRepo.ListByGroup(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestCalendarService_RegenerateRotations_FixedPairings(t *testing.T) {
	group := &models.DayGroup{
		ID: 500, MatchDayID: 1, GroupNumber: 1,
		Player1ID: intPtr(11), Player2ID: intPtr(22), Player3ID: intPtr(33), Player4ID: intPtr(44),
	}
	service := NewCalendarService(
		newFakeMatchDayRepo(),
		newFakeDayGroupRepo(group),
		newFakeRotationRepo(),
		newFakePlayerRepo(),
		newFakeCategoryRepo(),
		&fakeTxRunner{},
		testLogger(),
	)

	rotations, _, err := service.RegenerateRotations(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, rotations, 3)

	assert.Equal(t, [4]int{11, 22, 33, 44}, [4]int{rotations[0].Pair1AID, rotations[0].Pair1BID, rotations[0].Pair2AID, rotations[0].Pair2BID})
	assert.Equal(t, [4]int{11, 33, 22, 44}, [4]int{rotations[1].Pair1AID, rotations[1].Pair1BID, rotations[1].Pair2AID, rotations[1].Pair2BID})
	assert.Equal(t, [4]int{11, 44, 22, 33}, [4]int{rotations[2].Pair1AID, rotations[2].Pair1BID, rotations[2].Pair2AID, rotations[2].Pair2BID})
}

func TestCalendarService_RegenerateRotations_IncompleteGroup(t *testing.T) {
	group := &models.DayGroup{
		ID: 501, MatchDayID: 1, GroupNumber: 2,
		Player1ID: intPtr(1), Player2ID: intPtr(2), Player3ID: intPtr(3),
	}
	service := NewCalendarService(
		newFakeMatchDayRepo(),
		newFakeDayGroupRepo(group),
		newFakeRotationRepo(),
		newFakePlayerRepo(),
		newFakeCategoryRepo(),
		&fakeTxRunner{},
		testLogger(),
	)

	_, _, err := service.RegenerateRotations(context.Background(), 501)
	assert.ErrorIs(t, err, ErrGroupIncomplete)
}

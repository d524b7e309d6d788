package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padeliga/league-system/models"
)

func playerFixture(t *testing.T, maxPlayers int, existing ...*models.Player) (PlayerService, *fakePlayerRepo) {
	t.Helper()
	category := &models.Category{ID: 10, SeasonID: 1, Name: "Nivel 1", MaxPlayers: maxPlayers}
	playerRepo := newFakePlayerRepo(existing...)
	service := NewPlayerService(playerRepo, newFakeCategoryRepo(category), testLogger())
	return service, playerRepo
}

func TestPlayerService_CreatePlayer(t *testing.T) {
	service, _ := playerFixture(t, 8)

	player, err := service.CreatePlayer(context.Background(), 10, CreatePlayerInput{
		FullName: "  Carlos Ruiz  ",
		Email:    stringPtr("carlos@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Carlos Ruiz", player.FullName)
	assert.False(t, player.WaitingList)
	assert.True(t, player.IsManual())
}

func TestPlayerService_CreatePlayer_LinkedIdentity(t *testing.T) {
	service, playerRepo := playerFixture(t, 8)

	// Идентификаторы внешней auth-платформы — не числа.
	player, err := service.CreatePlayer(context.Background(), 10, CreatePlayerInput{
		FullName:   "Marta Soler",
		AuthUserID: stringPtr("auth0|abc123"),
	})
	require.NoError(t, err)
	assert.False(t, player.IsManual())
	require.NotNil(t, player.AuthUserID)
	assert.Equal(t, "auth0|abc123", *player.AuthUserID)

	stored, err := playerRepo.GetByID(context.Background(), player.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AuthUserID)
	assert.Equal(t, "auth0|abc123", *stored.AuthUserID)
}

func TestPlayerService_CreatePlayer_WaitingListWhenFull(t *testing.T) {
	existing := []*models.Player{
		{ID: 1, CategoryID: 10, FullName: "A"},
		{ID: 2, CategoryID: 10, FullName: "B"},
	}
	service, _ := playerFixture(t, 2, existing...)

	player, err := service.CreatePlayer(context.Background(), 10, CreatePlayerInput{FullName: "C"})
	require.NoError(t, err)
	assert.True(t, player.WaitingList, "player over capacity should land on the waiting list")
}

func TestPlayerService_CreatePlayer_Validation(t *testing.T) {
	service, _ := playerFixture(t, 8)

	_, err := service.CreatePlayer(context.Background(), 10, CreatePlayerInput{FullName: "   "})
	assert.ErrorIs(t, err, ErrPlayerNameRequired)

	_, err = service.CreatePlayer(context.Background(), 99, CreatePlayerInput{FullName: "X"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestPlayerService_DeletePlayer_GuardsMatchHistory(t *testing.T) {
	existing := []*models.Player{{ID: 1, CategoryID: 10, FullName: "A"}}
	service, playerRepo := playerFixture(t, 8, existing...)
	playerRepo.history[1] = true

	err := service.DeletePlayer(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPlayerHasMatchHistory)

	// Игрок остается на месте.
	_, err = playerRepo.GetByID(context.Background(), 1)
	assert.NoError(t, err)
}

func TestPlayerService_DeletePlayer_WithoutHistory(t *testing.T) {
	existing := []*models.Player{{ID: 1, CategoryID: 10, FullName: "A"}}
	service, playerRepo := playerFixture(t, 8, existing...)

	require.NoError(t, service.DeletePlayer(context.Background(), 1))

	_, err := playerRepo.GetByID(context.Background(), 1)
	assert.Error(t, err)
}

func TestPlayerService_PromoteFromWaitingList(t *testing.T) {
	existing := []*models.Player{{ID: 1, CategoryID: 10, FullName: "A", WaitingList: true}}
	service, playerRepo := playerFixture(t, 8, existing...)

	player, err := service.PromoteFromWaitingList(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, player.WaitingList)

	stored, err := playerRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, stored.WaitingList)
}

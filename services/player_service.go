package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, categoryID int, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id int) (*models.Player, error)
	ListPlayersByCategory(ctx context.Context, categoryID int, includeWaitingList bool) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
	PromoteFromWaitingList(ctx context.Context, id int) (*models.Player, error)
}

type CreatePlayerInput struct {
	AuthUserID *string
	FullName   string
	Email      *string
	Phone      *string
}

type UpdatePlayerInput struct {
	FullName models.Optional[string]
	Email    models.Optional[string]
	Phone    models.Optional[string]
}

type playerService struct {
	playerRepo   repositories.PlayerRepository
	categoryRepo repositories.CategoryRepository
	logger       *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, categoryRepo repositories.CategoryRepository, logger *slog.Logger) PlayerService {
	return &playerService{
		playerRepo:   playerRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, categoryID int, input CreatePlayerInput) (*models.Player, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrPlayerNameRequired
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to check category %d: %w", categoryID, err)
	}

	activeCount, err := s.playerRepo.CountActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active players in category %d: %w", categoryID, err)
	}

	player := &models.Player{
		CategoryID: categoryID,
		AuthUserID: input.AuthUserID,
		FullName:   fullName,
		Email:      input.Email,
		Phone:      input.Phone,
		// Категория заполнена — новый игрок попадает в лист ожидания.
		WaitingList: activeCount >= category.MaxPlayers,
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerEmailConflict):
			return nil, ErrPlayerEmailConflict
		case errors.Is(err, repositories.ErrPlayerInvalidCategory):
			return nil, ErrCategoryNotFound
		default:
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
	}

	if player.WaitingList {
		s.logger.InfoContext(ctx, "player added to waiting list",
			slog.Int("player_id", player.ID),
			slog.Int("category_id", categoryID),
		)
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by id %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) ListPlayersByCategory(ctx context.Context, categoryID int, includeWaitingList bool) ([]models.Player, error) {
	players, err := s.playerRepo.ListByCategory(ctx, categoryID, includeWaitingList)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for category %d: %w", categoryID, err)
	}
	if players == nil {
		return []models.Player{}, nil
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName.Set {
		fullName := strings.TrimSpace(input.FullName.Value)
		if input.FullName.Null || fullName == "" {
			return nil, ErrPlayerNameRequired
		}
		player.FullName = fullName
	}
	if input.Email.Set {
		player.Email = input.Email.Ptr()
	}
	if input.Phone.Set {
		player.Phone = input.Phone.Ptr()
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return nil, ErrPlayerNotFound
		case errors.Is(err, repositories.ErrPlayerEmailConflict):
			return nil, ErrPlayerEmailConflict
		default:
			return nil, fmt.Errorf("failed to update player %d: %w", id, err)
		}
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	hasHistory, err := s.playerRepo.HasMatchHistory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check match history for player %d: %w", id, err)
	}
	if hasHistory {
		return ErrPlayerHasMatchHistory
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return nil
}

func (s *playerService) PromoteFromWaitingList(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !player.WaitingList {
		return player, nil
	}

	player.WaitingList = false
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to promote player %d from waiting list: %w", id, err)
	}
	return player, nil
}

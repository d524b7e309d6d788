package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
)

type CourtService interface {
	CreateCourt(ctx context.Context, seasonID int, input CreateCourtInput) (*models.Court, error)
	GetCourtByID(ctx context.Context, id int) (*models.Court, error)
	ListCourtsBySeason(ctx context.Context, seasonID int, onlyActive bool) ([]models.Court, error)
	UpdateCourt(ctx context.Context, id int, input UpdateCourtInput) (*models.Court, error)
	DeactivateCourt(ctx context.Context, id int) error
}

type CreateCourtInput struct {
	Name     string
	Position int
}

type UpdateCourtInput struct {
	Name     models.Optional[string]
	Position models.Optional[int]
	IsActive models.Optional[bool]
}

type courtService struct {
	courtRepo  repositories.CourtRepository
	seasonRepo repositories.SeasonRepository
}

func NewCourtService(courtRepo repositories.CourtRepository, seasonRepo repositories.SeasonRepository) CourtService {
	return &courtService{
		courtRepo:  courtRepo,
		seasonRepo: seasonRepo,
	}
}

func (s *courtService) CreateCourt(ctx context.Context, seasonID int, input CreateCourtInput) (*models.Court, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCourtNameRequired
	}
	if _, err := s.seasonRepo.GetByID(ctx, seasonID); err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to check season %d: %w", seasonID, err)
	}

	court := &models.Court{
		SeasonID: seasonID,
		Name:     name,
		Position: input.Position,
		IsActive: true,
	}
	if err := s.courtRepo.Create(ctx, court); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCourtNameConflict):
			return nil, ErrCourtNameConflict
		case errors.Is(err, repositories.ErrCourtInvalidSeason):
			return nil, ErrSeasonNotFound
		default:
			return nil, fmt.Errorf("failed to create court: %w", err)
		}
	}
	return court, nil
}

func (s *courtService) GetCourtByID(ctx context.Context, id int) (*models.Court, error) {
	court, err := s.courtRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court by id %d: %w", id, err)
	}
	return court, nil
}

func (s *courtService) ListCourtsBySeason(ctx context.Context, seasonID int, onlyActive bool) ([]models.Court, error) {
	courts, err := s.courtRepo.ListBySeason(ctx, seasonID, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for season %d: %w", seasonID, err)
	}
	if courts == nil {
		return []models.Court{}, nil
	}
	return courts, nil
}

func (s *courtService) UpdateCourt(ctx context.Context, id int, input UpdateCourtInput) (*models.Court, error) {
	court, err := s.GetCourtByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name.Set {
		name := strings.TrimSpace(input.Name.Value)
		if input.Name.Null || name == "" {
			return nil, ErrCourtNameRequired
		}
		court.Name = name
	}
	if input.Position.HasValue() {
		court.Position = input.Position.Value
	}
	if input.IsActive.HasValue() {
		court.IsActive = input.IsActive.Value
	}

	if err := s.courtRepo.Update(ctx, court); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCourtNotFound):
			return nil, ErrCourtNotFound
		case errors.Is(err, repositories.ErrCourtNameConflict):
			return nil, ErrCourtNameConflict
		default:
			return nil, fmt.Errorf("failed to update court %d: %w", id, err)
		}
	}
	return court, nil
}

func (s *courtService) DeactivateCourt(ctx context.Context, id int) error {
	if err := s.courtRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return ErrCourtNotFound
		}
		return fmt.Errorf("failed to deactivate court %d: %w", id, err)
	}
	return nil
}

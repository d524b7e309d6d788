package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
)

type SeasonService interface {
	CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.Season, error)
	GetSeasonByID(ctx context.Context, id int) (*models.Season, error)
	ListSeasons(ctx context.Context, filter repositories.ListSeasonsFilter) ([]models.Season, error)
	UpdateSeason(ctx context.Context, id int, input UpdateSeasonInput) (*models.Season, error)
	UpdateSeasonStatus(ctx context.Context, id int, status models.SeasonStatus) (*models.Season, error)
	DeleteSeason(ctx context.Context, id int) error
	ListMatchDayOverrides(ctx context.Context, seasonID int) ([]models.MatchDayOverride, error)
	SetMatchDayOverride(ctx context.Context, seasonID int, input MatchDayOverrideInput) (*models.MatchDayOverride, error)
	// AutoUpdateSeasonStatusesByDates переводит сезоны по датам:
	// registration -> active после registration_end, active -> completed
	// после end_date. Вызывается фоновым тикером из main.
	AutoUpdateSeasonStatusesByDates(ctx context.Context) error
}

type CreateSeasonInput struct {
	Name              string
	Description       *string
	StartDate         time.Time
	EndDate           time.Time
	RegistrationEnd   time.Time
	DefaultCourtCount int
	DefaultTimeSlots  []string
}

type UpdateSeasonInput struct {
	Name              models.Optional[string]
	Description       models.Optional[string]
	StartDate         models.Optional[time.Time]
	EndDate           models.Optional[time.Time]
	RegistrationEnd   models.Optional[time.Time]
	DefaultCourtCount models.Optional[int]
	DefaultTimeSlots  models.Optional[[]string]
}

type MatchDayOverrideInput struct {
	MatchDayNumber int
	MatchDate      *time.Time
	CourtCount     *int
	TimeSlots      []string
}

type seasonService struct {
	seasonRepo repositories.SeasonRepository
	txRunner   repositories.TxRunner
	logger     *slog.Logger
}

func NewSeasonService(seasonRepo repositories.SeasonRepository, txRunner repositories.TxRunner, logger *slog.Logger) SeasonService {
	return &seasonService{
		seasonRepo: seasonRepo,
		txRunner:   txRunner,
		logger:     logger,
	}
}

func validSeasonStatuses() map[models.SeasonStatus]bool {
	return map[models.SeasonStatus]bool{
		models.SeasonStatusDraft:        true,
		models.SeasonStatusRegistration: true,
		models.SeasonStatusActive:       true,
		models.SeasonStatusCompleted:    true,
		models.SeasonStatusCanceled:     true,
	}
}

func validateSeasonDates(start, end, regEnd time.Time) error {
	if !end.After(start) {
		return ErrSeasonInvalidDateRange
	}
	if regEnd.After(end) {
		return ErrSeasonInvalidRegDate
	}
	return nil
}

func normalizeTimeSlots(slots []string) ([]string, error) {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrSeasonNoTimeSlots
	}
	return out, nil
}

func (s *seasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.Season, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSeasonNameRequired
	}
	if err := validateSeasonDates(input.StartDate, input.EndDate, input.RegistrationEnd); err != nil {
		return nil, err
	}
	if input.DefaultCourtCount <= 0 {
		return nil, ErrSeasonInvalidCourtCount
	}
	slots, err := normalizeTimeSlots(input.DefaultTimeSlots)
	if err != nil {
		return nil, err
	}

	season := &models.Season{
		Name:              name,
		Description:       input.Description,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		RegistrationEnd:   input.RegistrationEnd,
		DefaultCourtCount: input.DefaultCourtCount,
		DefaultTimeSlots:  slots,
		Status:            models.SeasonStatusDraft,
	}

	if err := s.seasonRepo.Create(ctx, season); err != nil {
		if errors.Is(err, repositories.ErrSeasonNameConflict) {
			return nil, ErrSeasonNameConflict
		}
		return nil, fmt.Errorf("failed to create season: %w", err)
	}
	return season, nil
}

func (s *seasonService) GetSeasonByID(ctx context.Context, id int) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to get season by id %d: %w", id, err)
	}
	return season, nil
}

func (s *seasonService) ListSeasons(ctx context.Context, filter repositories.ListSeasonsFilter) ([]models.Season, error) {
	seasons, err := s.seasonRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	if seasons == nil {
		return []models.Season{}, nil
	}
	return seasons, nil
}

func (s *seasonService) UpdateSeason(ctx context.Context, id int, input UpdateSeasonInput) (*models.Season, error) {
	season, err := s.GetSeasonByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name.Set {
		name := strings.TrimSpace(input.Name.Value)
		if input.Name.Null || name == "" {
			return nil, ErrSeasonNameRequired
		}
		season.Name = name
	}
	if input.Description.Set {
		season.Description = input.Description.Ptr()
	}
	if input.StartDate.HasValue() {
		season.StartDate = input.StartDate.Value
	}
	if input.EndDate.HasValue() {
		season.EndDate = input.EndDate.Value
	}
	if input.RegistrationEnd.HasValue() {
		season.RegistrationEnd = input.RegistrationEnd.Value
	}
	if err := validateSeasonDates(season.StartDate, season.EndDate, season.RegistrationEnd); err != nil {
		return nil, err
	}
	if input.DefaultCourtCount.HasValue() {
		if input.DefaultCourtCount.Value <= 0 {
			return nil, ErrSeasonInvalidCourtCount
		}
		season.DefaultCourtCount = input.DefaultCourtCount.Value
	}
	if input.DefaultTimeSlots.HasValue() {
		slots, err := normalizeTimeSlots(input.DefaultTimeSlots.Value)
		if err != nil {
			return nil, err
		}
		season.DefaultTimeSlots = slots
	}

	if err := s.seasonRepo.Update(ctx, season); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSeasonNotFound):
			return nil, ErrSeasonNotFound
		case errors.Is(err, repositories.ErrSeasonNameConflict):
			return nil, ErrSeasonNameConflict
		default:
			return nil, fmt.Errorf("failed to update season %d: %w", id, err)
		}
	}
	return season, nil
}

func (s *seasonService) UpdateSeasonStatus(ctx context.Context, id int, status models.SeasonStatus) (*models.Season, error) {
	if !validSeasonStatuses()[status] {
		return nil, ErrSeasonInvalidStatus
	}
	season, err := s.GetSeasonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.seasonRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to update season %d status: %w", id, err)
	}
	season.Status = status
	return season, nil
}

func (s *seasonService) DeleteSeason(ctx context.Context, id int) error {
	err := s.seasonRepo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSeasonNotFound):
			return ErrSeasonNotFound
		case errors.Is(err, repositories.ErrSeasonInUse):
			return repositories.ErrSeasonInUse
		default:
			return fmt.Errorf("failed to delete season %d: %w", id, err)
		}
	}
	return nil
}

func (s *seasonService) ListMatchDayOverrides(ctx context.Context, seasonID int) ([]models.MatchDayOverride, error) {
	if _, err := s.GetSeasonByID(ctx, seasonID); err != nil {
		return nil, err
	}
	overrides, err := s.seasonRepo.ListOverrides(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matchday overrides for season %d: %w", seasonID, err)
	}
	return overrides, nil
}

func (s *seasonService) SetMatchDayOverride(ctx context.Context, seasonID int, input MatchDayOverrideInput) (*models.MatchDayOverride, error) {
	if input.MatchDayNumber <= 0 {
		return nil, ErrValidationFailed
	}
	if _, err := s.GetSeasonByID(ctx, seasonID); err != nil {
		return nil, err
	}
	if input.CourtCount != nil && *input.CourtCount <= 0 {
		return nil, ErrSeasonInvalidCourtCount
	}

	override := &models.MatchDayOverride{
		SeasonID:       seasonID,
		MatchDayNumber: input.MatchDayNumber,
		MatchDate:      input.MatchDate,
		CourtCount:     input.CourtCount,
		TimeSlots:      input.TimeSlots,
	}
	if err := s.seasonRepo.UpsertOverride(ctx, override); err != nil {
		return nil, fmt.Errorf("failed to set matchday override for season %d: %w", seasonID, err)
	}
	return override, nil
}

func (s *seasonService) AutoUpdateSeasonStatusesByDates(ctx context.Context) error {
	now := time.Now()
	return s.txRunner.InTx(ctx, func(exec repositories.SQLExecutor) error {
		seasons, err := s.seasonRepo.GetSeasonsForAutoStatusUpdate(ctx, exec, now)
		if err != nil {
			return fmt.Errorf("failed to fetch seasons for auto status update: %w", err)
		}
		for _, season := range seasons {
			var next models.SeasonStatus
			switch season.Status {
			case models.SeasonStatusRegistration:
				next = models.SeasonStatusActive
			case models.SeasonStatusActive:
				next = models.SeasonStatusCompleted
			default:
				continue
			}
			if err := s.seasonRepo.UpdateStatus(ctx, exec, season.ID, next); err != nil {
				return fmt.Errorf("failed to auto-update season %d status: %w", season.ID, err)
			}
			s.logger.InfoContext(ctx, "season status auto-updated",
				slog.Int("season_id", season.ID),
				slog.String("from", string(season.Status)),
				slog.String("to", string(next)),
			)
		}
		return nil
	})
}

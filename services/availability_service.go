package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
	"github.com/padeliga/league-system/scheduling"
)

type AvailabilityService interface {
	// SetWeeklyAvailability полностью заменяет недельный шаблон игрока в сезоне.
	SetWeeklyAvailability(ctx context.Context, playerID, seasonID int, rows []WeeklyAvailabilityInput) ([]models.WeeklyAvailability, error)
	SetOverride(ctx context.Context, playerID, seasonID int, input AvailabilityOverrideInput) (*models.AvailabilityOverride, error)
	DeleteOverride(ctx context.Context, playerID, seasonID int, date time.Time) error
	GetPlayerAvailability(ctx context.Context, playerID, seasonID int) (*PlayerAvailability, error)
	// CheckSlot возвращает поименную раскладку доступности игроков категории
	// для слота-кандидата (дата + время).
	CheckSlot(ctx context.Context, categoryID, seasonID int, date time.Time, timeSlot string) (*SlotCheck, error)
}

type WeeklyAvailabilityInput struct {
	DayOfWeek int      `json:"day_of_week"`
	TimeSlots []string `json:"time_slots"`
}

type AvailabilityOverrideInput struct {
	Date          time.Time
	TimeSlots     []string
	IsUnavailable bool
	Reason        *string
}

type PlayerAvailability struct {
	Weekly    []models.WeeklyAvailability   `json:"weekly"`
	Overrides []models.AvailabilityOverride `json:"overrides"`
}

type SlotCheck struct {
	Date           time.Time          `json:"date"`
	TimeSlot       string             `json:"time_slot"`
	AvailableCount int                `json:"available_count"`
	TotalCount     int                `json:"total_count"`
	Players        []PlayerSlotStatus `json:"players"`
}

type PlayerSlotStatus struct {
	PlayerID  int    `json:"player_id"`
	FullName  string `json:"full_name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
	playerRepo       repositories.PlayerRepository
	seasonRepo       repositories.SeasonRepository
}

func NewAvailabilityService(
	availabilityRepo repositories.AvailabilityRepository,
	playerRepo repositories.PlayerRepository,
	seasonRepo repositories.SeasonRepository,
) AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		playerRepo:       playerRepo,
		seasonRepo:       seasonRepo,
	}
}

func (s *availabilityService) SetWeeklyAvailability(ctx context.Context, playerID, seasonID int, rows []WeeklyAvailabilityInput) ([]models.WeeklyAvailability, error) {
	weekly := make([]models.WeeklyAvailability, 0, len(rows))
	seen := make(map[int]bool, len(rows))
	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			return nil, ErrInvalidDayOfWeek
		}
		if seen[row.DayOfWeek] {
			return nil, fmt.Errorf("%w: duplicate day_of_week %d", ErrValidationFailed, row.DayOfWeek)
		}
		seen[row.DayOfWeek] = true
		if len(row.TimeSlots) == 0 {
			return nil, ErrEmptyTimeSlots
		}
		weekly = append(weekly, models.WeeklyAvailability{
			DayOfWeek: row.DayOfWeek,
			TimeSlots: row.TimeSlots,
		})
	}

	if err := s.availabilityRepo.ReplaceWeekly(ctx, playerID, seasonID, weekly); err != nil {
		if errors.Is(err, repositories.ErrAvailabilityInvalidRef) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to replace weekly availability for player %d: %w", playerID, err)
	}
	return weekly, nil
}

func (s *availabilityService) SetOverride(ctx context.Context, playerID, seasonID int, input AvailabilityOverrideInput) (*models.AvailabilityOverride, error) {
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidationFailed)
	}
	if !input.IsUnavailable && len(input.TimeSlots) == 0 {
		return nil, ErrEmptyTimeSlots
	}

	override := &models.AvailabilityOverride{
		PlayerID:      playerID,
		SeasonID:      seasonID,
		Date:          input.Date,
		TimeSlots:     input.TimeSlots,
		IsUnavailable: input.IsUnavailable,
		Reason:        input.Reason,
	}
	if override.IsUnavailable {
		override.TimeSlots = nil
	}

	if err := s.availabilityRepo.UpsertOverride(ctx, override); err != nil {
		if errors.Is(err, repositories.ErrAvailabilityInvalidRef) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to upsert availability override for player %d: %w", playerID, err)
	}
	return override, nil
}

func (s *availabilityService) DeleteOverride(ctx context.Context, playerID, seasonID int, date time.Time) error {
	err := s.availabilityRepo.DeleteOverride(ctx, playerID, seasonID, date)
	if err != nil {
		if errors.Is(err, repositories.ErrAvailabilityOverrideMissing) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete availability override for player %d: %w", playerID, err)
	}
	return nil
}

func (s *availabilityService) GetPlayerAvailability(ctx context.Context, playerID, seasonID int) (*PlayerAvailability, error) {
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to check player %d: %w", playerID, err)
	}

	weekly, err := s.availabilityRepo.ListWeeklyForPlayer(ctx, playerID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly availability: %w", err)
	}
	overrides, err := s.availabilityRepo.ListOverridesForPlayer(ctx, playerID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability overrides: %w", err)
	}
	return &PlayerAvailability{Weekly: weekly, Overrides: overrides}, nil
}

func (s *availabilityService) CheckSlot(ctx context.Context, categoryID, seasonID int, date time.Time, timeSlot string) (*SlotCheck, error) {
	players, err := s.playerRepo.ListByCategory(ctx, categoryID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for category %d: %w", categoryID, err)
	}

	weekly, err := s.availabilityRepo.ListWeeklyForSeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly availability for season %d: %w", seasonID, err)
	}
	overrides, err := s.availabilityRepo.ListOverridesForSeasonOnDates(ctx, seasonID, []time.Time{date})
	if err != nil {
		return nil, fmt.Errorf("failed to list availability overrides for season %d: %w", seasonID, err)
	}

	index := scheduling.NewIndex(weekly, overrides)

	check := &SlotCheck{
		Date:       date,
		TimeSlot:   timeSlot,
		TotalCount: len(players),
		Players:    make([]PlayerSlotStatus, 0, len(players)),
	}
	for _, p := range players {
		result := index.Check(p.ID, date, timeSlot)
		if result.Available {
			check.AvailableCount++
		}
		check.Players = append(check.Players, PlayerSlotStatus{
			PlayerID:  p.ID,
			FullName:  p.FullName,
			Available: result.Available,
			Reason:    result.Reason,
		})
	}
	return check, nil
}

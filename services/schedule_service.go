package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
	"github.com/padeliga/league-system/scheduling"
)

// ScheduleBroadcaster — рассылка live-обновлений в комнату сезона.
// Интерфейс выделен, чтобы сервис тестировался без настоящего хаба.
type ScheduleBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type ScheduleService interface {
	// AutoSchedule распределяет четверки тура по слотам (дата, время, корт).
	AutoSchedule(ctx context.Context, seasonID int, input AutoScheduleInput) (*AutoScheduleResult, error)
	// ReassignSlot назначает, переставляет или снимает одну четверку вручную.
	ReassignSlot(ctx context.Context, dayGroupID int, input ReassignInput) (*ReassignResult, error)
}

type AutoScheduleInput struct {
	MatchDayNumber int
	// Необязательный фильтр категорий; пусто — все категории сезона.
	CategoryIDs []int
	// Целевая дата на категорию; иначе дата тура либо переопределение сезона.
	TargetDates map[int]time.Time
	// nil трактуется как true.
	RespectAvailability   *bool
	PreferTimeSlotVariety bool
	StrictMode            bool
}

type AutoScheduleResult struct {
	MatchDayNumber int                       `json:"matchday_number"`
	Assigned       []scheduling.Assignment   `json:"assigned"`
	Skipped        []scheduling.SkippedGroup `json:"skipped"`
	Warnings       []string                  `json:"warnings"`
}

// ReassignInput различает отсутствующие и явно null поля PATCH-тела:
// три значения — назначение, три null — снятие, всё остальное — ошибка.
type ReassignInput struct {
	MatchDate models.Optional[time.Time]
	TimeSlot  models.Optional[string]
	CourtID   models.Optional[int]
}

// Возможные исходы ручного назначения.
const (
	ReassignActionAssigned  = "assigned"
	ReassignActionSwapped   = "swapped"
	ReassignActionDisplaced = "displaced"
	ReassignActionCleared   = "cleared"
)

type ReassignResult struct {
	Action               string           `json:"action"`
	Group                *models.DayGroup `json:"group"`
	DisplacedGroupID     *int             `json:"displaced_group_id,omitempty"`
	DisplacedGroupNumber *int             `json:"displaced_group_number,omitempty"`
}

type scheduleService struct {
	seasonRepo       repositories.SeasonRepository
	courtRepo        repositories.CourtRepository
	categoryRepo     repositories.CategoryRepository
	matchDayRepo     repositories.MatchDayRepository
	dayGroupRepo     repositories.DayGroupRepository
	playerRepo       repositories.PlayerRepository
	availabilityRepo repositories.AvailabilityRepository
	txRunner         repositories.TxRunner
	broadcaster      ScheduleBroadcaster
	logger           *slog.Logger
}

func NewScheduleService(
	seasonRepo repositories.SeasonRepository,
	courtRepo repositories.CourtRepository,
	categoryRepo repositories.CategoryRepository,
	matchDayRepo repositories.MatchDayRepository,
	dayGroupRepo repositories.DayGroupRepository,
	playerRepo repositories.PlayerRepository,
	availabilityRepo repositories.AvailabilityRepository,
	txRunner repositories.TxRunner,
	broadcaster ScheduleBroadcaster,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		seasonRepo:       seasonRepo,
		courtRepo:        courtRepo,
		categoryRepo:     categoryRepo,
		matchDayRepo:     matchDayRepo,
		dayGroupRepo:     dayGroupRepo,
		playerRepo:       playerRepo,
		availabilityRepo: availabilityRepo,
		txRunner:         txRunner,
		broadcaster:      broadcaster,
		logger:           logger,
	}
}

func seasonRoom(seasonID int) string {
	return fmt.Sprintf("season:%d", seasonID)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *scheduleService) AutoSchedule(ctx context.Context, seasonID int, input AutoScheduleInput) (*AutoScheduleResult, error) {
	if input.MatchDayNumber <= 0 {
		return nil, fmt.Errorf("%w: matchday number must be positive", ErrValidationFailed)
	}

	season, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to get season %d: %w", seasonID, err)
	}

	override, err := s.seasonRepo.GetOverride(ctx, seasonID, input.MatchDayNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get matchday override: %w", err)
	}

	courtCount := season.DefaultCourtCount
	timeSlots := []string(season.DefaultTimeSlots)
	if override != nil {
		if override.CourtCount != nil {
			courtCount = *override.CourtCount
		}
		if len(override.TimeSlots) > 0 {
			timeSlots = override.TimeSlots
		}
	}
	if len(timeSlots) == 0 {
		return nil, ErrNoTimeSlots
	}

	var (
		courts    []models.Court
		matchDays []models.MatchDay
		weekly    []models.WeeklyAvailability
	)
	// Независимые чтения — параллельно.
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		courts, err = s.courtRepo.ListBySeason(egCtx, seasonID, true)
		if err != nil {
			return fmt.Errorf("failed to list active courts: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		matchDays, err = s.matchDayRepo.ListBySeasonAndNumber(egCtx, seasonID, input.MatchDayNumber, input.CategoryIDs)
		if err != nil {
			return fmt.Errorf("failed to list matchdays: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		weekly, err = s.availabilityRepo.ListWeeklyForSeason(egCtx, seasonID)
		if err != nil {
			return fmt.Errorf("failed to list weekly availability: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if len(courts) == 0 {
		return nil, ErrNoActiveCourts
	}
	if courtCount > len(courts) {
		courtCount = len(courts)
	}
	courtIDs := make([]int, 0, courtCount)
	for _, c := range courts[:courtCount] {
		courtIDs = append(courtIDs, c.ID)
	}

	if len(matchDays) == 0 {
		return nil, ErrMatchDayNotFound
	}

	result := &AutoScheduleResult{MatchDayNumber: input.MatchDayNumber}

	// Дата каждой категории: явная из запроса, иначе дата тура,
	// иначе переопределение сезона.
	targetByMatchDay := make(map[int]time.Time, len(matchDays))
	dates := make([]time.Time, 0, len(matchDays))
	for _, md := range matchDays {
		var target time.Time
		if d, ok := input.TargetDates[md.CategoryID]; ok {
			target = d
		} else if md.MatchDate != nil {
			target = *md.MatchDate
		} else if override != nil && override.MatchDate != nil {
			target = *override.MatchDate
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Category %d has no target date for matchday %d and was skipped", md.CategoryID, md.Number))
			continue
		}
		targetByMatchDay[md.ID] = target
		dates = append(dates, target)
	}

	matchDayIDs := make([]int, 0, len(targetByMatchDay))
	for id := range targetByMatchDay {
		matchDayIDs = append(matchDayIDs, id)
	}
	if len(matchDayIDs) == 0 {
		return result, nil
	}

	groups, err := s.dayGroupRepo.ListByMatchDayIDs(ctx, matchDayIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list day groups: %w", err)
	}

	overrides, err := s.availabilityRepo.ListOverridesForSeasonOnDates(ctx, seasonID, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability overrides: %w", err)
	}
	index := scheduling.NewIndex(weekly, overrides)

	engineGroups := make([]scheduling.Group, 0, len(groups))
	for _, g := range groups {
		engineGroups = append(engineGroups, scheduling.Group{
			ID:         g.ID,
			Number:     g.GroupNumber,
			PlayerIDs:  g.PlayerIDs(),
			TargetDate: targetByMatchDay[g.MatchDayID],
		})
	}

	respect := true
	if input.RespectAvailability != nil {
		respect = *input.RespectAvailability
	}
	engineResult := scheduling.Assign(index, engineGroups, courtIDs, timeSlots, scheduling.Options{
		RespectAvailability:   respect,
		PreferTimeSlotVariety: input.PreferTimeSlotVariety,
		StrictMode:            input.StrictMode,
	})
	result.Assigned = engineResult.Assigned
	result.Skipped = engineResult.Skipped
	result.Warnings = append(result.Warnings, engineResult.Warnings...)

	// Пакет "снять и назначить заново" — одна транзакция на весь тур.
	err = s.txRunner.InTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, g := range groups {
			if err := s.dayGroupRepo.ClearAssignment(ctx, exec, g.ID); err != nil {
				return fmt.Errorf("failed to clear assignment for group %d: %w", g.ID, err)
			}
		}
		for _, a := range engineResult.Assigned {
			slot := models.SlotRef{MatchDate: a.Date, TimeSlot: a.TimeSlot, CourtID: a.CourtID}
			if err := s.dayGroupRepo.UpdateAssignment(ctx, exec, a.GroupID, slot); err != nil {
				return fmt.Errorf("failed to persist assignment for group %d: %w", a.GroupID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for id, target := range targetByMatchDay {
		t := target
		if err := s.matchDayRepo.UpdateMatchDate(ctx, id, &t); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Failed to update matchday %d date: %v", id, err))
		}
	}

	s.logger.InfoContext(ctx, "auto-schedule completed",
		slog.Int("season_id", seasonID),
		slog.Int("matchday_number", input.MatchDayNumber),
		slog.Int("assigned", len(result.Assigned)),
		slog.Int("skipped", len(result.Skipped)),
	)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(seasonRoom(seasonID), scheduling.WebSocketMessage{
			Type:    scheduling.EventScheduleUpdated,
			Payload: result,
		})
	}
	return result, nil
}

func (s *scheduleService) ReassignSlot(ctx context.Context, dayGroupID int, input ReassignInput) (*ReassignResult, error) {
	set, nulls := 0, 0
	for _, f := range []struct{ set, null bool }{
		{input.MatchDate.Set, input.MatchDate.Null},
		{input.TimeSlot.Set, input.TimeSlot.Null},
		{input.CourtID.Set, input.CourtID.Null},
	} {
		if f.set {
			set++
		}
		if f.null {
			nulls++
		}
	}
	switch {
	case set != 3 || (nulls != 0 && nulls != 3):
		// Пустое тело или частичный слот ничего не меняют.
		return nil, ErrPartialSlotAssignment
	case nulls == 3:
		return s.clearSlot(ctx, dayGroupID)
	}

	// Колонка match_date хранит дату; нормализуем до сравнения слотов,
	// иначе время в метке ломает self-conflict и поиск владельца.
	slot := models.SlotRef{
		MatchDate: truncateToDate(input.MatchDate.Value),
		TimeSlot:  input.TimeSlot.Value,
		CourtID:   input.CourtID.Value,
	}

	var result *ReassignResult
	err := s.txRunner.InTx(ctx, func(exec repositories.SQLExecutor) error {
		group, err := s.dayGroupRepo.GetForUpdate(ctx, exec, dayGroupID)
		if err != nil {
			if errors.Is(err, repositories.ErrDayGroupNotFound) {
				return ErrDayGroupNotFound
			}
			return fmt.Errorf("failed to lock day group %d: %w", dayGroupID, err)
		}

		oldSlot, hadSlot := group.Slot()
		if hadSlot && oldSlot == slot {
			return ErrSlotSelfConflict
		}

		occupant, err := s.dayGroupRepo.FindBySlotForUpdate(ctx, exec, slot)
		if err != nil {
			return fmt.Errorf("failed to check slot occupancy: %w", err)
		}

		switch {
		case occupant == nil:
			if err := s.dayGroupRepo.UpdateAssignment(ctx, exec, group.ID, slot); err != nil {
				return fmt.Errorf("failed to assign group %d: %w", group.ID, err)
			}
			result = &ReassignResult{Action: ReassignActionAssigned}

		case hadSlot:
			// Обе группы назначены — меняем их местами.
			if err := s.dayGroupRepo.UpdateAssignment(ctx, exec, occupant.ID, oldSlot); err != nil {
				return fmt.Errorf("failed to move group %d to old slot: %w", occupant.ID, err)
			}
			if err := s.dayGroupRepo.UpdateAssignment(ctx, exec, group.ID, slot); err != nil {
				return fmt.Errorf("failed to move group %d to new slot: %w", group.ID, err)
			}
			result = &ReassignResult{
				Action:               ReassignActionSwapped,
				DisplacedGroupID:     &occupant.ID,
				DisplacedGroupNumber: &occupant.GroupNumber,
			}

		default:
			// Нашей группе некуда отдать слот — владелец снимается.
			if err := s.dayGroupRepo.ClearAssignment(ctx, exec, occupant.ID); err != nil {
				return fmt.Errorf("failed to clear displaced group %d: %w", occupant.ID, err)
			}
			if err := s.dayGroupRepo.UpdateAssignment(ctx, exec, group.ID, slot); err != nil {
				return fmt.Errorf("failed to assign group %d: %w", group.ID, err)
			}
			result = &ReassignResult{
				Action:               ReassignActionDisplaced,
				DisplacedGroupID:     &occupant.ID,
				DisplacedGroupNumber: &occupant.GroupNumber,
			}
		}

		group.MatchDate = &slot.MatchDate
		group.TimeSlot = &slot.TimeSlot
		group.CourtID = &slot.CourtID
		result.Group = group
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastAssignment(ctx, dayGroupID, result)
	return result, nil
}

func (s *scheduleService) clearSlot(ctx context.Context, dayGroupID int) (*ReassignResult, error) {
	var result *ReassignResult
	err := s.txRunner.InTx(ctx, func(exec repositories.SQLExecutor) error {
		group, err := s.dayGroupRepo.GetForUpdate(ctx, exec, dayGroupID)
		if err != nil {
			if errors.Is(err, repositories.ErrDayGroupNotFound) {
				return ErrDayGroupNotFound
			}
			return fmt.Errorf("failed to lock day group %d: %w", dayGroupID, err)
		}
		if err := s.dayGroupRepo.ClearAssignment(ctx, exec, group.ID); err != nil {
			return fmt.Errorf("failed to clear assignment for group %d: %w", group.ID, err)
		}
		group.MatchDate = nil
		group.TimeSlot = nil
		group.CourtID = nil
		result = &ReassignResult{Action: ReassignActionCleared, Group: group}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastAssignment(ctx, dayGroupID, result)
	return result, nil
}

func (s *scheduleService) broadcastAssignment(ctx context.Context, dayGroupID int, result *ReassignResult) {
	if s.broadcaster == nil || result.Group == nil {
		return
	}
	seasonID, err := s.seasonIDForGroup(ctx, result.Group)
	if err != nil {
		s.logger.Warn("failed to resolve season for broadcast",
			slog.Int("day_group_id", dayGroupID), slog.Any("error", err))
		return
	}
	s.broadcaster.BroadcastToRoom(seasonRoom(seasonID), scheduling.WebSocketMessage{
		Type:    scheduling.EventAssignmentChanged,
		Payload: result,
	})
}

func (s *scheduleService) seasonIDForGroup(ctx context.Context, group *models.DayGroup) (int, error) {
	matchDay, err := s.matchDayRepo.GetByID(ctx, group.MatchDayID)
	if err != nil {
		return 0, err
	}
	category, err := s.categoryRepo.GetByID(ctx, matchDay.CategoryID)
	if err != nil {
		return 0, err
	}
	return category.SeasonID, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
	"github.com/padeliga/league-system/scheduling"
)

type CalendarService interface {
	// GenerateCalendar создает туры 1..N категории и четверки игроков
	// с их ротациями. Повторный вызов для категории с существующим
	// календарем отклоняется.
	GenerateCalendar(ctx context.Context, categoryID int, numMatchDays int) ([]models.MatchDay, error)
	ListMatchDays(ctx context.Context, categoryID int) ([]models.MatchDay, error)
	GetDayGroup(ctx context.Context, dayGroupID int) (*models.DayGroup, error)
	// RegenerateRotations создает три ротации (и их матчи) для четверки;
	// второй результат сообщает, что ротации уже существовали
	// (повторный вызов возвращает их без дублирования).
	RegenerateRotations(ctx context.Context, dayGroupID int) ([]models.Rotation, bool, error)
}

type calendarService struct {
	matchDayRepo repositories.MatchDayRepository
	dayGroupRepo repositories.DayGroupRepository
	rotationRepo repositories.RotationRepository
	playerRepo   repositories.PlayerRepository
	categoryRepo repositories.CategoryRepository
	txRunner     repositories.TxRunner
	logger       *slog.Logger
}

func NewCalendarService(
	matchDayRepo repositories.MatchDayRepository,
	dayGroupRepo repositories.DayGroupRepository,
	rotationRepo repositories.RotationRepository,
	playerRepo repositories.PlayerRepository,
	categoryRepo repositories.CategoryRepository,
	txRunner repositories.TxRunner,
	logger *slog.Logger,
) CalendarService {
	return &calendarService{
		matchDayRepo: matchDayRepo,
		dayGroupRepo: dayGroupRepo,
		rotationRepo: rotationRepo,
		playerRepo:   playerRepo,
		categoryRepo: categoryRepo,
		txRunner:     txRunner,
		logger:       logger,
	}
}

func (s *calendarService) GenerateCalendar(ctx context.Context, categoryID int, numMatchDays int) ([]models.MatchDay, error) {
	if numMatchDays <= 0 {
		return nil, ErrCalendarInvalidRounds
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to check category %d: %w", categoryID, err)
	}

	existing, err := s.matchDayRepo.CountByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to count matchdays for category %d: %w", categoryID, err)
	}
	if existing > 0 {
		return nil, ErrCalendarAlreadyGenerated
	}

	// Только подтвержденные игроки: лист ожидания в календарь не попадает.
	players, err := s.playerRepo.ListByCategory(ctx, categoryID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for category %d: %w", categoryID, err)
	}
	if len(players) < 4 {
		return nil, ErrCalendarNotEnoughPlayers
	}
	if len(players)%4 != 0 {
		return nil, ErrCalendarPlayerCount
	}

	matchDays := make([]models.MatchDay, 0, numMatchDays)
	err = s.txRunner.InTx(ctx, func(exec repositories.SQLExecutor) error {
		for number := 1; number <= numMatchDays; number++ {
			matchDay := models.MatchDay{
				CategoryID: categoryID,
				Number:     number,
			}
			if err := s.matchDayRepo.Create(ctx, exec, &matchDay); err != nil {
				return fmt.Errorf("failed to create matchday %d: %w", number, err)
			}

			for g := 0; g*4 < len(players); g++ {
				four := players[g*4 : g*4+4]
				group := models.DayGroup{
					MatchDayID:  matchDay.ID,
					GroupNumber: g + 1,
					Player1ID:   &four[0].ID,
					Player2ID:   &four[1].ID,
					Player3ID:   &four[2].ID,
					Player4ID:   &four[3].ID,
				}
				if err := s.dayGroupRepo.Create(ctx, exec, &group); err != nil {
					return fmt.Errorf("failed to create day group %d for matchday %d: %w", g+1, number, err)
				}
				if err := s.createRotations(ctx, exec, &group); err != nil {
					return err
				}
				matchDay.Groups = append(matchDay.Groups, group)
			}
			matchDays = append(matchDays, matchDay)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "calendar generated",
		slog.Int("category_id", categoryID),
		slog.Int("matchdays", numMatchDays),
		slog.Int("players", len(players)),
	)
	return matchDays, nil
}

func (s *calendarService) createRotations(ctx context.Context, exec repositories.SQLExecutor, group *models.DayGroup) error {
	pairings, err := scheduling.BuildRotations(group.PlayerIDs())
	if err != nil {
		return fmt.Errorf("failed to build rotations for group %d: %w", group.GroupNumber, err)
	}
	for _, p := range pairings {
		rotation := models.Rotation{
			DayGroupID: group.ID,
			Number:     p.Number,
			Pair1AID:   p.PairA[0],
			Pair1BID:   p.PairA[1],
			Pair2AID:   p.PairB[0],
			Pair2BID:   p.PairB[1],
		}
		if err := s.rotationRepo.Create(ctx, exec, &rotation); err != nil {
			return fmt.Errorf("failed to create rotation %d for group %d: %w", p.Number, group.ID, err)
		}
		group.Rotations = append(group.Rotations, rotation)
	}
	return nil
}

func (s *calendarService) ListMatchDays(ctx context.Context, categoryID int) ([]models.MatchDay, error) {
	matchDays, err := s.matchDayRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matchdays for category %d: %w", categoryID, err)
	}
	if len(matchDays) == 0 {
		return []models.MatchDay{}, nil
	}

	ids := make([]int, 0, len(matchDays))
	byID := make(map[int]*models.MatchDay, len(matchDays))
	for i := range matchDays {
		ids = append(ids, matchDays[i].ID)
		byID[matchDays[i].ID] = &matchDays[i]
	}

	groups, err := s.dayGroupRepo.ListByMatchDayIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list day groups: %w", err)
	}
	for _, group := range groups {
		if md, ok := byID[group.MatchDayID]; ok {
			md.Groups = append(md.Groups, group)
		}
	}
	return matchDays, nil
}

func (s *calendarService) GetDayGroup(ctx context.Context, dayGroupID int) (*models.DayGroup, error) {
	group, err := s.dayGroupRepo.GetByID(ctx, dayGroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrDayGroupNotFound) {
			return nil, ErrDayGroupNotFound
		}
		return nil, fmt.Errorf("failed to get day group %d: %w", dayGroupID, err)
	}

	if ids := group.PlayerIDs(); len(ids) > 0 {
		players, err := s.playerRepo.ListByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load players for day group %d: %w", dayGroupID, err)
		}
		group.Players = players
	}

	rotations, err := s.rotationRepo.ListByGroup(ctx, dayGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rotations for day group %d: %w", dayGroupID, err)
	}
	group.Rotations = rotations
	return group, nil
}

func (s *calendarService) RegenerateRotations(ctx context.Context, dayGroupID int) ([]models.Rotation, bool, error) {
	group, err := s.dayGroupRepo.GetByID(ctx, dayGroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrDayGroupNotFound) {
			return nil, false, ErrDayGroupNotFound
		}
		return nil, false, fmt.Errorf("failed to get day group %d: %w", dayGroupID, err)
	}

	exists, err := s.rotationRepo.ExistsForGroup(ctx, dayGroupID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check rotations for day group %d: %w", dayGroupID, err)
	}
	if exists {
		// Идемпотентность: повторный вызов не плодит дубликаты,
		// но сообщает вызывающему, что ротации уже были.
		rotations, err := s.rotationRepo.ListByGroup(ctx, dayGroupID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load rotations for day group %d: %w", dayGroupID, err)
		}
		return rotations, true, nil
	}

	if len(group.PlayerIDs()) != 4 {
		return nil, false, ErrGroupIncomplete
	}

	err = s.txRunner.InTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.createRotations(ctx, exec, group)
	})
	if err != nil {
		return nil, false, err
	}
	return group.Rotations, false, nil
}

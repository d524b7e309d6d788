package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/padeliga/league-system/models"
)

var (
	ErrDayGroupNotFound     = errors.New("day group not found")
	ErrDayGroupSlotOccupied = errors.New("slot already occupied by another day group")
	ErrDayGroupInvalidRef   = errors.New("invalid matchday/player/court reference")
)

type DayGroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.DayGroup) error
	GetByID(ctx context.Context, id int) (*models.DayGroup, error)
	ListByMatchDayIDs(ctx context.Context, matchDayIDs []int) ([]models.DayGroup, error)
	// GetForUpdate читает группу с блокировкой строки (SELECT ... FOR UPDATE);
	// вызывается только внутри транзакции.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.DayGroup, error)
	// FindBySlotForUpdate возвращает текущего владельца слота с блокировкой
	// строки либо nil, если слот свободен.
	FindBySlotForUpdate(ctx context.Context, exec SQLExecutor, slot models.SlotRef) (*models.DayGroup, error)
	UpdateAssignment(ctx context.Context, exec SQLExecutor, id int, slot models.SlotRef) error
	ClearAssignment(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresDayGroupRepository struct {
	db *sql.DB
}

func NewPostgresDayGroupRepository(db *sql.DB) DayGroupRepository {
	return &postgresDayGroupRepository{db: db}
}

func (r *postgresDayGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const dayGroupColumns = `
	id, matchday_id, group_number, player1_id, player2_id, player3_id, player4_id,
	match_date, time_slot, court_id, created_at`

func scanDayGroup(row interface{ Scan(dest ...interface{}) error }, g *models.DayGroup) error {
	return row.Scan(
		&g.ID, &g.MatchDayID, &g.GroupNumber,
		&g.Player1ID, &g.Player2ID, &g.Player3ID, &g.Player4ID,
		&g.MatchDate, &g.TimeSlot, &g.CourtID, &g.CreatedAt,
	)
}

func (r *postgresDayGroupRepository) Create(ctx context.Context, exec SQLExecutor, g *models.DayGroup) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO day_groups (matchday_id, group_number, player1_id, player2_id, player3_id, player4_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		g.MatchDayID, g.GroupNumber, g.Player1ID, g.Player2ID, g.Player3ID, g.Player4ID,
	).Scan(&g.ID, &g.CreatedAt)
	return r.handleDayGroupError(err)
}

func (r *postgresDayGroupRepository) GetByID(ctx context.Context, id int) (*models.DayGroup, error) {
	query := `SELECT ` + dayGroupColumns + ` FROM day_groups WHERE id = $1`

	g := &models.DayGroup{}
	if err := scanDayGroup(r.db.QueryRowContext(ctx, query, id), g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDayGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan day group %d: %w", id, err)
	}
	return g, nil
}

func (r *postgresDayGroupRepository) ListByMatchDayIDs(ctx context.Context, matchDayIDs []int) ([]models.DayGroup, error) {
	if len(matchDayIDs) == 0 {
		return []models.DayGroup{}, nil
	}
	query := `SELECT ` + dayGroupColumns + `
		FROM day_groups
		WHERE matchday_id = ANY($1)
		ORDER BY matchday_id ASC, group_number ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(matchDayIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query day groups: %w", err)
	}
	defer rows.Close()

	groups := make([]models.DayGroup, 0)
	for rows.Next() {
		var g models.DayGroup
		if scanErr := scanDayGroup(rows, &g); scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *postgresDayGroupRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.DayGroup, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + dayGroupColumns + ` FROM day_groups WHERE id = $1 FOR UPDATE`

	g := &models.DayGroup{}
	if err := scanDayGroup(executor.QueryRowContext(ctx, query, id), g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDayGroupNotFound
		}
		return nil, fmt.Errorf("failed to lock day group %d: %w", id, err)
	}
	return g, nil
}

func (r *postgresDayGroupRepository) FindBySlotForUpdate(ctx context.Context, exec SQLExecutor, slot models.SlotRef) (*models.DayGroup, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + dayGroupColumns + `
		FROM day_groups
		WHERE match_date = $1 AND time_slot = $2 AND court_id = $3
		FOR UPDATE`

	g := &models.DayGroup{}
	err := scanDayGroup(executor.QueryRowContext(ctx, query, slot.MatchDate, slot.TimeSlot, slot.CourtID), g)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Слот свободен.
		}
		return nil, fmt.Errorf("failed to lock slot occupant: %w", err)
	}
	return g, nil
}

func (r *postgresDayGroupRepository) UpdateAssignment(ctx context.Context, exec SQLExecutor, id int, slot models.SlotRef) error {
	executor := r.getExecutor(exec)
	query := `UPDATE day_groups SET match_date = $1, time_slot = $2, court_id = $3 WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, truncateToDate(slot.MatchDate), slot.TimeSlot, slot.CourtID, id)
	if err != nil {
		return r.handleDayGroupError(err)
	}
	return checkAffectedRows(result, ErrDayGroupNotFound)
}

func (r *postgresDayGroupRepository) ClearAssignment(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE day_groups SET match_date = NULL, time_slot = NULL, court_id = NULL WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDayGroupNotFound)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *postgresDayGroupRepository) handleDayGroupError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			// Частичный уникальный индекс по (match_date, time_slot, court_id) —
			// страховка от двойного бронирования на уровне БД.
			if pqErr.Constraint == "day_groups_slot_key" {
				return ErrDayGroupSlotOccupied
			}
		case "23503":
			return ErrDayGroupInvalidRef
		}
	}
	return err
}

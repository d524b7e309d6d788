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
	ErrMatchDayNotFound      = errors.New("matchday not found")
	ErrMatchDayNumberTaken   = errors.New("matchday number already exists for this category")
	ErrMatchDayInvalidParent = errors.New("invalid category reference")
)

type MatchDayRepository interface {
	Create(ctx context.Context, exec SQLExecutor, matchDay *models.MatchDay) error
	GetByID(ctx context.Context, id int) (*models.MatchDay, error)
	ListByCategory(ctx context.Context, categoryID int) ([]models.MatchDay, error)
	// ListBySeasonAndNumber возвращает туры с указанным номером по всем
	// категориям сезона (опционально суженным до categoryIDs).
	ListBySeasonAndNumber(ctx context.Context, seasonID, number int, categoryIDs []int) ([]models.MatchDay, error)
	CountByCategory(ctx context.Context, categoryID int) (int, error)
	UpdateMatchDate(ctx context.Context, id int, matchDate *time.Time) error
}

type postgresMatchDayRepository struct {
	db *sql.DB
}

func NewPostgresMatchDayRepository(db *sql.DB) MatchDayRepository {
	return &postgresMatchDayRepository{db: db}
}

func (r *postgresMatchDayRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchDayColumns = `id, category_id, number, match_date, created_at`

func scanMatchDay(row interface{ Scan(dest ...interface{}) error }, m *models.MatchDay) error {
	return row.Scan(&m.ID, &m.CategoryID, &m.Number, &m.MatchDate, &m.CreatedAt)
}

func (r *postgresMatchDayRepository) Create(ctx context.Context, exec SQLExecutor, m *models.MatchDay) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matchdays (category_id, number, match_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, m.CategoryID, m.Number, m.MatchDate).
		Scan(&m.ID, &m.CreatedAt)
	return r.handleMatchDayError(err)
}

func (r *postgresMatchDayRepository) GetByID(ctx context.Context, id int) (*models.MatchDay, error) {
	query := `SELECT ` + matchDayColumns + ` FROM matchdays WHERE id = $1`

	m := &models.MatchDay{}
	if err := scanMatchDay(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchDayNotFound
		}
		return nil, fmt.Errorf("failed to scan matchday %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchDayRepository) ListByCategory(ctx context.Context, categoryID int) ([]models.MatchDay, error) {
	query := `SELECT ` + matchDayColumns + ` FROM matchdays WHERE category_id = $1 ORDER BY number ASC`

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchdays for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	return collectMatchDays(rows)
}

func (r *postgresMatchDayRepository) ListBySeasonAndNumber(ctx context.Context, seasonID, number int, categoryIDs []int) ([]models.MatchDay, error) {
	query := `
		SELECT m.id, m.category_id, m.number, m.match_date, m.created_at
		FROM matchdays m
		JOIN categories c ON c.id = m.category_id
		WHERE c.season_id = $1 AND m.number = $2`
	args := []interface{}{seasonID, number}

	if len(categoryIDs) > 0 {
		query += ` AND m.category_id = ANY($3)`
		args = append(args, pq.Array(categoryIDs))
	}
	query += ` ORDER BY m.category_id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchdays for season %d number %d: %w", seasonID, number, err)
	}
	defer rows.Close()

	return collectMatchDays(rows)
}

func collectMatchDays(rows *sql.Rows) ([]models.MatchDay, error) {
	matchDays := make([]models.MatchDay, 0)
	for rows.Next() {
		var m models.MatchDay
		if scanErr := scanMatchDay(rows, &m); scanErr != nil {
			return nil, scanErr
		}
		matchDays = append(matchDays, m)
	}
	return matchDays, rows.Err()
}

func (r *postgresMatchDayRepository) CountByCategory(ctx context.Context, categoryID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matchdays WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matchdays for category %d: %w", categoryID, err)
	}
	return count, nil
}

func (r *postgresMatchDayRepository) UpdateMatchDate(ctx context.Context, id int, matchDate *time.Time) error {
	query := `UPDATE matchdays SET match_date = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, matchDate, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchDayNotFound)
}

func (r *postgresMatchDayRepository) handleMatchDayError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "matchdays_category_id_number_key" {
				return ErrMatchDayNumberTaken
			}
		case "23503":
			return ErrMatchDayInvalidParent
		}
	}
	return err
}

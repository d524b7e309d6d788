package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/padeliga/league-system/models"
)

var (
	ErrCourtNotFound      = errors.New("court not found")
	ErrCourtNameConflict  = errors.New("court name conflict for this season")
	ErrCourtInvalidSeason = errors.New("invalid season reference")
)

type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	GetByID(ctx context.Context, id int) (*models.Court, error)
	ListBySeason(ctx context.Context, seasonID int, onlyActive bool) ([]models.Court, error)
	Update(ctx context.Context, court *models.Court) error
	// Deactivate — мягкое удаление: корт сохраняется ради исторических ссылок.
	Deactivate(ctx context.Context, id int) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

const courtColumns = `id, season_id, name, position, is_active, created_at`

func scanCourt(row interface{ Scan(dest ...interface{}) error }, c *models.Court) error {
	return row.Scan(&c.ID, &c.SeasonID, &c.Name, &c.Position, &c.IsActive, &c.CreatedAt)
}

func (r *postgresCourtRepository) Create(ctx context.Context, c *models.Court) error {
	query := `
		INSERT INTO courts (season_id, name, position, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, is_active, created_at`

	err := r.db.QueryRowContext(ctx, query, c.SeasonID, c.Name, c.Position).
		Scan(&c.ID, &c.IsActive, &c.CreatedAt)
	return r.handleCourtError(err)
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, id int) (*models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE id = $1`

	c := &models.Court{}
	if err := scanCourt(r.db.QueryRowContext(ctx, query, id), c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to scan court %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresCourtRepository) ListBySeason(ctx context.Context, seasonID int, onlyActive bool) ([]models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE season_id = $1`
	if onlyActive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY position ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	courts := make([]models.Court, 0)
	for rows.Next() {
		var c models.Court
		if scanErr := scanCourt(rows, &c); scanErr != nil {
			return nil, scanErr
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (r *postgresCourtRepository) Update(ctx context.Context, c *models.Court) error {
	query := `UPDATE courts SET name = $1, position = $2, is_active = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, c.Name, c.Position, c.IsActive, c.ID)
	if err != nil {
		return r.handleCourtError(err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) Deactivate(ctx context.Context, id int) error {
	query := `UPDATE courts SET is_active = FALSE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) handleCourtError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "courts_season_id_name_key" {
				return ErrCourtNameConflict
			}
		case "23503":
			if pqErr.Constraint == "courts_season_id_fkey" {
				return ErrCourtInvalidSeason
			}
		}
	}
	return err
}

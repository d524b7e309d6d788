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
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryNameConflict  = errors.New("category name conflict for this season")
	ErrCategoryInvalidSeason = errors.New("invalid season reference")
	ErrCategoryInUse         = errors.New("category is in use (players/matchdays exist)")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	ListBySeason(ctx context.Context, seasonID int) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	UpdatePosterKey(ctx context.Context, categoryID int, posterKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

const categoryColumns = `id, season_id, name, max_players, playoff_size, playoff_format, poster_key, created_at`

func scanCategory(row interface{ Scan(dest ...interface{}) error }, c *models.Category) error {
	return row.Scan(&c.ID, &c.SeasonID, &c.Name, &c.MaxPlayers, &c.PlayoffSize, &c.PlayoffFormat, &c.PosterKey, &c.CreatedAt)
}

func (r *postgresCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (season_id, name, max_players, playoff_size, playoff_format)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.SeasonID, c.Name, c.MaxPlayers, c.PlayoffSize, c.PlayoffFormat,
	).Scan(&c.ID, &c.CreatedAt)
	return r.handleCategoryError(err)
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c := &models.Category{}
	if err := scanCategory(r.db.QueryRowContext(ctx, query, id), c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to scan category %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresCategoryRepository) ListBySeason(ctx context.Context, seasonID int) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE season_id = $1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if scanErr := scanCategory(rows, &c); scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories SET
			name = $1,
			max_players = $2,
			playoff_size = $3,
			playoff_format = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, c.Name, c.MaxPlayers, c.PlayoffSize, c.PlayoffFormat, c.ID)
	if err != nil {
		return r.handleCategoryError(err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) UpdatePosterKey(ctx context.Context, categoryID int, posterKey *string) error {
	query := `UPDATE categories SET poster_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, posterKey, categoryID)
	if err != nil {
		return fmt.Errorf("failed to update category poster key: %w", err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM categories WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleCategoryError(err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) handleCategoryError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "categories_season_id_name_key" {
				return ErrCategoryNameConflict
			}
		case "23503":
			if pqErr.Constraint == "categories_season_id_fkey" {
				return ErrCategoryInvalidSeason
			}
			return ErrCategoryInUse
		}
	}
	return err
}

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
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPlayerEmailConflict   = errors.New("player email already registered in this category")
	ErrPlayerInvalidCategory = errors.New("invalid category reference")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByCategory(ctx context.Context, categoryID int, includeWaitingList bool) ([]models.Player, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
	CountActiveByCategory(ctx context.Context, categoryID int) (int, error)
	HasMatchHistory(ctx context.Context, playerID int) (bool, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, category_id, auth_user_id, full_name, email, phone, waiting_list, created_at`

func scanPlayer(row interface{ Scan(dest ...interface{}) error }, p *models.Player) error {
	return row.Scan(&p.ID, &p.CategoryID, &p.AuthUserID, &p.FullName, &p.Email, &p.Phone, &p.WaitingList, &p.CreatedAt)
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (category_id, auth_user_id, full_name, email, phone, waiting_list)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.CategoryID, p.AuthUserID, p.FullName, p.Email, p.Phone, p.WaitingList,
	).Scan(&p.ID, &p.CreatedAt)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p := &models.Player{}
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByCategory(ctx context.Context, categoryID int, includeWaitingList bool) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE category_id = $1`
	if !includeWaitingList {
		query += ` AND waiting_list = FALSE`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	if len(ids) == 0 {
		return []models.Player{}, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query players by ids: %w", err)
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func collectPlayers(rows *sql.Rows) ([]models.Player, error) {
	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := scanPlayer(rows, &p); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players SET
			auth_user_id = $1,
			full_name = $2,
			email = $3,
			phone = $4,
			waiting_list = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query, p.AuthUserID, p.FullName, p.Email, p.Phone, p.WaitingList, p.ID)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) CountActiveByCategory(ctx context.Context, categoryID int) (int, error) {
	query := `SELECT COUNT(*) FROM players WHERE category_id = $1 AND waiting_list = FALSE`
	var count int
	if err := r.db.QueryRowContext(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players for category %d: %w", categoryID, err)
	}
	return count, nil
}

// HasMatchHistory сообщает, участвует ли игрок хотя бы в одной ротации.
// Используется как защита от удаления игрока с историей матчей.
func (r *postgresPlayerRepository) HasMatchHistory(ctx context.Context, playerID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM rotations
			WHERE pair1_a_id = $1 OR pair1_b_id = $1 OR pair2_a_id = $1 OR pair2_b_id = $1
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, playerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check match history for player %d: %w", playerID, err)
	}
	return exists, nil
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "players_category_id_email_key" {
				return ErrPlayerEmailConflict
			}
		case "23503":
			if pqErr.Constraint == "players_category_id_fkey" {
				return ErrPlayerInvalidCategory
			}
		}
	}
	return err
}

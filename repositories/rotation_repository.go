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
	ErrRotationNotFound   = errors.New("rotation not found")
	ErrRotationConflict   = errors.New("rotation number already exists for this day group")
	ErrRotationInvalidRef = errors.New("invalid day group/player reference")
)

type RotationRepository interface {
	// Create сохраняет ротацию и сразу создает ее матч; вызывается внутри
	// транзакции регенерации ротаций.
	Create(ctx context.Context, exec SQLExecutor, rotation *models.Rotation) error
	ExistsForGroup(ctx context.Context, dayGroupID int) (bool, error)
	ListByGroup(ctx context.Context, dayGroupID int) ([]models.Rotation, error)
}

type postgresRotationRepository struct {
	db *sql.DB
}

func NewPostgresRotationRepository(db *sql.DB) RotationRepository {
	return &postgresRotationRepository{db: db}
}

func (r *postgresRotationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRotationRepository) Create(ctx context.Context, exec SQLExecutor, rot *models.Rotation) error {
	executor := r.getExecutor(exec)

	query := `
		INSERT INTO rotations (day_group_id, number, pair1_a_id, pair1_b_id, pair2_a_id, pair2_b_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		rot.DayGroupID, rot.Number, rot.Pair1AID, rot.Pair1BID, rot.Pair2AID, rot.Pair2BID,
	).Scan(&rot.ID, &rot.CreatedAt)
	if err != nil {
		return r.handleRotationError(err)
	}

	match := &models.Match{RotationID: rot.ID, Status: models.MatchStatusScheduled}
	err = executor.QueryRowContext(ctx,
		`INSERT INTO matches (rotation_id, status) VALUES ($1, $2) RETURNING id, created_at`,
		match.RotationID, match.Status,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match for rotation %d: %w", rot.ID, err)
	}
	rot.Match = match
	return nil
}

func (r *postgresRotationRepository) ExistsForGroup(ctx context.Context, dayGroupID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM rotations WHERE day_group_id = $1)`, dayGroupID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check rotations for day group %d: %w", dayGroupID, err)
	}
	return exists, nil
}

func (r *postgresRotationRepository) ListByGroup(ctx context.Context, dayGroupID int) ([]models.Rotation, error) {
	query := `
		SELECT r.id, r.day_group_id, r.number,
		       r.pair1_a_id, r.pair1_b_id, r.pair2_a_id, r.pair2_b_id, r.created_at,
		       m.id, m.rotation_id, m.score, m.status, m.winning_pair, m.created_at
		FROM rotations r
		JOIN matches m ON m.rotation_id = r.id
		WHERE r.day_group_id = $1
		ORDER BY r.number ASC`

	rows, err := r.db.QueryContext(ctx, query, dayGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rotations for day group %d: %w", dayGroupID, err)
	}
	defer rows.Close()

	rotations := make([]models.Rotation, 0, 3)
	for rows.Next() {
		var rot models.Rotation
		var match models.Match
		if scanErr := rows.Scan(
			&rot.ID, &rot.DayGroupID, &rot.Number,
			&rot.Pair1AID, &rot.Pair1BID, &rot.Pair2AID, &rot.Pair2BID, &rot.CreatedAt,
			&match.ID, &match.RotationID, &match.Score, &match.Status, &match.WinningPair, &match.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		rot.Match = &match
		rotations = append(rotations, rot)
	}
	return rotations, rows.Err()
}

func (r *postgresRotationRepository) handleRotationError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "rotations_day_group_id_number_key" {
				return ErrRotationConflict
			}
		case "23503":
			return ErrRotationInvalidRef
		}
	}
	return err
}

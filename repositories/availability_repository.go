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
	ErrAvailabilityInvalidRef      = errors.New("invalid player/season reference")
	ErrAvailabilityOverrideMissing = errors.New("availability override not found")
)

type AvailabilityRepository interface {
	// ReplaceWeekly атомарно заменяет недельный шаблон игрока в сезоне.
	ReplaceWeekly(ctx context.Context, playerID, seasonID int, rows []models.WeeklyAvailability) error
	ListWeeklyForPlayer(ctx context.Context, playerID, seasonID int) ([]models.WeeklyAvailability, error)
	ListWeeklyForSeason(ctx context.Context, seasonID int) ([]models.WeeklyAvailability, error)
	UpsertOverride(ctx context.Context, override *models.AvailabilityOverride) error
	DeleteOverride(ctx context.Context, playerID, seasonID int, date time.Time) error
	ListOverridesForPlayer(ctx context.Context, playerID, seasonID int) ([]models.AvailabilityOverride, error)
	// ListOverridesForSeasonOnDates возвращает все исключения сезона на
	// указанные даты — вход для построения индекса доступности.
	ListOverridesForSeasonOnDates(ctx context.Context, seasonID int, dates []time.Time) ([]models.AvailabilityOverride, error)
}

type postgresAvailabilityRepository struct {
	db *sql.DB
}

func NewPostgresAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &postgresAvailabilityRepository{db: db}
}

func (r *postgresAvailabilityRepository) ReplaceWeekly(ctx context.Context, playerID, seasonID int, weekly []models.WeeklyAvailability) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM player_weekly_availability WHERE player_id = $1 AND season_id = $2`,
		playerID, seasonID,
	); err != nil {
		return fmt.Errorf("failed to clear weekly availability: %w", err)
	}

	for i := range weekly {
		w := &weekly[i]
		w.PlayerID = playerID
		w.SeasonID = seasonID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO player_weekly_availability (player_id, season_id, day_of_week, time_slots)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			w.PlayerID, w.SeasonID, w.DayOfWeek, pq.Array(w.TimeSlots),
		).Scan(&w.ID)
		if err != nil {
			return r.handleAvailabilityError(err)
		}
	}
	return tx.Commit()
}

func (r *postgresAvailabilityRepository) ListWeeklyForPlayer(ctx context.Context, playerID, seasonID int) ([]models.WeeklyAvailability, error) {
	query := `
		SELECT id, player_id, season_id, day_of_week, time_slots
		FROM player_weekly_availability
		WHERE player_id = $1 AND season_id = $2
		ORDER BY day_of_week ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly availability: %w", err)
	}
	defer rows.Close()

	return collectWeekly(rows)
}

func (r *postgresAvailabilityRepository) ListWeeklyForSeason(ctx context.Context, seasonID int) ([]models.WeeklyAvailability, error) {
	query := `
		SELECT id, player_id, season_id, day_of_week, time_slots
		FROM player_weekly_availability
		WHERE season_id = $1
		ORDER BY player_id ASC, day_of_week ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly availability for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	return collectWeekly(rows)
}

func collectWeekly(rows *sql.Rows) ([]models.WeeklyAvailability, error) {
	weekly := make([]models.WeeklyAvailability, 0)
	for rows.Next() {
		var w models.WeeklyAvailability
		if err := rows.Scan(&w.ID, &w.PlayerID, &w.SeasonID, &w.DayOfWeek, pq.Array(&w.TimeSlots)); err != nil {
			return nil, err
		}
		weekly = append(weekly, w)
	}
	return weekly, rows.Err()
}

func (r *postgresAvailabilityRepository) UpsertOverride(ctx context.Context, o *models.AvailabilityOverride) error {
	query := `
		INSERT INTO player_availability_overrides (player_id, season_id, date, time_slots, is_unavailable, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player_id, season_id, date)
		DO UPDATE SET time_slots = EXCLUDED.time_slots,
		              is_unavailable = EXCLUDED.is_unavailable,
		              reason = EXCLUDED.reason
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		o.PlayerID, o.SeasonID, o.Date, pq.Array(o.TimeSlots), o.IsUnavailable, o.Reason,
	).Scan(&o.ID)
	return r.handleAvailabilityError(err)
}

func (r *postgresAvailabilityRepository) DeleteOverride(ctx context.Context, playerID, seasonID int, date time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM player_availability_overrides WHERE player_id = $1 AND season_id = $2 AND date = $3`,
		playerID, seasonID, date,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAvailabilityOverrideMissing)
}

func (r *postgresAvailabilityRepository) ListOverridesForPlayer(ctx context.Context, playerID, seasonID int) ([]models.AvailabilityOverride, error) {
	query := `
		SELECT id, player_id, season_id, date, time_slots, is_unavailable, reason
		FROM player_availability_overrides
		WHERE player_id = $1 AND season_id = $2
		ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability overrides: %w", err)
	}
	defer rows.Close()

	return collectOverrides(rows)
}

func (r *postgresAvailabilityRepository) ListOverridesForSeasonOnDates(ctx context.Context, seasonID int, dates []time.Time) ([]models.AvailabilityOverride, error) {
	if len(dates) == 0 {
		return []models.AvailabilityOverride{}, nil
	}
	query := `
		SELECT id, player_id, season_id, date, time_slots, is_unavailable, reason
		FROM player_availability_overrides
		WHERE season_id = $1 AND date = ANY($2)
		ORDER BY player_id ASC, date ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID, pq.Array(dates))
	if err != nil {
		return nil, fmt.Errorf("failed to query availability overrides for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	return collectOverrides(rows)
}

func collectOverrides(rows *sql.Rows) ([]models.AvailabilityOverride, error) {
	overrides := make([]models.AvailabilityOverride, 0)
	for rows.Next() {
		var o models.AvailabilityOverride
		if err := rows.Scan(&o.ID, &o.PlayerID, &o.SeasonID, &o.Date, pq.Array(&o.TimeSlots), &o.IsUnavailable, &o.Reason); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *postgresAvailabilityRepository) handleAvailabilityError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrAvailabilityInvalidRef
	}
	return err
}

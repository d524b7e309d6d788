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
	ErrSeasonNotFound     = errors.New("season not found")
	ErrSeasonNameConflict = errors.New("season name conflict")
	ErrSeasonInUse        = errors.New("season is in use (categories/courts exist)")
)

type ListSeasonsFilter struct {
	Status *models.SeasonStatus
	Limit  int
	Offset int
}

type SeasonRepository interface {
	Create(ctx context.Context, season *models.Season) error
	GetByID(ctx context.Context, id int) (*models.Season, error)
	List(ctx context.Context, filter ListSeasonsFilter) ([]models.Season, error)
	Update(ctx context.Context, season *models.Season) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.SeasonStatus) error
	Delete(ctx context.Context, id int) error
	ListOverrides(ctx context.Context, seasonID int) ([]models.MatchDayOverride, error)
	GetOverride(ctx context.Context, seasonID, matchDayNumber int) (*models.MatchDayOverride, error)
	UpsertOverride(ctx context.Context, override *models.MatchDayOverride) error
	GetSeasonsForAutoStatusUpdate(ctx context.Context, exec SQLExecutor, currentTime time.Time) ([]*models.Season, error)
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const seasonColumns = `
	id, name, description, start_date, end_date, registration_end,
	default_court_count, default_time_slots, status, created_at`

func (r *postgresSeasonRepository) Create(ctx context.Context, s *models.Season) error {
	query := `
		INSERT INTO seasons (
			name, description, start_date, end_date, registration_end,
			default_court_count, default_time_slots, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		s.Name, s.Description, s.StartDate, s.EndDate, s.RegistrationEnd,
		s.DefaultCourtCount, pq.Array(s.DefaultTimeSlots), s.Status,
	).Scan(&s.ID, &s.CreatedAt)

	return r.handleSeasonError(err)
}

func scanSeason(row interface{ Scan(dest ...interface{}) error }, s *models.Season) error {
	return row.Scan(
		&s.ID, &s.Name, &s.Description, &s.StartDate, &s.EndDate, &s.RegistrationEnd,
		&s.DefaultCourtCount, pq.Array(&s.DefaultTimeSlots), &s.Status, &s.CreatedAt,
	)
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE id = $1`

	s := &models.Season{}
	err := scanSeason(r.db.QueryRowContext(ctx, query, id), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan season %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresSeasonRepository) List(ctx context.Context, filter ListSeasonsFilter) ([]models.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seasons := make([]models.Season, 0)
	for rows.Next() {
		var s models.Season
		if scanErr := scanSeason(rows, &s); scanErr != nil {
			return nil, scanErr
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

func (r *postgresSeasonRepository) Update(ctx context.Context, s *models.Season) error {
	query := `
		UPDATE seasons SET
			name = $1,
			description = $2,
			start_date = $3,
			end_date = $4,
			registration_end = $5,
			default_court_count = $6,
			default_time_slots = $7,
			status = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		s.Name, s.Description, s.StartDate, s.EndDate, s.RegistrationEnd,
		s.DefaultCourtCount, pq.Array(s.DefaultTimeSlots), s.Status, s.ID,
	)
	if err != nil {
		return r.handleSeasonError(err)
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}

func (r *postgresSeasonRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.SeasonStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE seasons SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleSeasonError(err)
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}

func (r *postgresSeasonRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM seasons WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleSeasonError(err)
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}

func (r *postgresSeasonRepository) ListOverrides(ctx context.Context, seasonID int) ([]models.MatchDayOverride, error) {
	query := `
		SELECT id, season_id, matchday_number, match_date, court_count, time_slots
		FROM season_matchday_overrides
		WHERE season_id = $1
		ORDER BY matchday_number ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchday overrides for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	overrides := make([]models.MatchDayOverride, 0)
	for rows.Next() {
		var o models.MatchDayOverride
		if scanErr := rows.Scan(&o.ID, &o.SeasonID, &o.MatchDayNumber, &o.MatchDate, &o.CourtCount, pq.Array(&o.TimeSlots)); scanErr != nil {
			return nil, scanErr
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *postgresSeasonRepository) GetOverride(ctx context.Context, seasonID, matchDayNumber int) (*models.MatchDayOverride, error) {
	query := `
		SELECT id, season_id, matchday_number, match_date, court_count, time_slots
		FROM season_matchday_overrides
		WHERE season_id = $1 AND matchday_number = $2`

	o := &models.MatchDayOverride{}
	err := r.db.QueryRowContext(ctx, query, seasonID, matchDayNumber).
		Scan(&o.ID, &o.SeasonID, &o.MatchDayNumber, &o.MatchDate, &o.CourtCount, pq.Array(&o.TimeSlots))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Отсутствие override — не ошибка.
		}
		return nil, fmt.Errorf("failed to scan matchday override: %w", err)
	}
	return o, nil
}

func (r *postgresSeasonRepository) UpsertOverride(ctx context.Context, o *models.MatchDayOverride) error {
	query := `
		INSERT INTO season_matchday_overrides (season_id, matchday_number, match_date, court_count, time_slots)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (season_id, matchday_number)
		DO UPDATE SET match_date = EXCLUDED.match_date,
		              court_count = EXCLUDED.court_count,
		              time_slots = EXCLUDED.time_slots
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		o.SeasonID, o.MatchDayNumber, o.MatchDate, o.CourtCount, pq.Array(o.TimeSlots),
	).Scan(&o.ID)
	return r.handleSeasonError(err)
}

func (r *postgresSeasonRepository) GetSeasonsForAutoStatusUpdate(ctx context.Context, exec SQLExecutor, currentTime time.Time) ([]*models.Season, error) {
	executor := r.getExecutor(exec)
	// Автоматические переходы: registration -> active по registration_end,
	// active -> completed по end_date. Остальные переходы только вручную.
	query := `SELECT ` + seasonColumns + `
		FROM seasons
		WHERE (status = $1 AND registration_end <= $3)
		   OR (status = $2 AND end_date < $3)`
	args := []interface{}{
		models.SeasonStatusRegistration, // $1
		models.SeasonStatusActive,       // $2
		currentTime,                     // $3
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons for auto status update: %w", err)
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		var s models.Season
		if scanErr := scanSeason(rows, &s); scanErr != nil {
			return nil, fmt.Errorf("failed to scan season for auto status update: %w", scanErr)
		}
		seasons = append(seasons, &s)
	}
	return seasons, rows.Err()
}

func (r *postgresSeasonRepository) handleSeasonError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "seasons_name_key" {
				return ErrSeasonNameConflict
			}
		case "23503":
			return ErrSeasonInUse
		}
	}
	return err
}

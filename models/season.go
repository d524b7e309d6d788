package models

import (
	"time"

	"github.com/lib/pq"
)

// SeasonStatus представляет статусы сезона, соответствующие ENUM в БД.
type SeasonStatus string

const (
	SeasonStatusDraft        SeasonStatus = "draft"
	SeasonStatusRegistration SeasonStatus = "registration"
	SeasonStatusActive       SeasonStatus = "active"
	SeasonStatusCompleted    SeasonStatus = "completed"
	SeasonStatusCanceled     SeasonStatus = "canceled"
)

// Season представляет один игровой сезон лиги.
// DefaultTimeSlots хранит упорядоченный список слотов дня ("19:45", "21:00", ...),
// DefaultCourtCount — количество кортов, доступных в обычный игровой день.
type Season struct {
	ID                int            `json:"id" db:"id"`
	Name              string         `json:"name" db:"name"`
	Description       *string        `json:"description,omitempty" db:"description"`
	StartDate         time.Time      `json:"start_date" db:"start_date"`
	EndDate           time.Time      `json:"end_date" db:"end_date"`
	RegistrationEnd   time.Time      `json:"registration_end" db:"registration_end"`
	DefaultCourtCount int            `json:"default_court_count" db:"default_court_count"`
	DefaultTimeSlots  pq.StringArray `json:"default_time_slots" db:"default_time_slots"`
	Status            SeasonStatus   `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Categories []Category         `json:"categories,omitempty" db:"-"`
	Overrides  []MatchDayOverride `json:"overrides,omitempty" db:"-"`
}

// MatchDayOverride переопределяет дату, число кортов или слоты
// для конкретного игрового дня сезона. Nil-поле означает "использовать
// значение сезона по умолчанию".
type MatchDayOverride struct {
	ID             int            `json:"id" db:"id"`
	SeasonID       int            `json:"season_id" db:"season_id"`
	MatchDayNumber int            `json:"matchday_number" db:"matchday_number"`
	MatchDate      *time.Time     `json:"match_date,omitempty" db:"match_date"`
	CourtCount     *int           `json:"court_count,omitempty" db:"court_count"`
	TimeSlots      pq.StringArray `json:"time_slots,omitempty" db:"time_slots"`
}

package models

import (
	"time"

	"github.com/lib/pq"
)

// WeeklyAvailability — недельный шаблон доступности игрока в сезоне:
// день недели (0 = воскресенье .. 6 = суббота) и список доступных слотов.
type WeeklyAvailability struct {
	ID        int            `json:"id" db:"id"`
	PlayerID  int            `json:"player_id" db:"player_id"`
	SeasonID  int            `json:"season_id" db:"season_id"`
	DayOfWeek int            `json:"day_of_week" db:"day_of_week"`
	TimeSlots pq.StringArray `json:"time_slots" db:"time_slots"`
}

// AvailabilityOverride — исключение на конкретную дату. Если запись
// существует, она полностью заменяет недельный шаблон для этой даты:
// либо явный список слотов, либо IsUnavailable с необязательной причиной.
type AvailabilityOverride struct {
	ID            int            `json:"id" db:"id"`
	PlayerID      int            `json:"player_id" db:"player_id"`
	SeasonID      int            `json:"season_id" db:"season_id"`
	Date          time.Time      `json:"date" db:"date"`
	TimeSlots     pq.StringArray `json:"time_slots,omitempty" db:"time_slots"`
	IsUnavailable bool           `json:"is_unavailable" db:"is_unavailable"`
	Reason        *string        `json:"reason,omitempty" db:"reason"`
}

package models

import "time"

// Court — именованный корт сезона. Корты не удаляются физически:
// деактивация через IsActive сохраняет исторические ссылки из расписаний.
type Court struct {
	ID        int       `json:"id" db:"id"`
	SeasonID  int       `json:"season_id" db:"season_id"`
	Name      string    `json:"name" db:"name"`
	Position  int       `json:"position" db:"position"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

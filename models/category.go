package models

import "time"

// Category — группа игроков внутри сезона (обычно по уровню игры).
type Category struct {
	ID            int     `json:"id" db:"id"`
	SeasonID      int     `json:"season_id" db:"season_id"`
	Name          string  `json:"name" db:"name"`
	MaxPlayers    int     `json:"max_players" db:"max_players"`
	PlayoffSize   *int    `json:"playoff_size,omitempty" db:"playoff_size"`
	PlayoffFormat *string `json:"playoff_format,omitempty" db:"playoff_format"`
	PosterKey     *string `json:"-" db:"poster_key"`
	PosterURL     *string `json:"poster_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Players []Player `json:"players,omitempty" db:"-"`
}

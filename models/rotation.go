package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
)

// Rotation — одна из трех фиксированных расстановок пар внутри DayGroup.
// Number принимает значения 1..3, пары выводятся детерминированно из порядка
// игроков группы. Каждая ротация владеет ровно одним парным матчем.
type Rotation struct {
	ID         int       `json:"id" db:"id"`
	DayGroupID int       `json:"day_group_id" db:"day_group_id"`
	Number     int       `json:"number" db:"number"`
	Pair1AID   int       `json:"pair1_a_id" db:"pair1_a_id"`
	Pair1BID   int       `json:"pair1_b_id" db:"pair1_b_id"`
	Pair2AID   int       `json:"pair2_a_id" db:"pair2_a_id"`
	Pair2BID   int       `json:"pair2_b_id" db:"pair2_b_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Match *Match `json:"match,omitempty" db:"-"`
}

// Match — парный матч одной ротации.
// WinningPair (1 или 2) заполняется при завершении.
type Match struct {
	ID          int         `json:"id" db:"id"`
	RotationID  int         `json:"rotation_id" db:"rotation_id"`
	Score       *string     `json:"score,omitempty" db:"score"`
	Status      MatchStatus `json:"status" db:"status"`
	WinningPair *int        `json:"winning_pair,omitempty" db:"winning_pair"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

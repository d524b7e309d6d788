package models

import "time"

// MatchDay — один игровой тур категории (1..N).
type MatchDay struct {
	ID         int        `json:"id" db:"id"`
	CategoryID int        `json:"category_id" db:"category_id"`
	Number     int        `json:"number" db:"number"`
	MatchDate  *time.Time `json:"match_date,omitempty" db:"match_date"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`

	Groups []DayGroup `json:"groups,omitempty" db:"-"`
}

// DayGroup — четверка игроков, играющая круговую ротацию в рамках одного
// игрового дня. Поля назначения (MatchDate, TimeSlot, CourtID) либо заполнены
// все вместе, либо все NULL: группа занимает ровно один слот
// (дата, время, корт), и никакие две группы не делят один слот.
type DayGroup struct {
	ID          int       `json:"id" db:"id"`
	MatchDayID  int       `json:"matchday_id" db:"matchday_id"`
	GroupNumber int       `json:"group_number" db:"group_number"`
	Player1ID   *int      `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID   *int      `json:"player2_id,omitempty" db:"player2_id"`
	Player3ID   *int      `json:"player3_id,omitempty" db:"player3_id"`
	Player4ID   *int      `json:"player4_id,omitempty" db:"player4_id"`
	MatchDate   *time.Time `json:"match_date,omitempty" db:"match_date"`
	TimeSlot    *string   `json:"time_slot,omitempty" db:"time_slot"`
	CourtID     *int      `json:"court_id,omitempty" db:"court_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Players   []Player   `json:"players,omitempty" db:"-"`
	Rotations []Rotation `json:"rotations,omitempty" db:"-"`
}

// PlayerIDs возвращает идентификаторы игроков группы в фиксированном порядке,
// пропуская удаленных (NULL) игроков.
func (g *DayGroup) PlayerIDs() []int {
	ids := make([]int, 0, 4)
	for _, p := range []*int{g.Player1ID, g.Player2ID, g.Player3ID, g.Player4ID} {
		if p != nil {
			ids = append(ids, *p)
		}
	}
	return ids
}

// IsAssigned сообщает, занимает ли группа слот расписания.
func (g *DayGroup) IsAssigned() bool {
	return g.MatchDate != nil && g.TimeSlot != nil && g.CourtID != nil
}

// Slot возвращает текущий слот группы, если он назначен.
func (g *DayGroup) Slot() (SlotRef, bool) {
	if !g.IsAssigned() {
		return SlotRef{}, false
	}
	return SlotRef{MatchDate: *g.MatchDate, TimeSlot: *g.TimeSlot, CourtID: *g.CourtID}, true
}

// SlotRef идентифицирует один слот расписания: (дата, время, корт).
type SlotRef struct {
	MatchDate time.Time `json:"match_date"`
	TimeSlot  string    `json:"time_slot"`
	CourtID   int       `json:"court_id"`
}

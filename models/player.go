package models

import "time"

// Player принадлежит ровно одной категории. Игрок либо привязан к учетной
// записи внешней auth-платформы (AuthUserID), либо заведен организатором
// вручную (только имя/email/телефон). WaitingList выставляется автоматически,
// когда категория заполнена.
type Player struct {
	ID          int       `json:"id" db:"id"`
	CategoryID  int       `json:"category_id" db:"category_id"`
	AuthUserID  *string   `json:"auth_user_id,omitempty" db:"auth_user_id"`
	FullName    string    `json:"full_name" db:"full_name"`
	Email       *string   `json:"email,omitempty" db:"email"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	WaitingList bool      `json:"waiting_list" db:"waiting_list"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// IsManual сообщает, заведен ли игрок вручную, без привязки к учетной записи.
func (p *Player) IsManual() bool {
	return p.AuthUserID == nil
}

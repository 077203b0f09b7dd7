package model

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     *string   `json:"email"`
	FullName  *string   `json:"full_name"`
	Phone     *string   `json:"phone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Reminder struct {
	ID           string     `json:"id"`
	PolicyID     string     `json:"policy_id"`
	ReminderDate Date       `json:"reminder_date"`
	DaysBefore   int        `json:"days_before"`
	SentAt       *time.Time `json:"sent_at"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

package model

import (
	"time"

	"github.com/goccy/go-json"
)

const (
	ActionCreatePolicy = "CREATE_POLICY"
	ActionUpdatePolicy = "UPDATE_POLICY"
	ActionDeletePolicy = "DELETE_POLICY"
	ActionCreateUser   = "CREATE_USER"
	ActionUpdateUser   = "UPDATE_USER"
)

type LogEntry struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Action      string          `json:"action"`
	Description string          `json:"description"`
	EntityType  *string         `json:"entity_type"`
	EntityID    *string         `json:"entity_id"`
	Metadata    json.RawMessage `json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
	Actor       *Actor          `json:"profiles,omitempty"`
}

// Actor is the profile slice joined onto a log entry.
type Actor struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

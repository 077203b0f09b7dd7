// Package audit builds log entries for privileged mutations and decorates
// stored entries for the log viewer.
package audit

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"policyvault/internal/format"
	"policyvault/internal/model"
)

const (
	EntityPolicy = "policy"
	EntityUser   = "user"
)

// Presentation is the icon and badge the viewer renders for an action code.
type Presentation struct {
	Icon  string `json:"icon"`
	Tone  string `json:"tone"`
	Label string `json:"label"`
}

var presentations = map[string]Presentation{
	model.ActionCreatePolicy: {Icon: "file-text", Tone: "success", Label: "Create"},
	model.ActionUpdatePolicy: {Icon: "file-text", Tone: "warning", Label: "Update"},
	model.ActionDeletePolicy: {Icon: "file-text", Tone: "destructive", Label: "Delete"},
	model.ActionCreateUser:   {Icon: "user", Tone: "success", Label: "User Created"},
	model.ActionUpdateUser:   {Icon: "user", Tone: "warning", Label: "User Updated"},
}

var systemPresentation = Presentation{Icon: "shield", Tone: "muted", Label: "System"}

func PresentationFor(action string) Presentation {
	if p, ok := presentations[action]; ok {
		return p
	}
	return systemPresentation
}

// ActorLabel prefers the actor's full name, then email.
func ActorLabel(actor *model.Actor) string {
	if actor != nil {
		if actor.FullName != nil && *actor.FullName != "" {
			return *actor.FullName
		}
		if actor.Email != nil && *actor.Email != "" {
			return *actor.Email
		}
	}
	return "System"
}

type View struct {
	model.LogEntry
	Presentation Presentation `json:"presentation"`
	ActorLabel   string       `json:"actor_label"`
	Timestamp    string       `json:"timestamp"`
}

func NewViews(entries []model.LogEntry) []View {
	views := make([]View, 0, len(entries))
	for _, e := range entries {
		views = append(views, View{
			LogEntry:     e,
			Presentation: PresentationFor(e.Action),
			ActorLabel:   ActorLabel(e.Actor),
			Timestamp:    format.DateTimeDDMMYYYY(e.CreatedAt),
		})
	}
	return views
}

// PolicyEntry records a create, update or delete of a policy by actorID.
func PolicyEntry(action, actorID string, p model.Policy) model.LogEntry {
	verb := map[string]string{
		model.ActionCreatePolicy: "Created",
		model.ActionUpdatePolicy: "Updated",
		model.ActionDeletePolicy: "Deleted",
	}[action]
	entityType := EntityPolicy
	entityID := p.ID
	metadata, _ := json.Marshal(map[string]any{
		"policy_number": p.PolicyNumber,
		"policy_type":   p.Type(),
	})
	return model.LogEntry{
		UserID:      actorID,
		Action:      action,
		Description: fmt.Sprintf("%s %s policy %s", verb, p.Type(), p.PolicyNumber),
		EntityType:  &entityType,
		EntityID:    &entityID,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
}

// RoleChangeEntry records actorID changing targetUserID's role.
func RoleChangeEntry(actorID, targetUserID string, role model.Role) model.LogEntry {
	entityType := EntityUser
	entityID := targetUserID
	return model.LogEntry{
		UserID:      actorID,
		Action:      model.ActionUpdateUser,
		Description: "Changed user role to " + string(role),
		EntityType:  &entityType,
		EntityID:    &entityID,
		CreatedAt:   time.Now(),
	}
}

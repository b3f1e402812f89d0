package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity entries are append-only; nothing updates or deletes them
// individually.

func NewProjectActivity(projectID uuid.UUID, action ProjectAction, userID uuid.UUID, details string, now time.Time) ProjectActivity {
	return ProjectActivity{
		ProjectID: projectID,
		Action:    action,
		UserID:    userID,
		Details:   details,
		CreatedAt: now,
	}
}

func NewDesignActivity(designID uuid.UUID, action DesignAction, userID uuid.UUID, details string, metadata Properties, now time.Time) DesignActivity {
	return DesignActivity{
		DesignID:  designID,
		Action:    action,
		UserID:    userID,
		Details:   details,
		Metadata:  metadata.Clone(),
		CreatedAt: now,
	}
}

// ActivityEvent is the message published for every appended activity entry.
type ActivityEvent struct {
	Entity    string     `json:"entity"`
	EntityID  uuid.UUID  `json:"entity_id"`
	Action    string     `json:"action"`
	UserID    uuid.UUID  `json:"user_id"`
	Details   string     `json:"details,omitempty"`
	Metadata  Properties `json:"metadata,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func (a ProjectActivity) Event() ActivityEvent {
	return ActivityEvent{
		Entity:    "project",
		EntityID:  a.ProjectID,
		Action:    string(a.Action),
		UserID:    a.UserID,
		Details:   a.Details,
		Timestamp: a.CreatedAt,
	}
}

func (a DesignActivity) Event() ActivityEvent {
	return ActivityEvent{
		Entity:    "design",
		EntityID:  a.DesignID,
		Action:    string(a.Action),
		UserID:    a.UserID,
		Details:   a.Details,
		Metadata:  a.Metadata,
		Timestamp: a.CreatedAt,
	}
}

// RoutingKey is activity.<entity>.<action>.
func (e ActivityEvent) RoutingKey() string { return "activity." + e.Entity + "." + e.Action }

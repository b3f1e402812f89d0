package realtime

import (
	"encoding/json"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Inbound events.
const (
	EventJoinDesign   = "join-design"
	EventLeaveDesign  = "leave-design"
	EventDesignUpdate = "design-update"
	EventCursorMove   = "cursor-move"
)

// Outbound events.
const (
	EventDesignUpdated = "design-updated"
	EventCursorMoved   = "cursor-moved"
	EventError         = "error"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type designUpdateIn struct {
	DesignID string          `json:"designId"`
	Changes  json.RawMessage `json:"changes"`
}

type cursorMoveIn struct {
	DesignID string   `json:"designId"`
	Position Position `json:"position"`
}

type DesignUpdated struct {
	UserID       uuid.UUID       `json:"userId"`
	ConnectionID string          `json:"connectionId"`
	Changes      json.RawMessage `json:"changes"`
	Timestamp    time.Time       `json:"timestamp"`
}

type CursorMoved struct {
	UserID       uuid.UUID `json:"userId"`
	ConnectionID string    `json:"connectionId"`
	Position     Position  `json:"position"`
	Timestamp    time.Time `json:"timestamp"`
}

type ErrorEvent struct {
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
}

// encode builds an outbound frame.
func encode(event string, data any) ([]byte, error) {
	raw, err := sonic.Marshal(data)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(Envelope{Event: event, Data: raw})
}

package realtime

import (
	"context"
	"time"

	"github.com/amansoomro062/codesign/internal/telemetry"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const authorizeTimeout = 5 * time.Second

// RoomAuthorizer decides whether a user may join a design room.
type RoomAuthorizer interface {
	CanJoin(ctx context.Context, userID, designID uuid.UUID) (bool, error)
}

// Dispatcher interprets inbound frames of one client. Each client's frames
// are handled sequentially by its read pump.
type Dispatcher struct {
	reg     *Registry
	auth    RoomAuthorizer
	log     *zap.Logger
	metrics *telemetry.RealtimeMetrics
	now     func() time.Time
}

func NewDispatcher(reg *Registry, auth RoomAuthorizer, log *zap.Logger, metrics *telemetry.RealtimeMetrics) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{reg: reg, auth: auth, log: log, metrics: metrics, now: time.Now}
}

// Handle processes one frame. Malformed frames and unknown events are logged
// and skipped; nothing is sent back for them.
func (d *Dispatcher) Handle(ctx context.Context, c *Client, raw []byte) {
	log := d.log.With(zap.String("connection_id", c.ID), zap.String("user_id", c.UserID.String()))

	var env Envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		log.Debug("skip malformed frame", zap.Error(err))
		return
	}

	switch env.Event {
	case EventJoinDesign:
		d.join(ctx, log, c, env.Data)
	case EventLeaveDesign:
		var room string
		if err := sonic.Unmarshal(env.Data, &room); err != nil {
			log.Debug("skip malformed leave-design", zap.Error(err))
			return
		}
		d.reg.Leave(c, room)
	case EventDesignUpdate:
		var in designUpdateIn
		if err := sonic.Unmarshal(env.Data, &in); err != nil {
			log.Debug("skip malformed design-update", zap.Error(err))
			return
		}
		d.relay(ctx, log, c, in.DesignID, EventDesignUpdated, DesignUpdated{
			UserID:       c.UserID,
			ConnectionID: c.ID,
			Changes:      in.Changes,
			Timestamp:    d.now().UTC(),
		})
	case EventCursorMove:
		var in cursorMoveIn
		if err := sonic.Unmarshal(env.Data, &in); err != nil {
			log.Debug("skip malformed cursor-move", zap.Error(err))
			return
		}
		d.relay(ctx, log, c, in.DesignID, EventCursorMoved, CursorMoved{
			UserID:       c.UserID,
			ConnectionID: c.ID,
			Position:     in.Position,
			Timestamp:    d.now().UTC(),
		})
	default:
		log.Debug("skip unknown event", zap.String("event", env.Event))
	}
}

func (d *Dispatcher) join(ctx context.Context, log *zap.Logger, c *Client, data []byte) {
	var room string
	if err := sonic.Unmarshal(data, &room); err != nil {
		log.Debug("skip malformed join-design", zap.Error(err))
		return
	}

	allowed := false
	if designID, err := uuid.Parse(room); err == nil {
		actx, cancel := context.WithTimeout(ctx, authorizeTimeout)
		allowed, err = d.auth.CanJoin(actx, c.UserID, designID)
		cancel()
		if err != nil {
			log.Error("authorize join-design", zap.String("design_id", room), zap.Error(err))
			allowed = false
		}
	}
	d.metrics.RoomJoin(ctx, allowed)

	if !allowed {
		d.reply(log, c, EventError, ErrorEvent{Message: "cannot join design", Event: EventJoinDesign})
		return
	}
	d.reg.Join(c, room)
	log.Debug("joined design room", zap.String("design_id", room))
}

// relay broadcasts to the room; the sender must have joined it.
func (d *Dispatcher) relay(ctx context.Context, log *zap.Logger, c *Client, room, event string, payload any) {
	if !d.reg.InRoom(c, room) {
		log.Debug("skip relay outside joined room", zap.String("design_id", room), zap.String("event", event))
		return
	}
	msg, err := encode(event, payload)
	if err != nil {
		log.Error("encode outbound event", zap.String("event", event), zap.Error(err))
		return
	}
	delivered, dropped := d.reg.Broadcast(c, room, msg)
	d.metrics.Relayed(ctx, event, delivered, dropped)
}

func (d *Dispatcher) reply(log *zap.Logger, c *Client, event string, payload any) {
	msg, err := encode(event, payload)
	if err != nil {
		log.Error("encode reply", zap.String("event", event), zap.Error(err))
		return
	}
	if !c.enqueue(msg) {
		log.Debug("reply dropped", zap.String("event", event))
	}
}

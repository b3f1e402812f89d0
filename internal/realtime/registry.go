// Package realtime relays live design edits and cursor moves between the
// websocket connections that joined the same design room.
package realtime

import (
	"context"
	"sync"

	"github.com/amansoomro062/codesign/internal/telemetry"
	"go.uber.org/zap"
)

// Registry tracks connected clients and room membership. Membership is
// process-local.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
	closed  bool

	log     *zap.Logger
	metrics *telemetry.RealtimeMetrics
}

func NewRegistry(log *zap.Logger, metrics *telemetry.RealtimeMetrics) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
		log:     log,
		metrics: metrics,
	}
}

// Register adds a connected client. It returns false after Shutdown.
func (r *Registry) Register(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if _, ok := r.clients[c]; !ok {
		r.clients[c] = make(map[string]struct{})
		r.metrics.ClientConnected(context.Background())
	}
	return true
}

// Join adds c to room. Joining twice is a no-op; unregistered clients are
// ignored.
func (r *Registry) Join(c *Client, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	joined, ok := r.clients[c]
	if !ok {
		return false
	}
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
	joined[room] = struct{}{}
	return true
}

// Leave removes c from room and drops the room once empty.
func (r *Registry) Leave(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c, room)
}

func (r *Registry) leaveLocked(c *Client, room string) {
	if members, ok := r.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	if joined, ok := r.clients[c]; ok {
		delete(joined, room)
	}
}

// Remove forgets c entirely, leaving every room silently, and closes it.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	joined, ok := r.clients[c]
	if ok {
		for room := range joined {
			r.leaveLocked(c, room)
		}
		delete(r.clients, c)
	}
	r.mu.Unlock()

	c.Close()
	if ok {
		r.metrics.ClientDisconnected(context.Background())
	}
}

// InRoom reports whether c is a member of room.
func (r *Registry) InRoom(c *Client, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][c]
	return ok
}

// Members returns the number of clients in room.
func (r *Registry) Members(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Broadcast queues msg for every member of room except sender. Delivery is
// best effort: a member whose queue is full misses msg. An unknown room is a
// no-op.
func (r *Registry) Broadcast(sender *Client, room string, msg []byte) (delivered, dropped int) {
	r.mu.RLock()
	members := r.rooms[room]
	recipients := make([]*Client, 0, len(members))
	for m := range members {
		if m != sender {
			recipients = append(recipients, m)
		}
	}
	r.mu.RUnlock()

	for _, m := range recipients {
		if m.enqueue(msg) {
			delivered++
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		r.log.Debug("dropped deliveries", zap.String("room", room), zap.Int("dropped", dropped))
	}
	return delivered, dropped
}

// Shutdown closes every client and refuses new registrations.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.closed = true
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.rooms = make(map[string]map[*Client]struct{})
	r.clients = make(map[*Client]map[string]struct{})
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
		r.metrics.ClientDisconnected(context.Background())
	}
	r.log.Info("realtime registry shut down", zap.Int("clients", len(clients)))
}

package realtime

import (
	"sync"

	"github.com/yukikurage/goal-community-api/internal/logger"
)

// Hub is the registry of live connections per room (one room per goal).
type Hub struct {
	mu      sync.RWMutex
	rooms   map[uint64]map[*Client]struct{}
	clients map[*Client]map[uint64]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[uint64]map[*Client]struct{}),
		clients: make(map[*Client]map[uint64]struct{}),
	}
}

// Join subscribes c to room.
func (h *Hub) Join(room uint64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}

	if h.clients[c] == nil {
		h.clients[c] = make(map[uint64]struct{})
	}
	h.clients[c][room] = struct{}{}
}

// Leave unsubscribes c from room.
func (h *Hub) Leave(room uint64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
}

// Disconnect unsubscribes c from every room.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	for room := range h.clients[c] {
		h.leaveLocked(room, c)
	}
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Hub) leaveLocked(room uint64, c *Client) {
	if set := h.rooms[room]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	if joined := h.clients[c]; joined != nil {
		delete(joined, room)
		if len(joined) == 0 {
			delete(h.clients, c)
		}
	}
}

// Broadcast queues payload on every client in room and returns how many
// accepted it. Clients whose queue is full are evicted and closed.
func (h *Hub) Broadcast(room uint64, payload []byte) int {
	h.mu.RLock()
	var stalled []*Client
	delivered := 0
	for c := range h.rooms[room] {
		if c.Enqueue(payload) {
			delivered++
		} else {
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		logger.Warn().Str("client_id", c.ID).Uint64("room", room).Msg("evicting slow chat client")
		h.Disconnect(c)
		c.Close()
	}
	return delivered
}

// InRoom reports whether c is subscribed to room.
func (h *Hub) InRoom(room uint64, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][c]
	return ok
}

// RoomSize returns the number of subscribed clients.
func (h *Hub) RoomSize(room uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

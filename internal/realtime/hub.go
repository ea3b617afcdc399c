package realtime

import (
	"log"
	"sync"
	"time"
)

// session is one connected client. *websocket.Conn satisfies it.
type session interface {
	WriteJSON(v interface{}) error
}

// envelope is the frame written to clients.
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	At    time.Time   `json:"at"`
}

// Hub is a process-scoped connection registry keyed by room. It holds the
// only shared mutable state in the request tier; multi-instance
// deployments need a shared broker behind the Broadcaster interface
// instead.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[session]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[session]struct{})}
}

// Join registers a connection in a room.
func (h *Hub) Join(room string, s session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[session]struct{})
	}
	h.rooms[room][s] = struct{}{}
}

// Leave removes a connection from a room.
func (h *Hub) Leave(room string, s session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// LeaveAll removes a connection from every room it joined.
func (h *Hub) LeaveAll(s session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RoomSize reports how many connections a room currently holds.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit writes the event to every member of the room. Write failures are
// logged and skipped; there is no backlog or replay.
func (h *Hub) Emit(room, event string, payload interface{}) {
	h.mu.RLock()
	members := make([]session, 0, len(h.rooms[room]))
	for s := range h.rooms[room] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	frame := envelope{Event: event, Data: payload, At: time.Now().UTC()}
	for _, s := range members {
		if err := s.WriteJSON(frame); err != nil {
			log.Printf("realtime: failed to deliver %s to %s: %v", event, room, err)
		}
	}
}

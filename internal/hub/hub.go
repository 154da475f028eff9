package hub

import (
	"sync"

	"github.com/google/uuid"
)

// Event types pushed on a room channel.
const (
	EventMessageCreated = "message.created"
	EventMessagesRead   = "messages.read"
	EventRoomRevoked    = "room.revoked"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	RoomID  uint        `json:"room_id"`
	Payload interface{} `json:"payload"`
}

// Subscription is one session listening on one room channel.
// C is closed when the subscription ends, including on revocation.
type Subscription struct {
	ID     string
	RoomID uint
	UserID uint
	C      <-chan []byte

	ch chan []byte
}

// Hub manages the live subscriptions of every room.
type Hub struct {
	rooms  map[uint]map[string]*Subscription
	mu     sync.RWMutex
	buffer int
}

// NewHub creates a new Hub. buffer is the per-subscription queue length.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		rooms:  make(map[uint]map[string]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a session of userID on a room channel.
// Callers are responsible for checking membership first.
func (h *Hub) Subscribe(roomID, userID uint) *Subscription {
	ch := make(chan []byte, h.buffer)
	sub := &Subscription{
		ID:     uuid.NewString(),
		RoomID: roomID,
		UserID: userID,
		C:      ch,
		ch:     ch,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Subscription)
	}
	h.rooms[roomID][sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub.RoomID, sub.ID)
}

// Broadcast sends data to every subscription of the room except those owned
// by excludeUserID (0 excludes nobody). It returns the number of deliveries.
func (h *Hub) Broadcast(roomID uint, data []byte, excludeUserID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.rooms[roomID] {
		if excludeUserID != 0 && sub.UserID == excludeUserID {
			continue
		}
		// Use a non-blocking send to prevent a slow client from blocking the hub.
		select {
		case sub.ch <- data:
			delivered++
		default:
		}
	}
	return delivered
}

// Revoke ends every subscription userID holds on the room, after a best-effort
// delivery of notice (nil sends nothing).
func (h *Hub) Revoke(roomID, userID uint, notice []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	revoked := 0
	for id, sub := range h.rooms[roomID] {
		if sub.UserID != userID {
			continue
		}
		if notice != nil {
			select {
			case sub.ch <- notice:
			default:
			}
		}
		h.removeLocked(roomID, id)
		revoked++
	}
	return revoked
}

// CloseRoom ends every subscription on the room.
func (h *Hub) CloseRoom(roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id := range h.rooms[roomID] {
		h.removeLocked(roomID, id)
	}
}

// Subscribers returns the number of live subscriptions on a room.
func (h *Hub) Subscribers(roomID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Close ends all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID, subs := range h.rooms {
		for id := range subs {
			h.removeLocked(roomID, id)
		}
	}
}

func (h *Hub) removeLocked(roomID uint, id string) {
	subs, ok := h.rooms[roomID]
	if !ok {
		return
	}
	sub, ok := subs[id]
	if !ok {
		return
	}
	delete(subs, id)
	close(sub.ch) // Close the channel to signal the transport to stop.
	if len(subs) == 0 {
		delete(h.rooms, roomID)
	}
}

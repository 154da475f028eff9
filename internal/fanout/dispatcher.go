package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"automarket/chat/internal/hub"
)

// ErrQueueFull is returned when the dispatcher cannot accept another event.
var ErrQueueFull = errors.New("fanout: queue full")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("fanout: dispatcher closed")

// Envelope is the unit moved between instances: an encoded event plus routing.
type Envelope struct {
	RoomID        uint            `json:"room_id"`
	ExcludeUserID uint            `json:"exclude_user_id,omitempty"`
	RevokeUserID  uint            `json:"revoke_user_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// Sink receives envelopes from the dispatcher worker.
type Sink interface {
	Deliver(ctx context.Context, env Envelope) error
}

// LocalSink delivers envelopes straight to this instance's hub.
type LocalSink struct {
	Hub *hub.Hub
}

func (s LocalSink) Deliver(_ context.Context, env Envelope) error {
	DeliverLocal(s.Hub, env)
	return nil
}

// DeliverLocal applies an envelope to a hub.
func DeliverLocal(h *hub.Hub, env Envelope) {
	if env.RevokeUserID != 0 {
		h.Revoke(env.RoomID, env.RevokeUserID, env.Data)
		return
	}
	h.Broadcast(env.RoomID, env.Data, env.ExcludeUserID)
}

// Dispatcher is the post-commit hook of the message log: callers enqueue
// events without blocking and a single worker hands them to the sink.
type Dispatcher struct {
	sink    Sink
	queue   chan Envelope
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with a queue of the given size.
func NewDispatcher(sink Sink, size int) *Dispatcher {
	if size <= 0 {
		size = 1024
	}
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan Envelope, size),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish encodes ev and enqueues it for every subscriber of the room except excludeUserID.
func (d *Dispatcher) Publish(ev hub.Event, excludeUserID uint) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("fanout: encode %s: %w", ev.Type, err)
	}
	return d.enqueue(Envelope{RoomID: ev.RoomID, ExcludeUserID: excludeUserID, Data: data})
}

// Revoke tells every instance to drop userID's subscriptions on the room.
func (d *Dispatcher) Revoke(roomID, userID uint) error {
	data, err := json.Marshal(hub.Event{
		Type:    hub.EventRoomRevoked,
		RoomID:  roomID,
		Payload: map[string]uint{"user_id": userID},
	})
	if err != nil {
		return fmt.Errorf("fanout: encode revoke: %w", err)
	}
	return d.enqueue(Envelope{RoomID: roomID, RevokeUserID: userID, Data: data})
}

func (d *Dispatcher) enqueue(env Envelope) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- env:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for queued ones to be handed to the sink.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for env := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Deliver(ctx, env); err != nil {
			slog.Warn("fanout: delivery failed", "room_id", env.RoomID, "error", err)
		}
		cancel()
	}
}

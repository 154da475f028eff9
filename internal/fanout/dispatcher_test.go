package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"automarket/chat/internal/hub"
)

type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	got     []Envelope
}

func (s *blockingSink) Deliver(_ context.Context, env Envelope) error {
	<-s.release
	s.mu.Lock()
	s.got = append(s.got, env)
	s.mu.Unlock()
	return nil
}

type failingSink struct{ calls int }

func (s *failingSink) Deliver(context.Context, Envelope) error {
	s.calls++
	return errors.New("relay down")
}

func receive(t *testing.T, sub *hub.Subscription) hub.Event {
	t.Helper()
	select {
	case data, ok := <-sub.C:
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		var ev hub.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("invalid event payload: %v", err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return hub.Event{}
}

func TestDispatcher_DeliversToLocalHub(t *testing.T) {
	h := hub.NewHub(8)
	d := NewDispatcher(LocalSink{Hub: h}, 8)
	defer d.Close()

	sender := h.Subscribe(7, 1)
	receiver := h.Subscribe(7, 2)

	if err := d.Publish(hub.Event{Type: hub.EventMessageCreated, RoomID: 7, Payload: "hi"}, 1); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	ev := receive(t, receiver)
	if ev.Type != hub.EventMessageCreated || ev.RoomID != 7 {
		t.Fatalf("unexpected event: %+v", ev)
	}

	select {
	case <-sender.C:
		t.Fatalf("sender must be excluded")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcher_RevokeClosesSubscription(t *testing.T) {
	h := hub.NewHub(8)
	d := NewDispatcher(LocalSink{Hub: h}, 8)
	defer d.Close()

	sub := h.Subscribe(3, 9)
	if err := d.Revoke(3, 9); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	ev := receive(t, sub)
	if ev.Type != hub.EventRoomRevoked {
		t.Fatalf("expected revocation notice, got %s", ev.Type)
	}
	select {
	case _, ok := <-sub.C:
		if ok {
			t.Fatalf("expected channel closed after revoke")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription was not closed")
	}
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(sink, 1)

	// The worker takes the first envelope and blocks in the sink; the second fills the queue.
	var errs []error
	for i := 0; i < 5; i++ {
		errs = append(errs, d.Publish(hub.Event{Type: hub.EventMessageCreated, RoomID: 1}, 0))
	}

	full := 0
	for _, err := range errs {
		if errors.Is(err, ErrQueueFull) {
			full++
		}
	}
	if full == 0 {
		t.Fatalf("expected some publishes to be rejected with ErrQueueFull")
	}

	close(sink.release)
	d.Close()

	if err := d.Publish(hub.Event{RoomID: 1}, 0); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}

func TestDispatcher_SinkErrorsAreSwallowed(t *testing.T) {
	sink := &failingSink{}
	d := NewDispatcher(sink, 4)

	if err := d.Publish(hub.Event{Type: hub.EventMessageCreated, RoomID: 1}, 0); err != nil {
		t.Fatalf("Publish should accept the event: %v", err)
	}
	d.Close()

	if sink.calls != 1 {
		t.Fatalf("expected sink to be called once, got %d", sink.calls)
	}
}

func TestChannelNames(t *testing.T) {
	if got := ChannelName(42); got != "room.42" {
		t.Fatalf("ChannelName = %q", got)
	}
	if id, ok := ParseChannel("room.42"); !ok || id != 42 {
		t.Fatalf("ParseChannel = %d, %v", id, ok)
	}
	for _, bad := range []string{"room.", "room.x", "lobby.1", "room.0"} {
		if _, ok := ParseChannel(bad); ok {
			t.Fatalf("ParseChannel(%q) should fail", bad)
		}
	}
}

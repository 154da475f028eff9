package hub

import (
	"sync"
	"testing"
)

func drain(sub *Subscription) [][]byte {
	var out [][]byte
	for {
		select {
		case b, ok := <-sub.C:
			if !ok {
				return out
			}
			out = append(out, b)
		default:
			return out
		}
	}
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	h := NewHub(4)

	alice := h.Subscribe(1, 10)
	bob := h.Subscribe(1, 20)
	bobPhone := h.Subscribe(1, 20)
	other := h.Subscribe(2, 30)

	if n := h.Broadcast(1, []byte("hello"), 10); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}

	if got := drain(alice); len(got) != 0 {
		t.Fatalf("sender should not receive its own event, got %d", len(got))
	}
	if got := drain(bob); len(got) != 1 || string(got[0]) != "hello" {
		t.Fatalf("bob did not receive event: %v", got)
	}
	if got := drain(bobPhone); len(got) != 1 {
		t.Fatalf("bob's second session did not receive event")
	}
	if got := drain(other); len(got) != 0 {
		t.Fatalf("subscriber of another room received event")
	}
}

func TestHub_SlowSubscriberIsSkipped(t *testing.T) {
	h := NewHub(1)
	slow := h.Subscribe(1, 20)

	if n := h.Broadcast(1, []byte("a"), 0); n != 1 {
		t.Fatalf("first send should be buffered")
	}
	// Buffer full: the hub must not block.
	if n := h.Broadcast(1, []byte("b"), 0); n != 0 {
		t.Fatalf("expected full subscriber to be skipped, got %d deliveries", n)
	}
	if got := drain(slow); len(got) != 1 || string(got[0]) != "a" {
		t.Fatalf("unexpected buffered events: %v", got)
	}
}

func TestHub_RevokeClosesOnlyThatUser(t *testing.T) {
	h := NewHub(4)
	bob := h.Subscribe(1, 20)
	carol := h.Subscribe(1, 30)

	if n := h.Revoke(1, 20, []byte("bye")); n != 1 {
		t.Fatalf("expected one revoked subscription, got %d", n)
	}

	msg, ok := <-bob.C
	if !ok || string(msg) != "bye" {
		t.Fatalf("expected revocation notice before close, got %q ok=%v", msg, ok)
	}
	if _, ok := <-bob.C; ok {
		t.Fatalf("revoked subscription channel should be closed")
	}

	if n := h.Broadcast(1, []byte("still here"), 0); n != 1 {
		t.Fatalf("expected only carol to receive, got %d", n)
	}
	if got := drain(carol); len(got) != 1 {
		t.Fatalf("carol lost her subscription")
	}
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe(1, 10)

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)

	if h.Subscribers(1) != 0 {
		t.Fatalf("expected no subscribers after unsubscribe")
	}
	if _, ok := <-sub.C; ok {
		t.Fatalf("channel should be closed")
	}
}

func TestHub_CloseRoomAndClose(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe(1, 10)
	b := h.Subscribe(2, 20)

	h.CloseRoom(1)
	if _, ok := <-a.C; ok {
		t.Fatalf("room subscription should be closed")
	}
	if h.Subscribers(2) != 1 {
		t.Fatalf("other rooms must be untouched")
	}

	h.Close()
	if _, ok := <-b.C; ok {
		t.Fatalf("all subscriptions should be closed")
	}
}

func TestHub_ConcurrentSubscribeAndBroadcast(t *testing.T) {
	h := NewHub(256)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(user uint) {
			defer wg.Done()
			sub := h.Subscribe(1, user)
			h.Unsubscribe(sub)
		}(uint(i + 1))
		go func() {
			defer wg.Done()
			h.Broadcast(1, []byte("x"), 0)
		}()
	}
	wg.Wait()

	if h.Subscribers(1) != 0 {
		t.Fatalf("expected all subscriptions removed")
	}
}

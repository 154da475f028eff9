package handler

import (
	"net/http"
	"testing"
	"time"

	"automarket/chat/internal/chat"
	"automarket/chat/internal/middleware"
	"automarket/chat/internal/models"
)

func TestMessages_SendListAndRead(t *testing.T) {
	env := newTestEnv(t, nil)
	staff := env.seedUser(t, "Sam Staff", models.RoleStaff, false)
	seller := env.seedUser(t, "Jane Seller", models.RoleMember, true)
	staffToken, sellerToken := env.token(t, staff), env.token(t, seller)

	w := env.do(t, http.MethodPost, "/api/v1/rooms/private", staffToken, CreatePrivateRoomInput{OtherUserID: seller.ID})
	expectStatus(t, w, http.StatusCreated)
	room := decode[chat.RoomView](t, w)
	if len(room.Members) != 2 || room.Title != "Jane Seller" {
		t.Fatalf("unexpected room: %+v", room)
	}

	// The counterpart gets the same room back.
	w = env.do(t, http.MethodPost, "/api/v1/rooms/private", sellerToken, CreatePrivateRoomInput{OtherUserID: staff.ID})
	expectStatus(t, w, http.StatusOK)
	if again := decode[chat.RoomView](t, w); again.ID != room.ID {
		t.Fatalf("expected room %d, got %d", room.ID, again.ID)
	}

	w = env.do(t, http.MethodPost, roomPath(room.ID, "/messages"), staffToken, SendMessageInput{Body: "Hello"})
	expectStatus(t, w, http.StatusCreated)
	sent := decode[chat.MessageView](t, w)
	if sent.Body != "Hello" || sent.Kind != models.MessageKindText || sent.Sender.ID != staff.ID || sent.Read {
		t.Fatalf("unexpected message: %+v", sent)
	}

	w = env.do(t, http.MethodGet, roomPath(room.ID, "/unread"), sellerToken, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[UnreadResponse](t, w).Unread; got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}

	w = env.do(t, http.MethodGet, roomPath(room.ID, "/messages"), sellerToken, nil)
	expectStatus(t, w, http.StatusOK)
	page := decode[chat.MessagePageView](t, w)
	if len(page.Messages) != 1 || page.Messages[0].ID != sent.ID || page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}

	w = env.do(t, http.MethodPost, roomPath(room.ID, "/read"), sellerToken, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[MarkReadResponse](t, w).Count; got != 1 {
		t.Fatalf("expected 1 message marked read, got %d", got)
	}

	w = env.do(t, http.MethodPost, roomPath(room.ID, "/read"), sellerToken, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[MarkReadResponse](t, w).Count; got != 0 {
		t.Fatalf("expected a second read to change nothing, got %d", got)
	}

	w = env.do(t, http.MethodGet, "/api/v1/rooms/stats", sellerToken, nil)
	expectStatus(t, w, http.StatusOK)
	if stats := decode[chat.InboxStats](t, w); stats.Conversations != 1 || stats.Unread != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMessages_ErrorMapping(t *testing.T) {
	env := newTestEnv(t, nil)
	staff := env.seedUser(t, "Sam Staff", models.RoleStaff, false)
	seller := env.seedUser(t, "Jane Seller", models.RoleMember, true)
	outsider := env.seedUser(t, "Olly Outsider", models.RoleMember, true)
	roomID := env.privateRoom(t, staff, seller)

	closed := env.privateRoom(t, staff, outsider)
	if err := env.db.Model(&models.Room{}).Where("id = ?", closed).Update("active", false).Error; err != nil {
		t.Fatalf("failed to close room: %v", err)
	}

	staffToken, outsiderToken := env.token(t, staff), env.token(t, outsider)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, roomPath(roomID, "/messages"), "", nil, http.StatusUnauthorized},
		{"non-member reads", http.MethodGet, roomPath(roomID, "/messages"), outsiderToken, nil, http.StatusUnauthorized},
		{"non-member sends", http.MethodPost, roomPath(roomID, "/messages"), outsiderToken, SendMessageInput{Body: "hi"}, http.StatusUnauthorized},
		{"non-member room", http.MethodGet, roomPath(roomID, ""), outsiderToken, nil, http.StatusUnauthorized},
		{"missing room", http.MethodGet, roomPath(roomID+100, "/messages"), staffToken, nil, http.StatusNotFound},
		{"bad room id", http.MethodGet, "/api/v1/rooms/abc/messages", staffToken, nil, http.StatusBadRequest},
		{"malformed json", http.MethodPost, roomPath(roomID, "/messages"), staffToken, "{", http.StatusBadRequest},
		{"empty message", http.MethodPost, roomPath(roomID, "/messages"), staffToken, SendMessageInput{Body: "   "}, http.StatusUnprocessableEntity},
		{"system message", http.MethodPost, roomPath(roomID, "/messages"), staffToken, SendMessageInput{Body: "x", Kind: models.MessageKindSystem}, http.StatusUnprocessableEntity},
		{"bad cursor", http.MethodGet, roomPath(roomID, "/messages?cursor=%25%25"), staffToken, nil, http.StatusUnprocessableEntity},
		{"inactive room", http.MethodPost, roomPath(closed, "/messages"), staffToken, SendMessageInput{Body: "hi"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.token, tt.body)
			expectStatus(t, w, tt.want)
			if resp := decode[ErrorResponse](t, w); resp.Error == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestMessages_Paging(t *testing.T) {
	env := newTestEnv(t, nil)
	staff := env.seedUser(t, "Sam Staff", models.RoleStaff, false)
	seller := env.seedUser(t, "Jane Seller", models.RoleMember, true)
	roomID := env.privateRoom(t, staff, seller)
	token := env.token(t, staff)

	for _, body := range []string{"one", "two", "three"} {
		expectStatus(t, env.do(t, http.MethodPost, roomPath(roomID, "/messages"), token, SendMessageInput{Body: body}), http.StatusCreated)
	}

	w := env.do(t, http.MethodGet, roomPath(roomID, "/messages?limit=2"), token, nil)
	expectStatus(t, w, http.StatusOK)
	latest := decode[chat.MessagePageView](t, w)
	if len(latest.Messages) != 2 || latest.Messages[0].Body != "two" || latest.Messages[1].Body != "three" || !latest.HasMore {
		t.Fatalf("unexpected latest page: %+v", latest)
	}

	w = env.do(t, http.MethodGet, roomPath(roomID, "/messages?limit=2&cursor="+latest.PrevCursor), token, nil)
	expectStatus(t, w, http.StatusOK)
	older := decode[chat.MessagePageView](t, w)
	if len(older.Messages) != 1 || older.Messages[0].Body != "one" || older.HasMore {
		t.Fatalf("unexpected older page: %+v", older)
	}

	w = env.do(t, http.MethodGet, roomPath(roomID, "/messages?direction=after&cursor="+older.NextCursor), token, nil)
	expectStatus(t, w, http.StatusOK)
	newer := decode[chat.MessagePageView](t, w)
	if len(newer.Messages) != 2 || newer.Messages[0].Body != "two" {
		t.Fatalf("unexpected newer page: %+v", newer)
	}
}

func TestSendMessage_RateLimited(t *testing.T) {
	limiter := middleware.NewLimiterStore(60, 2, time.Hour)
	defer limiter.Stop()
	env := newTestEnv(t, limiter)
	staff := env.seedUser(t, "Sam Staff", models.RoleStaff, false)
	seller := env.seedUser(t, "Jane Seller", models.RoleMember, true)
	roomID := env.privateRoom(t, staff, seller)

	token := env.token(t, staff)
	for i := 0; i < 2; i++ {
		expectStatus(t, env.do(t, http.MethodPost, roomPath(roomID, "/messages"), token, SendMessageInput{Body: "hi"}), http.StatusCreated)
	}
	w := env.do(t, http.MethodPost, roomPath(roomID, "/messages"), token, SendMessageInput{Body: "hi"})
	expectStatus(t, w, http.StatusTooManyRequests)
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	// Budgets are per user and reads are not limited.
	sellerToken := env.token(t, seller)
	expectStatus(t, env.do(t, http.MethodPost, roomPath(roomID, "/messages"), sellerToken, SendMessageInput{Body: "hello"}), http.StatusCreated)
	expectStatus(t, env.do(t, http.MethodGet, roomPath(roomID, "/messages"), token, nil), http.StatusOK)
}

package handler

import (
	"net/http"
	"strconv"
	"testing"

	"automarket/chat/internal/chat"
	"automarket/chat/internal/models"
)

func TestAdmin_StaffOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	seller := env.seedUser(t, "Jane Seller", models.RoleMember, true)
	other := env.seedUser(t, "Olly Other", models.RoleMember, true)
	roomID := env.privateRoom(t, seller, other)
	token := env.token(t, seller)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"list users", http.MethodGet, "/api/v1/admin/users", nil},
		{"approve", http.MethodPost, "/api/v1/admin/users/" + strconv.FormatUint(uint64(other.ID), 10) + "/approve", nil},
		{"delete user", http.MethodDelete, "/api/v1/admin/users/" + strconv.FormatUint(uint64(other.ID), 10), nil},
		{"close room", http.MethodPut, "/api/v1/admin/rooms/" + strconv.FormatUint(uint64(roomID), 10) + "/active", SetRoomActiveInput{}},
		{"create group", http.MethodPost, "/api/v1/rooms/group", CreateGroupRoomInput{Name: "Dealers"}},
		{"add member", http.MethodPost, roomPath(roomID, "/members"), AddMemberInput{UserID: other.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, tt.method, tt.path, token, tt.body), http.StatusForbidden)
		})
	}
}

func TestAdmin_ApproveJoinsGeneralChat(t *testing.T) {
	env := newTestEnv(t, nil)
	staff := env.seedUser(t, "Sam Staff", models.RoleStaff, false)
	pending := env.seedUser(t, "Pat Pending", models.RoleMember, false)
	staffToken, pendingToken := env.token(t, staff), env.token(t, pending)

	// Unapproved members cannot open conversations.
	w := env.do(t, http.MethodPost, "/api/v1/rooms/private", pendingToken, CreatePrivateRoomInput{OtherUserID: staff.ID})
	expectStatus(t, w, http.StatusForbidden)

	w = env.do(t, http.MethodGet, "/api/v1/admin/users?pending=true", staffToken, nil)
	expectStatus(t, w, http.StatusOK)
	listed := decode[PaginatedUserResponse](t, w)
	if len(listed.Data) != 1 || listed.Data[0].ID != pending.ID || listed.Meta.TotalItems != 1 {
		t.Fatalf("unexpected pending list: %+v", listed)
	}

	w = env.do(t, http.MethodPost, "/api/v1/admin/users/"+strconv.FormatUint(uint64(pending.ID), 10)+"/approve", staffToken, nil)
	expectStatus(t, w, http.StatusOK)
	if u := decode[UserResponse](t, w); !u.Approved {
		t.Fatalf("expected approved account")
	}

	w = env.do(t, http.MethodGet, "/api/v1/rooms?kind=group", pendingToken, nil)
	expectStatus(t, w, http.StatusOK)
	rooms := decode[PaginatedRoomResponse](t, w)
	if len(rooms.Data) != 1 || rooms.Data[0].Name != "General Sellers Chat" {
		t.Fatalf("expected the general chat, got %+v", rooms.Data)
	}

	w = env.do(t, http.MethodPost, "/api/v1/rooms/private", pendingToken, CreatePrivateRoomInput{OtherUserID: staff.ID})
	expectStatus(t, w, http.StatusCreated)
}

func TestAdmin_CloseAndDeleteRoom(t *testing.T) {
	env := newTestEnv(t, nil)
	staff := env.seedUser(t, "Sam Staff", models.RoleStaff, false)
	seller := env.seedUser(t, "Jane Seller", models.RoleMember, true)
	roomID := env.privateRoom(t, staff, seller)
	staffToken, sellerToken := env.token(t, staff), env.token(t, seller)
	roomAdmin := "/api/v1/admin/rooms/" + strconv.FormatUint(uint64(roomID), 10)

	expectStatus(t, env.do(t, http.MethodPost, roomPath(roomID, "/messages"), sellerToken, SendMessageInput{Body: "hi"}), http.StatusCreated)

	closed := false
	w := env.do(t, http.MethodPut, roomAdmin+"/active", staffToken, SetRoomActiveInput{Active: &closed})
	expectStatus(t, w, http.StatusOK)
	if room := decode[chat.RoomView](t, w); room.Active {
		t.Fatalf("expected room to be closed")
	}

	expectStatus(t, env.do(t, http.MethodPost, roomPath(roomID, "/messages"), sellerToken, SendMessageInput{Body: "hello?"}), http.StatusConflict)
	// History stays readable and can still be marked read.
	expectStatus(t, env.do(t, http.MethodGet, roomPath(roomID, "/messages"), sellerToken, nil), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPost, roomPath(roomID, "/read"), staffToken, nil), http.StatusOK)

	expectStatus(t, env.do(t, http.MethodPut, roomAdmin+"/active", staffToken, "{}"), http.StatusBadRequest)

	expectStatus(t, env.do(t, http.MethodDelete, roomAdmin, staffToken, nil), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodGet, roomPath(roomID, "/messages"), sellerToken, nil), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodDelete, roomAdmin, staffToken, nil), http.StatusNotFound)
}

func TestAdmin_DeleteUserKeepsHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	staff := env.seedUser(t, "Sam Staff", models.RoleStaff, false)
	seller := env.seedUser(t, "Jane Seller", models.RoleMember, true)
	roomID := env.privateRoom(t, staff, seller)
	staffToken, sellerToken := env.token(t, staff), env.token(t, seller)

	expectStatus(t, env.do(t, http.MethodPost, roomPath(roomID, "/messages"), sellerToken, SendMessageInput{Body: "bye"}), http.StatusCreated)

	expectStatus(t, env.do(t, http.MethodDelete, "/api/v1/admin/users/"+strconv.FormatUint(uint64(staff.ID), 10), staffToken, nil), http.StatusUnprocessableEntity)
	expectStatus(t, env.do(t, http.MethodDelete, "/api/v1/admin/users/"+strconv.FormatUint(uint64(seller.ID), 10), staffToken, nil), http.StatusNoContent)

	// The removed account can no longer authenticate.
	expectStatus(t, env.do(t, http.MethodGet, "/api/v1/users/me", sellerToken, nil), http.StatusUnauthorized)

	w := env.do(t, http.MethodGet, roomPath(roomID, "/messages"), staffToken, nil)
	expectStatus(t, w, http.StatusOK)
	page := decode[chat.MessagePageView](t, w)
	if len(page.Messages) != 1 || page.Messages[0].Sender.Name != chat.RemovedUserName || !page.Messages[0].Sender.Removed {
		t.Fatalf("expected history with a removed sender, got %+v", page.Messages)
	}
}

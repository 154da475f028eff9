package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"automarket/chat/internal/auth"
	"automarket/chat/internal/chat"
	"automarket/chat/internal/database"
	"automarket/chat/internal/fanout"
	"automarket/chat/internal/hub"
	"automarket/chat/internal/middleware"
	"automarket/chat/internal/models"
	"automarket/chat/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

type testEnv struct {
	db     *gorm.DB
	svc    *chat.Service
	tokens *jwt.Manager
	router *gin.Engine
}

func newTestEnv(t *testing.T, limiter *middleware.LimiterStore) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect("sqlite", fmt.Sprintf("file:handler_%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	h := hub.NewHub(16)
	dispatcher := fanout.NewDispatcher(fanout.LocalSink{Hub: h}, 64)
	t.Cleanup(func() {
		dispatcher.Close()
		h.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	svc := chat.NewService(db, h, dispatcher, "General Sellers Chat")
	tokens := jwt.NewManager("test-secret", time.Hour)
	router := NewRouter(New(db, svc, tokens), RouterOptions{MessageLimiter: limiter})
	return &testEnv{db: db, svc: svc, tokens: tokens, router: router}
}

func (e *testEnv) seedUser(t *testing.T, name string, role models.Role, approved bool) models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	u := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := e.db.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}
	if approved {
		if err := e.db.Model(&u).Update("approved", true).Error; err != nil {
			t.Fatalf("failed to approve %s: %v", name, err)
		}
		u.Approved = true
	}
	return u
}

func (e *testEnv) token(t *testing.T, u models.User) string {
	t.Helper()
	tok, _, err := e.tokens.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tok
}

// privateRoom opens a room between a and b through the service.
func (e *testEnv) privateRoom(t *testing.T, a, b models.User) uint {
	t.Helper()
	room, _, err := e.svc.CreatePrivateRoom(context.Background(), chat.PrincipalFor(a), b.ID)
	if err != nil {
		t.Fatalf("failed to open room: %v", err)
	}
	return room.ID
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func roomPath(roomID uint, suffix string) string {
	return fmt.Sprintf("/api/v1/rooms/%d%s", roomID, suffix)
}

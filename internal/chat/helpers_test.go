package chat

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"automarket/chat/internal/database"
	"automarket/chat/internal/hub"
	"automarket/chat/internal/models"

	"gorm.io/gorm"
)

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := database.Connect("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role, approved bool) models.User {
	t.Helper()
	u := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}
	if approved {
		if err := db.Model(&u).Update("approved", true).Error; err != nil {
			t.Fatalf("failed to approve user %s: %v", name, err)
		}
		u.Approved = true
	}
	return u
}

func principal(u models.User) Principal {
	return PrincipalFor(u)
}

// recordingPublisher captures what the service hands to the post-commit hook.
type recordingPublisher struct {
	mu       sync.Mutex
	events   []hub.Event
	excluded []uint
	revoked  [][2]uint
	fail     error
}

func (p *recordingPublisher) Publish(ev hub.Event, excludeUserID uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, ev)
	p.excluded = append(p.excluded, excludeUserID)
	return nil
}

func (p *recordingPublisher) Revoke(roomID, userID uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = append(p.revoked, [2]uint{roomID, userID})
	return p.fail
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		types = append(types, ev.Type)
	}
	return types
}

func text(body string) AppendInput {
	return AppendInput{Body: body, Kind: models.MessageKindText}
}

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"automarket/chat/internal/models"

	"gorm.io/gorm"
)

// MaxBodyLength is the longest message body accepted, in characters.
const MaxBodyLength = 1000

// Log is the append-only message history of every room and owns read state.
type Log struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLog returns a Log backed by db.
func NewLog(db *gorm.DB) *Log {
	return &Log{db: db, now: now}
}

// AppendInput is the client-controlled part of a new message.
type AppendInput struct {
	Body               string
	Kind               models.MessageKind
	AttachmentURL      *string
	ReferencedEntityID *uint
}

func (in AppendInput) normalize() (AppendInput, error) {
	in.Body = strings.TrimSpace(in.Body)
	if in.AttachmentURL != nil {
		if url := strings.TrimSpace(*in.AttachmentURL); url == "" {
			in.AttachmentURL = nil
		} else {
			in.AttachmentURL = &url
		}
	}
	if in.ReferencedEntityID != nil && *in.ReferencedEntityID == 0 {
		in.ReferencedEntityID = nil
	}
	if in.Kind == "" {
		in.Kind = models.MessageKindText
	}

	switch in.Kind {
	case models.MessageKindText, models.MessageKindSystem:
	case models.MessageKindImage:
		if in.AttachmentURL == nil {
			return in, fmt.Errorf("%w: image messages need an attachment", ErrInvalidArgument)
		}
	case models.MessageKindEntityReference:
		if in.ReferencedEntityID == nil {
			return in, fmt.Errorf("%w: reference messages need a referenced entity", ErrInvalidArgument)
		}
		if in.Body == "" {
			in.Body = fmt.Sprintf("Shared listing #%d", *in.ReferencedEntityID)
		}
	default:
		return in, fmt.Errorf("%w: unknown message kind %q", ErrInvalidArgument, in.Kind)
	}

	if in.Body == "" && in.AttachmentURL == nil && in.ReferencedEntityID == nil {
		return in, fmt.Errorf("%w: message is empty", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(in.Body) > MaxBodyLength {
		return in, fmt.Errorf("%w: message is longer than %d characters", ErrInvalidArgument, MaxBodyLength)
	}
	return in, nil
}

// Append stores a message from senderID in the room and bumps the room's last
// activity. The room row is locked for the duration so created_at is strictly
// increasing per room and follows commit order, never the client clock.
func (l *Log) Append(ctx context.Context, roomID, senderID uint, in AppendInput) (*models.Message, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var msg models.Message
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := getRoom(tx, roomID, true)
		if err != nil {
			return err
		}
		if !room.Active {
			return fmt.Errorf("%w: room %d is inactive", ErrConflict, roomID)
		}
		member, err := isMember(tx, roomID, senderID)
		if err != nil {
			return err
		}
		if !member {
			return ErrUnauthorized
		}

		createdAt := l.now()
		if !createdAt.After(room.LastActivityAt) {
			createdAt = room.LastActivityAt.Add(time.Microsecond)
		}

		msg = models.Message{
			RoomID:             roomID,
			SenderID:           senderID,
			Body:               in.Body,
			Kind:               in.Kind,
			AttachmentURL:      in.AttachmentURL,
			ReferencedEntityID: in.ReferencedEntityID,
			CreatedAt:          createdAt,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("chat: insert message: %w", err)
		}

		err = tx.Model(&models.Room{}).Where("id = ?", roomID).Update("last_activity_at", createdAt).Error
		if err != nil {
			return fmt.Errorf("chat: bump room activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Direction selects which side of the cursor a page is read from.
type Direction string

const (
	// Before pages towards older messages. Without a cursor it yields the latest page.
	Before Direction = "before"
	// After pages towards newer messages. Without a cursor it yields the oldest page.
	After Direction = "after"
)

// PageRequest asks for one page of a room's history.
type PageRequest struct {
	Cursor    string
	Limit     int
	Direction Direction
}

// MessagePage is a slice of history ordered oldest to newest.
type MessagePage struct {
	Messages   []models.Message
	PrevCursor string // position of the oldest message, to page backwards
	NextCursor string // position of the newest message, to page forwards
	HasMore    bool   // more messages exist in the requested direction
}

// List returns a page of the room's history to a member.
func (l *Log) List(ctx context.Context, roomID, requesterID uint, req PageRequest) (*MessagePage, error) {
	db := l.db.WithContext(ctx)
	if err := requireMember(db, roomID, requesterID); err != nil {
		return nil, err
	}

	_, limit := normalizePage(1, req.Limit)
	var cursor *Cursor
	if req.Cursor != "" {
		c, err := DecodeCursor(req.Cursor)
		if err != nil {
			return nil, err
		}
		cursor = &c
	}

	// created_at and id are assigned under the room lock, so they order
	// a room's messages identically; the keyset uses the id.
	query := db.Where("room_id = ?", roomID)
	var msgs []models.Message
	switch req.Direction {
	case After:
		if cursor != nil {
			query = query.Where("id > ?", cursor.ID)
		}
		if err := query.Order("id ASC").Limit(limit + 1).Find(&msgs).Error; err != nil {
			return nil, fmt.Errorf("chat: list messages: %w", err)
		}
	case Before, "":
		if cursor != nil {
			query = query.Where("id < ?", cursor.ID)
		}
		if err := query.Order("id DESC").Limit(limit + 1).Find(&msgs).Error; err != nil {
			return nil, fmt.Errorf("chat: list messages: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidArgument, req.Direction)
	}

	page := &MessagePage{HasMore: len(msgs) > limit}
	if page.HasMore {
		msgs = msgs[:limit]
	}
	if req.Direction != After {
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
	}
	page.Messages = msgs

	if len(msgs) > 0 {
		page.PrevCursor = CursorFor(msgs[0]).Encode()
		page.NextCursor = CursorFor(msgs[len(msgs)-1]).Encode()
	} else if cursor != nil {
		page.PrevCursor = req.Cursor
		page.NextCursor = req.Cursor
	}
	return page, nil
}

// MarkRead flips every unread message in the room not sent by requesterID.
// A zero upTo covers everything stored so far. Otherwise upTo is resolved to
// the newest message id created no later than it, and only ids up to that
// snapshot change, so messages appended afterwards stay unread. Returns the
// rows changed and the read time recorded on them.
func (l *Log) MarkRead(ctx context.Context, roomID, requesterID uint, upTo time.Time) (int64, time.Time, error) {
	db := l.db.WithContext(ctx)
	if err := requireMember(db, roomID, requesterID); err != nil {
		return 0, time.Time{}, err
	}
	readAt := l.now().UTC()

	q := db.Model(&models.Message{}).
		Where("room_id = ? AND sender_id <> ? AND read = ?", roomID, requesterID, false)
	if !upTo.IsZero() {
		upTo = upTo.UTC()
		snapshot := db.Model(&models.Message{}).
			Select("COALESCE(MAX(id), 0)").
			Where("room_id = ? AND created_at <= ?", roomID, upTo)
		q = q.Where("id <= (?)", snapshot)
		if upTo.Before(readAt) {
			readAt = upTo
		}
	}

	res := q.Updates(map[string]any{"read": true, "read_at": readAt})
	if res.Error != nil {
		return 0, time.Time{}, fmt.Errorf("chat: mark read: %w", res.Error)
	}
	return res.RowsAffected, readAt, nil
}

// UnreadCount counts messages in the room the requester has not read.
func (l *Log) UnreadCount(ctx context.Context, roomID, requesterID uint) (int64, error) {
	db := l.db.WithContext(ctx)
	if err := requireMember(db, roomID, requesterID); err != nil {
		return 0, err
	}

	var count int64
	err := db.Model(&models.Message{}).
		Where("room_id = ? AND read = ? AND sender_id <> ?", roomID, false, requesterID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("chat: unread count: %w", err)
	}
	return count, nil
}

// UnreadCounts returns unread counts for several rooms at once, keyed by room id.
// Rooms without unread messages are absent.
func (l *Log) UnreadCounts(ctx context.Context, roomIDs []uint, userID uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(roomIDs))
	if len(roomIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		RoomID uint
		Count  int64
	}
	err := l.db.WithContext(ctx).Model(&models.Message{}).
		Select("room_id, COUNT(*) AS count").
		Where("room_id IN ? AND read = ? AND sender_id <> ?", roomIDs, false, userID).
		Group("room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("chat: unread counts: %w", err)
	}
	for _, r := range rows {
		counts[r.RoomID] = r.Count
	}
	return counts, nil
}

// UnreadTotal counts unread messages across every room userID belongs to.
func (l *Log) UnreadTotal(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN memberships ON memberships.room_id = messages.room_id AND memberships.user_id = ?", userID).
		Where("messages.read = ? AND messages.sender_id <> ?", false, userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("chat: unread total: %w", err)
	}
	return count, nil
}

// Latest returns the newest message of each room, keyed by room id.
func (l *Log) Latest(ctx context.Context, roomIDs []uint) (map[uint]models.Message, error) {
	latest := make(map[uint]models.Message, len(roomIDs))
	if len(roomIDs) == 0 {
		return latest, nil
	}

	db := l.db.WithContext(ctx)
	newest := db.Model(&models.Message{}).Select("MAX(id)").Where("room_id IN ?", roomIDs).Group("room_id")

	var msgs []models.Message
	if err := db.Where("id IN (?)", newest).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("chat: latest messages: %w", err)
	}
	for _, m := range msgs {
		latest[m.RoomID] = m
	}
	return latest, nil
}

func requireMember(db *gorm.DB, roomID, userID uint) error {
	if _, err := getRoom(db, roomID, false); err != nil {
		return err
	}
	member, err := isMember(db, roomID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrUnauthorized
	}
	return nil
}

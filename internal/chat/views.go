package chat

import (
	"fmt"
	"time"

	"automarket/chat/internal/models"

	"gorm.io/gorm"
)

// RemovedUserName stands in for senders whose account no longer exists.
const RemovedUserName = "Removed user"

// UserView is the public face of a participant.
type UserView struct {
	ID      uint        `json:"id" example:"7"`
	Name    string      `json:"name" example:"Jane Seller"`
	Role    models.Role `json:"role,omitempty" example:"member"`
	Removed bool        `json:"removed,omitempty"`
}

// MessageView is a stored message with its sender resolved.
type MessageView struct {
	ID                 uint               `json:"id" example:"42"`
	RoomID             uint               `json:"room_id" example:"3"`
	Sender             UserView           `json:"sender"`
	Body               string             `json:"body" example:"Is the car still available?"`
	Kind               models.MessageKind `json:"kind" example:"text"`
	AttachmentURL      *string            `json:"attachment_url,omitempty"`
	ReferencedEntityID *uint              `json:"referenced_entity_id,omitempty"`
	Read               bool               `json:"read"`
	ReadAt             *time.Time         `json:"read_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// MessagePageView is one page of history ready for the wire.
type MessagePageView struct {
	Messages   []MessageView `json:"messages"`
	PrevCursor string        `json:"prev_cursor,omitempty"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// RoomView describes a room from the point of view of one member.
type RoomView struct {
	ID          uint            `json:"id" example:"3"`
	Kind        models.RoomKind `json:"kind" example:"private"`
	Name        string          `json:"name" example:"Private Chat"`
	Title       string          `json:"title" example:"Jane Seller"`
	Description string          `json:"description,omitempty"`
	Active      bool            `json:"active"`
	CreatorID   uint            `json:"creator_id"`
	Members     []UserView      `json:"members"`
	LastMessage *MessageView    `json:"last_message,omitempty"`
	UnreadCount int64           `json:"unread_count"`

	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// InboxStats summarizes a user's conversations.
type InboxStats struct {
	Conversations int64 `json:"conversations"`
	Unread        int64 `json:"unread"`
}

func userView(u models.User) UserView {
	if u.ID == 0 || u.DeletedAt.Valid {
		return UserView{ID: u.ID, Name: RemovedUserName, Removed: true}
	}
	return UserView{ID: u.ID, Name: u.Name, Role: u.Role}
}

// usersByID loads users including soft-deleted ones. Ids without a row are absent.
func usersByID(db *gorm.DB, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	ids = dedupe(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Unscoped().Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("chat: load users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func senderView(users map[uint]models.User, id uint) UserView {
	u, ok := users[id]
	if !ok {
		return UserView{ID: id, Name: RemovedUserName, Removed: true}
	}
	return userView(u)
}

func messageView(m models.Message, users map[uint]models.User) MessageView {
	return MessageView{
		ID:                 m.ID,
		RoomID:             m.RoomID,
		Sender:             senderView(users, m.SenderID),
		Body:               m.Body,
		Kind:               m.Kind,
		AttachmentURL:      m.AttachmentURL,
		ReferencedEntityID: m.ReferencedEntityID,
		Read:               m.Read,
		ReadAt:             m.ReadAt,
		CreatedAt:          m.CreatedAt,
	}
}

func messageViews(db *gorm.DB, msgs []models.Message) ([]MessageView, error) {
	ids := make([]uint, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.SenderID)
	}
	users, err := usersByID(db, ids)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView(m, users))
	}
	return views, nil
}

// roomTitle is the room name, or the other participant's name for private rooms.
func roomTitle(room models.Room, members []UserView, viewerID uint) string {
	if room.Kind != models.RoomKindPrivate {
		return room.Name
	}
	for _, m := range members {
		if m.ID != viewerID {
			return m.Name
		}
	}
	return room.Name
}

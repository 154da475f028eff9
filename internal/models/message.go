package models

import "time"

type MessageKind string

const (
	MessageKindText            MessageKind = "text"
	MessageKindImage           MessageKind = "image"
	MessageKindEntityReference MessageKind = "entity_reference"
	MessageKindSystem          MessageKind = "system"
)

// Message is an entry in a room's append-only log. Apart from the read
// transition it is never mutated. SenderID is a weak reference.
type Message struct {
	ID                 uint        `gorm:"primarykey;index:idx_messages_room_seq,priority:2"`
	RoomID             uint        `gorm:"not null;index:idx_messages_room_seq,priority:1;index:idx_messages_room_unread,priority:1"`
	SenderID           uint        `gorm:"not null;index:idx_messages_room_unread,priority:3"`
	Body               string      `gorm:"type:text;not null;default:''"`
	Kind               MessageKind `gorm:"size:30;not null;default:'text'"`
	AttachmentURL      *string     `gorm:"size:1024"`
	ReferencedEntityID *uint
	Read               bool `gorm:"not null;default:false;index:idx_messages_room_unread,priority:2"`
	ReadAt             *time.Time
	CreatedAt          time.Time `gorm:"not null"`
}

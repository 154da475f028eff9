package models

import "time"

type RoomKind string

const (
	RoomKindPrivate RoomKind = "private"
	RoomKindGroup   RoomKind = "group"
)

// Room is a conversation container, either a private pair or a named group.
type Room struct {
	ID          uint     `gorm:"primarykey"`
	Kind        RoomKind `gorm:"size:20;not null;index"`
	Name        string   `gorm:"size:255;not null"`
	Description string
	CreatorID   uint `gorm:"not null;index"`
	Active      bool `gorm:"not null;default:true"`

	// UniqueKey is set for rooms that must exist at most once: "private:<lo>:<hi>"
	// for private pairs and "group:<key>" for designated groups. NULL otherwise.
	UniqueKey *string `gorm:"size:100;uniqueIndex"`

	CreatedAt      time.Time
	LastActivityAt time.Time `gorm:"not null;index"`

	Memberships []Membership `gorm:"constraint:OnDelete:CASCADE;"`
	Messages    []Message    `gorm:"constraint:OnDelete:CASCADE;"`
}

// Membership is the flat room/user association. Rooms own their memberships.
type Membership struct {
	RoomID    uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

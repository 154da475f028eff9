package models

import "gorm.io/gorm"

// Role separates marketplace staff from sellers and customers.
type Role string

const (
	RoleStaff  Role = "staff"
	RoleMember Role = "member"
)

// User is the identity every chat participant resolves to.
// Soft-deleted users keep their ID so historical messages still point at them.
type User struct {
	gorm.Model
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         Role   `gorm:"size:50;not null;default:'member';index"`
	Active       bool   `gorm:"not null;default:true"`
	Approved     bool   `gorm:"not null;default:false"`
}

// IsStaff reports whether the user has the staff role.
func (u User) IsStaff() bool {
	return u.Role == RoleStaff
}

// CanStartChats mirrors the marketplace rule that only staff or approved sellers open conversations.
func (u User) CanStartChats() bool {
	return u.Active && (u.IsStaff() || u.Approved)
}

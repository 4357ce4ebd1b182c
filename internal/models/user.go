package models

import "time"

// Role distinguishes the single family admin from everyone else.
type Role string

// Roles assignable to a user. Exactly one admin account is created at seed
// time; admin-ness lives on the record, not on a well-known email.
const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is a member of the family space.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:160;not null;uniqueIndex" json:"email"`
	FirstName    string    `gorm:"size:64;not null" json:"first_name"`
	LastName     string    `gorm:"size:64;not null" json:"last_name"`
	Alias        string    `gorm:"size:64" json:"alias"`
	Position     string    `gorm:"size:64;not null" json:"position"`
	Role         Role      `gorm:"size:16;not null;default:member" json:"role"`
	ProfileImage string    `gorm:"size:512" json:"profile_image"`
	Status       string    `gorm:"size:160" json:"status"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Location     string    `gorm:"size:128" json:"location"`
	Phone        string    `gorm:"size:32" json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the alias when set, otherwise the first name.
func (u User) DisplayName() string {
	if u.Alias != "" {
		return u.Alias
	}
	return u.FirstName
}

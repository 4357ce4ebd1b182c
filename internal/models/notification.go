package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an in-app message targeted at a single recipient.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"index;not null" json:"user_id"`
	Content   string            `gorm:"type:text;not null" json:"content"`
	Link      string            `gorm:"size:255" json:"link"`
	IsRead    bool              `gorm:"not null;default:false" json:"is_read"`
	Data      datatypes.JSONMap `gorm:"type:json" json:"data"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

// PushSubscription stores a browser Web Push endpoint for a user. The
// endpoint is globally unique; re-subscribing upserts the keys.
type PushSubscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Endpoint  string    `gorm:"size:512;not null;uniqueIndex" json:"endpoint"`
	P256dh    string    `gorm:"size:255;not null" json:"p256dh"`
	Auth      string    `gorm:"size:255;not null" json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

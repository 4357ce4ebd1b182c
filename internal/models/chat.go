package models

import "time"

// ChatMessage is a message in the shared family room. ReplyToID is nulled
// out, never cascaded, when the referenced message's author is removed.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	ReplyToID *uint     `gorm:"index" json:"reply_to_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Author    User              `gorm:"foreignKey:AuthorID" json:"author"`
	ReplyTo   *ChatMessage      `gorm:"foreignKey:ReplyToID" json:"reply_to,omitempty"`
	Reactions []MessageReaction `gorm:"foreignKey:MessageID" json:"reactions,omitempty"`
}

// MessageReaction is an emoji applied by a user to a chat message.
// Uniqueness is on the (message, user, emoji) triple so a user may hold
// several distinct emoji on the same message.
type MessageReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"not null;uniqueIndex:idx_message_reaction" json:"message_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_message_reaction" json:"user_id"`
	Emoji     string    `gorm:"size:32;not null;uniqueIndex:idx_message_reaction" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

// Post is a feed entry. Title and IsUrgent carry meaning only when
// IsAnnouncement is set; the feed contract ignores them otherwise.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AuthorID       uint      `gorm:"index;not null" json:"author_id"`
	Title          string    `gorm:"size:255" json:"title"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	MediaURL       string    `gorm:"size:512" json:"media_url"`
	MediaType      string    `gorm:"size:16" json:"media_type"`
	IsAnnouncement bool      `gorm:"index" json:"is_announcement"`
	IsUrgent       bool      `json:"is_urgent"`
	IsEdited       bool      `json:"is_edited"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Likes    []PostLike `gorm:"foreignKey:PostID" json:"likes,omitempty"`
}

// PostLike joins a user and a post. At most one row per (post, user);
// the unique index is the backstop for the toggle race.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostDismissal records that a user hid an urgent announcement from their
// own pinned view. Duplicate dismissals are a no-op.
type PostDismissal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_dismissal" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_dismissal" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

// Comment belongs to one post and optionally to a parent comment in the
// same post, forming a tree of arbitrary depth. The tree is stored flat
// and reassembled at read time.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User          `gorm:"foreignKey:AuthorID" json:"author"`
	Likes  []CommentLike `gorm:"foreignKey:CommentID" json:"likes,omitempty"`
}

// CommentLike joins a user and a comment, unique per pair.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_like" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_like" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

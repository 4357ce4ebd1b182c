package models

import "time"

// Testimonial is a short appreciation shown on the landing page. The read
// path redacts author identity for unauthenticated viewers; the stored
// row is never modified by redaction.
type Testimonial struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"author"`
}

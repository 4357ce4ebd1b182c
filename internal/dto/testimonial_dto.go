package dto

import (
	"time"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// CreateTestimonialRequest submits a member's testimonial.
type CreateTestimonialRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// TestimonialResponse is the public view of a testimonial. For guests the
// author name and any names inside the content are redacted before this
// shape is built.
type TestimonialResponse struct {
	ID         uint      `json:"id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewTestimonialResponse converts a testimonial into its API shape using
// the already-resolved author name.
func NewTestimonialResponse(testimonial models.Testimonial, authorName string) TestimonialResponse {
	return TestimonialResponse{
		ID:         testimonial.ID,
		AuthorName: authorName,
		Content:    testimonial.Content,
		CreatedAt:  testimonial.CreatedAt,
	}
}

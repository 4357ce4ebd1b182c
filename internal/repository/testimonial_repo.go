package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/models"
)

// TestimonialRepository persists member testimonials.
type TestimonialRepository interface {
	Create(ctx context.Context, testimonial *models.Testimonial) error
	// ListRecent returns the newest testimonials with their authors
	// preloaded, most recent first.
	ListRecent(ctx context.Context, limit int) ([]models.Testimonial, error)
}

type testimonialRepository struct {
	db *gorm.DB
}

// NewTestimonialRepository constructs a GORM-backed repository.
func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &testimonialRepository{db: db}
}

func (r *testimonialRepository) Create(ctx context.Context, testimonial *models.Testimonial) error {
	return r.db.WithContext(ctx).Create(testimonial).Error
}

func (r *testimonialRepository) ListRecent(ctx context.Context, limit int) ([]models.Testimonial, error) {
	q := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []models.Testimonial
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

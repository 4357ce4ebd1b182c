package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/repository"
)

// What guests see instead of a member's name.
const redactedName = "Family Member"

// The public wall shows only the newest entries.
const recentTestimonialLimit = 6

// TestimonialService exposes the testimonial wall. The wall is readable
// by guests, so listing can redact member names.
type TestimonialService interface {
	Submit(ctx context.Context, authorID uint, payload dto.CreateTestimonialRequest) (dto.TestimonialResponse, error)
	// List returns the recent testimonials. When the viewer is a guest,
	// author names and any member names inside the content are redacted.
	List(ctx context.Context, viewerIsMember bool) ([]dto.TestimonialResponse, error)
}

type testimonialService struct {
	repo      repository.TestimonialRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// NewTestimonialService constructs the testimonial service.
func NewTestimonialService(
	repo repository.TestimonialRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) TestimonialService {
	return &testimonialService{
		repo:      repo,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "testimonial_service").Logger(),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *testimonialService) Submit(ctx context.Context, authorID uint, payload dto.CreateTestimonialRequest) (dto.TestimonialResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestimonialResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.TestimonialResponse{}, ErrEmptyContent
	}

	testimonial := models.Testimonial{
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.repo.Create(ctx, &testimonial); err != nil {
		return dto.TestimonialResponse{}, err
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return dto.TestimonialResponse{}, err
	}

	s.logger.Info().Uint("testimonial_id", testimonial.ID).Msg("testimonial submitted")
	return dto.NewTestimonialResponse(testimonial, author.DisplayName()), nil
}

func (s *testimonialService) List(ctx context.Context, viewerIsMember bool) ([]dto.TestimonialResponse, error) {
	testimonials, err := s.repo.ListRecent(ctx, recentTestimonialLimit)
	if err != nil {
		return nil, err
	}

	if viewerIsMember {
		out := make([]dto.TestimonialResponse, 0, len(testimonials))
		for _, t := range testimonials {
			out = append(out, dto.NewTestimonialResponse(t, t.Author.DisplayName()))
		}
		return out, nil
	}

	members, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	namePattern := buildNamePattern(members)

	out := make([]dto.TestimonialResponse, 0, len(testimonials))
	for _, t := range testimonials {
		content := t.Content
		if namePattern != nil {
			content = namePattern.ReplaceAllString(content, redactedName)
		}
		redacted := t
		redacted.Content = content
		out = append(out, dto.NewTestimonialResponse(redacted, redactedName))
	}
	return out, nil
}

// buildNamePattern compiles a whole-word, case-insensitive matcher over
// every member name part. Nil when no usable names exist.
func buildNamePattern(members []models.User) *regexp.Regexp {
	seen := make(map[string]struct{})
	parts := make([]string, 0)
	add := func(name string) {
		name = strings.TrimSpace(name)
		// Single characters would redact far too much.
		if len(name) < 2 {
			return
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		parts = append(parts, regexp.QuoteMeta(name))
	}

	for _, member := range members {
		add(member.FirstName)
		add(member.LastName)
		add(member.Alias)
	}

	if len(parts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/observability"
	"github.com/lovemyfam/common-room-api/internal/repository"
)

var (
	// ErrFeedForbidden indicates the user may not mutate this post.
	ErrFeedForbidden = errors.New("insufficient permissions for feed operation")
	// ErrAlreadyEdited indicates a regular post has used its single edit.
	ErrAlreadyEdited = errors.New("post has already been edited")
	// ErrEditWindowExpired indicates the edit window has passed.
	ErrEditWindowExpired = errors.New("edit window has expired")
	// ErrNotDismissable indicates dismissal of a non-urgent entry.
	ErrNotDismissable = errors.New("only urgent announcements can be dismissed")
	// ErrEmptyContent indicates the content vanished after sanitization.
	ErrEmptyContent = errors.New("content empty after sanitization")
)

// Regular posts get one edit, and only this long after publishing.
// Announcements are exempt.
const postEditWindow = 10 * time.Minute

// How many carousel announcements the feed carries.
const feedAnnouncementLimit = 10

// NotificationPublisher is the slice of the notification service the
// content services need.
type NotificationPublisher interface {
	Publish(ctx context.Context, userID uint, trigger, content, link string, data map[string]any) error
}

// FeedService exposes the home feed use-cases.
type FeedService interface {
	Feed(ctx context.Context, viewerID uint, limit, offset int) (dto.FeedResponse, error)
	GetPost(ctx context.Context, id, viewerID uint) (dto.PostResponse, error)
	CreatePost(ctx context.Context, authorID uint, payload dto.CreatePostRequest) (dto.PostResponse, error)
	CreateAnnouncement(ctx context.Context, authorID uint, role models.Role, payload dto.CreateAnnouncementRequest) (dto.PostResponse, error)
	EditPost(ctx context.Context, id, editorID uint, payload dto.EditPostRequest) (dto.PostResponse, error)
	DeletePost(ctx context.Context, id, userID uint, role models.Role) error
	Dismiss(ctx context.Context, postID, userID uint) error
	ToggleLike(ctx context.Context, postID, userID uint) (dto.LikeResponse, error)
}

type feedService struct {
	repo          repository.PostRepository
	users         repository.UserRepository
	notifications NotificationPublisher
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sanitizer     *bluemonday.Policy
	now           func() time.Time
}

// NewFeedService constructs the feed service.
func NewFeedService(
	repo repository.PostRepository,
	users repository.UserRepository,
	notifications NotificationPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) FeedService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &feedService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "feed_service").Logger(),
		tracer:        otel.Tracer("github.com/lovemyfam/common-room-api/internal/service/feed"),
		sanitizer:     policy,
		now:           time.Now,
	}
}

func (s *feedService) Feed(ctx context.Context, viewerID uint, limit, offset int) (dto.FeedResponse, error) {
	announcements, err := s.repo.ListAnnouncements(ctx, feedAnnouncementLimit)
	if err != nil {
		return dto.FeedResponse{}, err
	}

	pinned, err := s.repo.ListUrgentUndismissed(ctx, viewerID)
	if err != nil {
		return dto.FeedResponse{}, err
	}

	posts, err := s.repo.ListRegular(ctx, limit, offset)
	if err != nil {
		return dto.FeedResponse{}, err
	}

	return dto.FeedResponse{
		Announcements: dto.NewPostResponseSlice(announcements, viewerID),
		Pinned:        dto.NewPostResponseSlice(pinned, viewerID),
		Posts:         dto.NewPostResponseSlice(posts, viewerID),
	}, nil
}

func (s *feedService) GetPost(ctx context.Context, id, viewerID uint) (dto.PostResponse, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.PostResponse{}, err
	}
	return dto.NewPostResponse(post, viewerID), nil
}

func (s *feedService) CreatePost(ctx context.Context, authorID uint, payload dto.CreatePostRequest) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.PostResponse{}, ErrEmptyContent
	}

	spanCtx, span := s.tracer.Start(ctx, "feed.create_post", trace.WithAttributes(
		attribute.Int64("feed.author_id", int64(authorID)),
	))
	defer span.End()

	post := models.Post{
		AuthorID:  authorID,
		Content:   content,
		MediaURL:  payload.MediaURL,
		MediaType: payload.MediaType,
	}

	if err := s.repo.Create(spanCtx, &post); err != nil {
		span.RecordError(err)
		return dto.PostResponse{}, err
	}

	observability.PostsCreated().WithLabelValues("post").Inc()
	s.logger.Info().Uint("post_id", post.ID).Uint("author_id", authorID).Msg("post created")

	created, err := s.repo.GetByID(spanCtx, post.ID)
	if err != nil {
		return dto.PostResponse{}, err
	}
	return dto.NewPostResponse(created, authorID), nil
}

func (s *feedService) CreateAnnouncement(ctx context.Context, authorID uint, role models.Role, payload dto.CreateAnnouncementRequest) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}
	if role != models.RoleAdmin {
		return dto.PostResponse{}, ErrFeedForbidden
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if title == "" || content == "" {
		return dto.PostResponse{}, ErrEmptyContent
	}

	spanCtx, span := s.tracer.Start(ctx, "feed.create_announcement", trace.WithAttributes(
		attribute.Int64("feed.author_id", int64(authorID)),
		attribute.Bool("feed.urgent", payload.IsUrgent),
	))
	defer span.End()

	post := models.Post{
		AuthorID:       authorID,
		Title:          title,
		Content:        content,
		IsAnnouncement: true,
		IsUrgent:       payload.IsUrgent,
	}

	if err := s.repo.Create(spanCtx, &post); err != nil {
		span.RecordError(err)
		return dto.PostResponse{}, err
	}

	observability.PostsCreated().WithLabelValues("announcement").Inc()
	s.logger.Info().Uint("post_id", post.ID).Bool("urgent", post.IsUrgent).Msg("announcement created")

	s.notifyAnnouncement(spanCtx, post)

	created, err := s.repo.GetByID(spanCtx, post.ID)
	if err != nil {
		return dto.PostResponse{}, err
	}
	return dto.NewPostResponse(created, authorID), nil
}

func (s *feedService) EditPost(ctx context.Context, id, editorID uint, payload dto.EditPostRequest) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.PostResponse{}, err
	}

	// Editing is strictly the author's own right. The admin can delete
	// anything but never rewrite someone else's words.
	if post.AuthorID != editorID {
		return dto.PostResponse{}, ErrFeedForbidden
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.PostResponse{}, ErrEmptyContent
	}

	if !post.IsAnnouncement {
		if post.IsEdited {
			return dto.PostResponse{}, ErrAlreadyEdited
		}
		if s.now().Sub(post.CreatedAt) > postEditWindow {
			return dto.PostResponse{}, ErrEditWindowExpired
		}
		post.IsEdited = true
	}

	post.Content = content
	if post.IsAnnouncement {
		if payload.Title != "" {
			title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
			if title == "" {
				return dto.PostResponse{}, ErrEmptyContent
			}
			post.Title = title
		}
		if payload.IsUrgent != nil {
			post.IsUrgent = *payload.IsUrgent
		}
	}

	if err := s.repo.Update(ctx, &post); err != nil {
		return dto.PostResponse{}, err
	}

	s.logger.Info().Uint("post_id", post.ID).Msg("post edited")
	return dto.NewPostResponse(post, editorID), nil
}

func (s *feedService) DeletePost(ctx context.Context, id, userID uint, role models.Role) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if post.AuthorID != userID && role != models.RoleAdmin {
		return ErrFeedForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("post_id", id).Uint("deleted_by", userID).Msg("post deleted")
	return nil
}

func (s *feedService) Dismiss(ctx context.Context, postID, userID uint) error {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !post.IsAnnouncement || !post.IsUrgent {
		return ErrNotDismissable
	}

	return s.repo.Dismiss(ctx, postID, userID)
}

func (s *feedService) ToggleLike(ctx context.Context, postID, userID uint) (dto.LikeResponse, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return dto.LikeResponse{}, err
	}

	liked, err := s.repo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return dto.LikeResponse{}, err
	}

	if liked && post.AuthorID != userID {
		liker, lookupErr := s.users.GetByID(ctx, userID)
		if lookupErr == nil {
			s.dispatchNotification(ctx, post.AuthorID, "post_like",
				fmt.Sprintf("%s liked your post", liker.DisplayName()),
				fmt.Sprintf("/common-room/%d", postID))
		}
	}

	return dto.LikeResponse{Liked: liked}, nil
}

// notifyAnnouncement fans the announcement out to every other member.
func (s *feedService) notifyAnnouncement(ctx context.Context, post models.Post) {
	members, err := s.users.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("listing members for announcement failed")
		return
	}

	content := fmt.Sprintf("New announcement: %s", post.Title)
	link := fmt.Sprintf("/common-room/%d", post.ID)
	for _, member := range members {
		if member.ID == post.AuthorID {
			continue
		}
		s.dispatchNotification(ctx, member.ID, "announcement", content, link)
	}
}

func (s *feedService) dispatchNotification(ctx context.Context, userID uint, trigger, content, link string) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Publish(ctx, userID, trigger, content, link, nil); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Str("trigger", trigger).Msg("notification dispatch failed")
	}
}

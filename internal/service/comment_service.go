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
	"github.com/lovemyfam/common-room-api/internal/repository"
)

var (
	// ErrCommentForbidden indicates the user may not mutate this comment.
	ErrCommentForbidden = errors.New("insufficient permissions for comment operation")
	// ErrParentMismatch indicates the reply target lives on another post.
	ErrParentMismatch = errors.New("parent comment belongs to a different post")
)

// CommentService exposes the comment thread use-cases.
type CommentService interface {
	ListByPost(ctx context.Context, postID, viewerID uint) ([]dto.CommentResponse, error)
	Add(ctx context.Context, postID, authorID uint, payload dto.CreateCommentRequest) (dto.CommentResponse, error)
	Edit(ctx context.Context, id, editorID uint, payload dto.EditCommentRequest) (dto.CommentResponse, error)
	// Delete removes a comment and its whole reply subtree. Unlike posts,
	// comments are only ever removed by their author; the admin moderates
	// at the post level.
	Delete(ctx context.Context, id, userID uint) error
	ToggleLike(ctx context.Context, id, userID uint) (dto.LikeResponse, error)
}

type commentService struct {
	repo          repository.CommentRepository
	posts         repository.PostRepository
	users         repository.UserRepository
	notifications NotificationPublisher
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sanitizer     *bluemonday.Policy
	now           func() time.Time
}

// NewCommentService constructs the comment service.
func NewCommentService(
	repo repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	notifications NotificationPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) CommentService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &commentService{
		repo:          repo,
		posts:         posts,
		users:         users,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "comment_service").Logger(),
		tracer:        otel.Tracer("github.com/lovemyfam/common-room-api/internal/service/comment"),
		sanitizer:     policy,
		now:           time.Now,
	}
}

func (s *commentService) ListByPost(ctx context.Context, postID, viewerID uint) ([]dto.CommentResponse, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentTree(comments, viewerID), nil
}

func (s *commentService) Add(ctx context.Context, postID, authorID uint, payload dto.CreateCommentRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.CommentResponse{}, ErrEmptyContent
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	var parent models.Comment
	if payload.ParentID != nil {
		parent, err = s.repo.GetByID(ctx, *payload.ParentID)
		if err != nil {
			return dto.CommentResponse{}, err
		}
		if parent.PostID != postID {
			return dto.CommentResponse{}, ErrParentMismatch
		}
	}

	spanCtx, span := s.tracer.Start(ctx, "comment.add", trace.WithAttributes(
		attribute.Int64("comment.post_id", int64(postID)),
		attribute.Int64("comment.author_id", int64(authorID)),
	))
	defer span.End()

	comment := models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		ParentID: payload.ParentID,
		Content:  content,
	}

	if err := s.repo.Create(spanCtx, &comment); err != nil {
		span.RecordError(err)
		return dto.CommentResponse{}, err
	}

	s.logger.Info().Uint("comment_id", comment.ID).Uint("post_id", postID).Msg("comment added")
	s.notifyThread(spanCtx, post, parent, comment)

	created, err := s.repo.GetByID(spanCtx, comment.ID)
	if err != nil {
		return dto.CommentResponse{}, err
	}
	return dto.NewCommentResponse(created, authorID), nil
}

func (s *commentService) Edit(ctx context.Context, id, editorID uint, payload dto.EditCommentRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.CommentResponse{}, err
	}
	if comment.AuthorID != editorID {
		return dto.CommentResponse{}, ErrCommentForbidden
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.CommentResponse{}, ErrEmptyContent
	}

	comment.Content = content
	if err := s.repo.Update(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	return dto.NewCommentResponse(comment, editorID), nil
}

func (s *commentService) Delete(ctx context.Context, id, userID uint) error {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return ErrCommentForbidden
	}

	if err := s.repo.DeleteSubtree(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("comment_id", id).Uint("deleted_by", userID).Msg("comment thread deleted")
	return nil
}

func (s *commentService) ToggleLike(ctx context.Context, id, userID uint) (dto.LikeResponse, error) {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.LikeResponse{}, err
	}

	liked, err := s.repo.ToggleLike(ctx, id, userID)
	if err != nil {
		return dto.LikeResponse{}, err
	}

	if liked && comment.AuthorID != userID {
		liker, lookupErr := s.users.GetByID(ctx, userID)
		if lookupErr == nil {
			s.dispatch(ctx, comment.AuthorID, "comment_like",
				fmt.Sprintf("%s liked your comment", liker.DisplayName()),
				fmt.Sprintf("/common-room/%d", comment.PostID))
		}
	}

	return dto.LikeResponse{Liked: liked}, nil
}

// notifyThread tells the post author about new comments and the parent
// author about replies. Self-notifications are skipped.
func (s *commentService) notifyThread(ctx context.Context, post models.Post, parent models.Comment, comment models.Comment) {
	author, err := s.users.GetByID(ctx, comment.AuthorID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("resolving comment author failed")
		return
	}

	link := fmt.Sprintf("/common-room/%d", post.ID)

	if comment.ParentID != nil {
		if parent.AuthorID != comment.AuthorID {
			s.dispatch(ctx, parent.AuthorID, "comment_reply",
				fmt.Sprintf("%s replied to your comment", author.DisplayName()), link)
		}
		return
	}

	if post.AuthorID != comment.AuthorID {
		s.dispatch(ctx, post.AuthorID, "post_comment",
			fmt.Sprintf("%s commented on your post", author.DisplayName()), link)
	}
}

func (s *commentService) dispatch(ctx context.Context, userID uint, trigger, content, link string) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Publish(ctx, userID, trigger, content, link, nil); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Str("trigger", trigger).Msg("notification dispatch failed")
	}
}

package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/repository"
)

var (
	// ErrMemberForbidden indicates the user may not touch this profile.
	ErrMemberForbidden = errors.New("insufficient permissions for member operation")
	// ErrSelfDelete indicates the admin tried to remove their own account.
	ErrSelfDelete = errors.New("admin cannot remove their own account")
	// ErrUnsupportedMedia indicates the uploaded file is neither image nor video.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrProfileFieldRequired indicates an attempt to blank a required field.
	ErrProfileFieldRequired = errors.New("first name, last name and position cannot be empty")
)

// FileStorage stores uploaded media and returns its public URL along with
// a thumbnail variant.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, string, error)
}

// MemberService exposes the family directory use-cases.
type MemberService interface {
	List(ctx context.Context) ([]dto.MemberResponse, error)
	Get(ctx context.Context, id uint) (dto.MemberResponse, error)
	UpdateDetails(ctx context.Context, id, actorID uint, role models.Role, payload dto.UpdateMemberRequest) (dto.MemberResponse, error)
	UpdatePhoto(ctx context.Context, id, actorID uint, role models.Role, filename string, reader io.Reader) (dto.MemberResponse, error)
	// Remove deletes a member and everything they authored. Admin only,
	// and never the admin's own account.
	Remove(ctx context.Context, targetID, actorID uint, role models.Role) error
}

type memberService struct {
	repo      repository.UserRepository
	storage   FileStorage
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewMemberService constructs the member service. Storage may be nil when
// no upload backend is configured; photo updates then fail cleanly.
func NewMemberService(
	repo repository.UserRepository,
	storage FileStorage,
	validate *validator.Validate,
	logger zerolog.Logger,
) MemberService {
	return &memberService{
		repo:      repo,
		storage:   storage,
		validator: validate,
		logger:    logger.With().Str("component", "member_service").Logger(),
		tracer:    otel.Tracer("github.com/lovemyfam/common-room-api/internal/service/member"),
	}
}

func (s *memberService) List(ctx context.Context) ([]dto.MemberResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewMemberResponseSlice(users), nil
}

func (s *memberService) Get(ctx context.Context, id uint) (dto.MemberResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.MemberResponse{}, err
	}
	return dto.NewMemberResponse(user), nil
}

func (s *memberService) UpdateDetails(ctx context.Context, id, actorID uint, role models.Role, payload dto.UpdateMemberRequest) (dto.MemberResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MemberResponse{}, err
	}
	if id != actorID && role != models.RoleAdmin {
		return dto.MemberResponse{}, ErrMemberForbidden
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.MemberResponse{}, err
	}

	applyProfileUpdate(&user, payload)
	if user.FirstName == "" || user.LastName == "" || user.Position == "" {
		return dto.MemberResponse{}, ErrProfileFieldRequired
	}

	if err := s.repo.Update(ctx, &user); err != nil {
		return dto.MemberResponse{}, err
	}

	s.logger.Info().Uint("user_id", id).Msg("profile updated")
	return dto.NewMemberResponse(user), nil
}

func (s *memberService) UpdatePhoto(ctx context.Context, id, actorID uint, role models.Role, filename string, reader io.Reader) (dto.MemberResponse, error) {
	if id != actorID && role != models.RoleAdmin {
		return dto.MemberResponse{}, ErrMemberForbidden
	}
	if s.storage == nil {
		return dto.MemberResponse{}, errors.New("no upload backend configured")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.MemberResponse{}, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return dto.MemberResponse{}, err
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return dto.MemberResponse{}, ErrUnsupportedMedia
	}

	spanCtx, span := s.tracer.Start(ctx, "member.update_photo", trace.WithAttributes(
		attribute.Int64("member.id", int64(id)),
	))
	defer span.End()

	url, _, err := s.storage.Upload(spanCtx, filename, bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		return dto.MemberResponse{}, err
	}

	user.ProfileImage = url
	if err := s.repo.Update(spanCtx, &user); err != nil {
		return dto.MemberResponse{}, err
	}

	s.logger.Info().Uint("user_id", id).Msg("profile photo updated")
	return dto.NewMemberResponse(user), nil
}

func (s *memberService) Remove(ctx context.Context, targetID, actorID uint, role models.Role) error {
	if role != models.RoleAdmin {
		return ErrMemberForbidden
	}
	if targetID == actorID {
		return ErrSelfDelete
	}

	start := time.Now()
	if err := s.repo.DeleteWithContent(ctx, targetID); err != nil {
		return err
	}

	s.logger.Info().
		Uint("user_id", targetID).
		Uint("removed_by", actorID).
		Dur("took", time.Since(start)).
		Msg("member removed with all content")
	return nil
}

func applyProfileUpdate(user *models.User, payload dto.UpdateMemberRequest) {
	if payload.FirstName != nil {
		user.FirstName = strings.TrimSpace(*payload.FirstName)
	}
	if payload.LastName != nil {
		user.LastName = strings.TrimSpace(*payload.LastName)
	}
	if payload.Position != nil {
		user.Position = strings.TrimSpace(*payload.Position)
	}
	if payload.Alias != nil {
		user.Alias = strings.TrimSpace(*payload.Alias)
	}
	if payload.Status != nil {
		user.Status = strings.TrimSpace(*payload.Status)
	}
	if payload.Bio != nil {
		user.Bio = strings.TrimSpace(*payload.Bio)
	}
	if payload.Location != nil {
		user.Location = strings.TrimSpace(*payload.Location)
	}
	if payload.Phone != nil {
		user.Phone = strings.TrimSpace(*payload.Phone)
	}
}

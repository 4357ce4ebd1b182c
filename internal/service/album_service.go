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
	// ErrAlbumForbidden indicates the user may not touch this media item.
	ErrAlbumForbidden = errors.New("insufficient permissions for album operation")
	// ErrAltTextRequired indicates an upload without a description.
	ErrAltTextRequired = errors.New("alt text is required for album media")
	// ErrAltTextWindowExpired indicates the uploader's edit window passed.
	ErrAltTextWindowExpired = errors.New("alt text edit window has expired")
)

// Uploaders can fix their own alt text this long after upload. The admin
// is exempt.
const altTextEditWindow = 15 * time.Minute

// AlbumService exposes the shared family album use-cases.
type AlbumService interface {
	Upload(ctx context.Context, uploaderID uint, filename, altText string, reader io.Reader) (dto.AlbumMediaResponse, error)
	List(ctx context.Context, limit, offset int) (dto.AlbumPageResponse, error)
	UpdateAltText(ctx context.Context, id, actorID uint, role models.Role, payload dto.UpdateAltTextRequest) (dto.AlbumMediaResponse, error)
	Delete(ctx context.Context, id, actorID uint, role models.Role) error
}

type albumService struct {
	repo      repository.AlbumRepository
	storage   FileStorage
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAlbumService constructs the album service.
func NewAlbumService(
	repo repository.AlbumRepository,
	storage FileStorage,
	validate *validator.Validate,
	logger zerolog.Logger,
) AlbumService {
	return &albumService{
		repo:      repo,
		storage:   storage,
		validator: validate,
		logger:    logger.With().Str("component", "album_service").Logger(),
		tracer:    otel.Tracer("github.com/lovemyfam/common-room-api/internal/service/album"),
		now:       time.Now,
	}
}

func (s *albumService) Upload(ctx context.Context, uploaderID uint, filename, altText string, reader io.Reader) (dto.AlbumMediaResponse, error) {
	altText = strings.TrimSpace(altText)
	if altText == "" {
		return dto.AlbumMediaResponse{}, ErrAltTextRequired
	}
	if s.storage == nil {
		return dto.AlbumMediaResponse{}, errors.New("no upload backend configured")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return dto.AlbumMediaResponse{}, err
	}

	mediaType, err := classifyMedia(data)
	if err != nil {
		return dto.AlbumMediaResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "album.upload", trace.WithAttributes(
		attribute.Int64("album.uploader_id", int64(uploaderID)),
		attribute.String("album.type", mediaType),
	))
	defer span.End()

	url, thumbnail, err := s.storage.Upload(spanCtx, filename, bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		return dto.AlbumMediaResponse{}, err
	}

	media := models.AlbumMedia{
		UploaderID:   uploaderID,
		URL:          url,
		ThumbnailURL: thumbnail,
		Type:         mediaType,
		AltText:      altText,
	}

	if err := s.repo.Create(spanCtx, &media); err != nil {
		span.RecordError(err)
		return dto.AlbumMediaResponse{}, err
	}

	s.logger.Info().Uint("media_id", media.ID).Str("type", mediaType).Msg("album media uploaded")

	created, err := s.repo.GetByID(spanCtx, media.ID)
	if err != nil {
		return dto.AlbumMediaResponse{}, err
	}
	return dto.NewAlbumMediaResponse(created), nil
}

func (s *albumService) List(ctx context.Context, limit, offset int) (dto.AlbumPageResponse, error) {
	items, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return dto.AlbumPageResponse{}, err
	}
	return dto.AlbumPageResponse{
		Items: dto.NewAlbumMediaResponseSlice(items),
		Total: total,
	}, nil
}

func (s *albumService) UpdateAltText(ctx context.Context, id, actorID uint, role models.Role, payload dto.UpdateAltTextRequest) (dto.AlbumMediaResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AlbumMediaResponse{}, err
	}

	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AlbumMediaResponse{}, err
	}

	if role != models.RoleAdmin {
		if media.UploaderID != actorID {
			return dto.AlbumMediaResponse{}, ErrAlbumForbidden
		}
		if s.now().Sub(media.CreatedAt) > altTextEditWindow {
			return dto.AlbumMediaResponse{}, ErrAltTextWindowExpired
		}
	}

	media.AltText = strings.TrimSpace(payload.AltText)
	if err := s.repo.Update(ctx, &media); err != nil {
		return dto.AlbumMediaResponse{}, err
	}

	return dto.NewAlbumMediaResponse(media), nil
}

func (s *albumService) Delete(ctx context.Context, id, actorID uint, role models.Role) error {
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if media.UploaderID != actorID && role != models.RoleAdmin {
		return ErrAlbumForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("media_id", id).Uint("deleted_by", actorID).Msg("album media deleted")
	return nil
}

// classifyMedia sniffs the upload and maps it onto the album's two kinds.
func classifyMedia(data []byte) (string, error) {
	detected := mimetype.Detect(data).String()
	switch {
	case strings.HasPrefix(detected, "image/"):
		return models.MediaTypeImage, nil
	case strings.HasPrefix(detected, "video/"):
		return models.MediaTypeVideo, nil
	default:
		return "", ErrUnsupportedMedia
	}
}

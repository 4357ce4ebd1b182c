package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/middleware"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/repository"
)

var (
	// ErrWrongSecret indicates the family secret did not match.
	ErrWrongSecret = errors.New("family secret does not match")
	// ErrUnknownMember indicates no member exists for the given email.
	ErrUnknownMember = errors.New("no member registered with this email")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrSecretTooShort indicates a rotation attempt below the minimum length.
	ErrSecretTooShort = errors.New("family secret must be at least 4 characters")
	// ErrAdminOnly indicates the operation is reserved for the admin.
	ErrAdminOnly = errors.New("operation restricted to the family admin")
)

// minSecretLength applies to rotated secrets, not the legacy bypass.
const minSecretLength = 4

// AuthService gates entry to the room and manages the family secret.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.SessionResponse, string, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.SessionResponse, string, error)
	CheckSecret(ctx context.Context, payload dto.CheckSecretRequest) error
	UpdateFamilySecret(ctx context.Context, role models.Role, payload dto.UpdateSecretRequest) error
}

type authService struct {
	users         repository.UserRepository
	settings      repository.SettingsRepository
	chat          repository.ChatRepository
	mailer        Mailer
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sessionSecret string
	sessionTTL    time.Duration
	now           func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(
	users repository.UserRepository,
	settings repository.SettingsRepository,
	chat repository.ChatRepository,
	mailer Mailer,
	validate *validator.Validate,
	logger zerolog.Logger,
	sessionSecret string,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		users:         users,
		settings:      settings,
		chat:          chat,
		mailer:        mailer,
		validator:     validate,
		logger:        logger.With().Str("component", "auth_service").Logger(),
		tracer:        otel.Tracer("github.com/lovemyfam/common-room-api/internal/service/auth"),
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
		now:           time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.SessionResponse, string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, "", err
	}

	if err := s.verifySecret(ctx, payload.FamilySecret); err != nil {
		return dto.SessionResponse{}, "", err
	}

	spanCtx, span := s.tracer.Start(ctx, "auth.register", trace.WithAttributes(
		attribute.String("auth.email", strings.ToLower(payload.Email)),
	))
	defer span.End()

	user := models.User{
		Email:     payload.Email,
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Position:  strings.TrimSpace(payload.Position),
		Alias:     strings.TrimSpace(payload.Alias),
		Role:      models.RoleMember,
	}
	if user.Alias == "" {
		user.Alias = user.FirstName
	}

	if err := s.users.Create(spanCtx, &user); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SessionResponse{}, "", ErrEmailTaken
		}
		return dto.SessionResponse{}, "", err
	}

	token, err := middleware.NewSessionToken(s.sessionSecret, user.ID, s.sessionTTL)
	if err != nil {
		return dto.SessionResponse{}, "", err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("member registered")
	s.welcomeNewMember(user)

	return dto.NewSessionResponse(user), token, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.SessionResponse, string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, "", err
	}

	if err := s.verifySecret(ctx, payload.FamilySecret); err != nil {
		return dto.SessionResponse{}, "", err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, "", ErrUnknownMember
		}
		return dto.SessionResponse{}, "", err
	}

	token, err := middleware.NewSessionToken(s.sessionSecret, user.ID, s.sessionTTL)
	if err != nil {
		return dto.SessionResponse{}, "", err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("member logged in")

	return dto.NewSessionResponse(user), token, nil
}

func (s *authService) CheckSecret(ctx context.Context, payload dto.CheckSecretRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	return s.verifySecret(ctx, payload.FamilySecret)
}

func (s *authService) UpdateFamilySecret(ctx context.Context, role models.Role, payload dto.UpdateSecretRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	if role != models.RoleAdmin {
		return ErrAdminOnly
	}

	secret := strings.TrimSpace(payload.FamilySecret)
	if len(secret) < minSecretLength {
		return ErrSecretTooShort
	}

	if err := s.settings.Upsert(ctx, &models.SystemSettings{FamilySecret: secret}); err != nil {
		return err
	}

	s.logger.Info().Msg("family secret rotated")
	return nil
}

// verifySecret compares the supplied secret against the stored one. The
// legacy bypass word keeps working case-insensitively for members who
// joined before the secret was configurable.
func (s *authService) verifySecret(ctx context.Context, supplied string) error {
	trimmed := strings.TrimSpace(supplied)
	if strings.EqualFold(trimmed, models.LegacySecretBypass) {
		return nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !strings.EqualFold(trimmed, settings.FamilySecret) {
		return ErrWrongSecret
	}
	return nil
}

// welcomeNewMember sends the welcome email and drops a greeting into the
// family room. Both are best-effort; registration never fails on them.
func (s *authService) welcomeNewMember(user models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body := fmt.Sprintf("Hi %s, your spot in the common room is ready. Come say hello!", user.FirstName)
	if err := s.mailer.Send(ctx, user.Email, "Welcome to the family", body); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("welcome email failed")
	}

	greeting := models.ChatMessage{
		AuthorID: user.ID,
		Content:  fmt.Sprintf("%s just joined the family room 🎉", user.DisplayName()),
	}
	if err := s.chat.Create(ctx, &greeting); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("join greeting failed")
	}
}

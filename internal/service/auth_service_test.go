package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/models"
)

type stubUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = *user
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	s.users[user.ID] = *user
	return nil
}

func (s *stubUserRepo) DeleteWithContent(ctx context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.users, id)
	return nil
}

type stubSettingsRepo struct {
	secret string
}

func (s *stubSettingsRepo) Get(ctx context.Context) (models.SystemSettings, error) {
	secret := s.secret
	if secret == "" {
		secret = models.DefaultFamilySecret
	}
	return models.SystemSettings{ID: models.SettingsID, FamilySecret: secret}, nil
}

func (s *stubSettingsRepo) Upsert(ctx context.Context, settings *models.SystemSettings) error {
	s.secret = settings.FamilySecret
	return nil
}

type stubChatRepo struct {
	messages  []models.ChatMessage
	lastLimit int
}

func (s *stubChatRepo) Create(ctx context.Context, message *models.ChatMessage) error {
	message.ID = uint(len(s.messages) + 1)
	s.messages = append(s.messages, *message)
	return nil
}

func (s *stubChatRepo) GetByID(ctx context.Context, id uint) (models.ChatMessage, error) {
	for _, message := range s.messages {
		if message.ID == id {
			return message, nil
		}
	}
	return models.ChatMessage{}, gorm.ErrRecordNotFound
}

func (s *stubChatRepo) List(ctx context.Context, before uint, limit int) ([]models.ChatMessage, error) {
	s.lastLimit = limit
	return s.messages, nil
}

func (s *stubChatRepo) ToggleReaction(ctx context.Context, messageID, userID uint, emoji string) (bool, error) {
	return true, nil
}

func newAuthServiceForTest(users *stubUserRepo, settings *stubSettingsRepo, chat *stubChatRepo) AuthService {
	return NewAuthService(
		users,
		settings,
		chat,
		NewLogMailer(zerolog.Nop()),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
		"test-secret",
		time.Hour,
	)
}

func TestAuthServiceRegisterRejectsWrongSecret(t *testing.T) {
	svc := newAuthServiceForTest(newStubUserRepo(), &stubSettingsRepo{}, &stubChatRepo{})

	_, _, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:        "new@family.test",
		FirstName:    "New",
		LastName:     "Member",
		Position:     "Cousin",
		FamilySecret: "not-the-secret",
	})
	require.ErrorIs(t, err, ErrWrongSecret)
}

func TestAuthServiceRegisterAcceptsSecretAndGreets(t *testing.T) {
	users := newStubUserRepo()
	chat := &stubChatRepo{}
	svc := newAuthServiceForTest(users, &stubSettingsRepo{}, chat)

	session, token, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:        "New@Family.TEST",
		FirstName:    "New",
		LastName:     "Member",
		Position:     "Cousin",
		FamilySecret: models.DefaultFamilySecret,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "new@family.test", session.User.Email)
	require.Equal(t, string(models.RoleMember), session.User.Role)

	// The join greeting lands in the room, best-effort but synchronous
	// enough to observe here.
	require.Len(t, chat.messages, 1)
	require.Contains(t, chat.messages[0].Content, "joined the family room")
}

func TestAuthServiceLegacyBypassIsCaseInsensitive(t *testing.T) {
	svc := newAuthServiceForTest(newStubUserRepo(), &stubSettingsRepo{secret: "rotated"}, &stubChatRepo{})

	err := svc.CheckSecret(context.Background(), dto.CheckSecretRequest{FamilySecret: "  MeRcY "})
	require.NoError(t, err)
}

func TestAuthServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newStubUserRepo()
	svc := newAuthServiceForTest(users, &stubSettingsRepo{}, &stubChatRepo{})

	payload := dto.RegisterRequest{
		Email:        "dup@family.test",
		FirstName:    "Dup",
		LastName:     "Member",
		Position:     "Cousin",
		FamilySecret: models.DefaultFamilySecret,
	}
	_, _, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthServiceForTest(newStubUserRepo(), &stubSettingsRepo{}, &stubChatRepo{})

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:        "ghost@family.test",
		FamilySecret: models.DefaultFamilySecret,
	})
	require.ErrorIs(t, err, ErrUnknownMember)
}

func TestAuthServiceSecretRotation(t *testing.T) {
	settings := &stubSettingsRepo{}
	svc := newAuthServiceForTest(newStubUserRepo(), settings, &stubChatRepo{})

	err := svc.UpdateFamilySecret(context.Background(), models.RoleMember, dto.UpdateSecretRequest{FamilySecret: "newsecret"})
	require.ErrorIs(t, err, ErrAdminOnly)

	err = svc.UpdateFamilySecret(context.Background(), models.RoleAdmin, dto.UpdateSecretRequest{FamilySecret: " abc "})
	require.ErrorIs(t, err, ErrSecretTooShort)

	err = svc.UpdateFamilySecret(context.Background(), models.RoleAdmin, dto.UpdateSecretRequest{FamilySecret: " opensesame "})
	require.NoError(t, err)
	require.Equal(t, "opensesame", settings.secret)

	// Old secret stops working, the new one and the bypass still pass,
	// and casing never matters.
	require.ErrorIs(t, svc.CheckSecret(context.Background(), dto.CheckSecretRequest{FamilySecret: models.DefaultFamilySecret}), ErrWrongSecret)
	require.NoError(t, svc.CheckSecret(context.Background(), dto.CheckSecretRequest{FamilySecret: "opensesame"}))
	require.NoError(t, svc.CheckSecret(context.Background(), dto.CheckSecretRequest{FamilySecret: "OPENSESAME"}))
}

func TestAuthServiceRegisterDefaultsAliasToFirstName(t *testing.T) {
	users := newStubUserRepo()
	svc := newAuthServiceForTest(users, &stubSettingsRepo{}, &stubChatRepo{})

	session, _, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:        "plain@family.test",
		FirstName:    "Imaobong",
		LastName:     "Essien",
		Position:     "Cousin",
		FamilySecret: models.DefaultFamilySecret,
	})
	require.NoError(t, err)
	require.Equal(t, "Imaobong", session.User.Alias)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/models"
)

type stubPostRepo struct {
	posts      map[uint]models.Post
	likes      map[uint]map[uint]bool
	dismissals map[uint]map[uint]bool
	nextID     uint
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{
		posts:      make(map[uint]models.Post),
		likes:      make(map[uint]map[uint]bool),
		dismissals: make(map[uint]map[uint]bool),
		nextID:     1,
	}
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	post.ID = s.nextID
	s.nextID++
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	s.posts[post.ID] = *post
	return nil
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, gorm.ErrRecordNotFound
	}
	return post, nil
}

func (s *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	s.posts[post.ID] = *post
	return nil
}

func (s *stubPostRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := s.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *stubPostRepo) ListAnnouncements(ctx context.Context, limit int) ([]models.Post, error) {
	var out []models.Post
	for _, post := range s.posts {
		if post.IsAnnouncement {
			out = append(out, post)
		}
	}
	return out, nil
}

func (s *stubPostRepo) ListUrgentUndismissed(ctx context.Context, userID uint) ([]models.Post, error) {
	var out []models.Post
	for _, post := range s.posts {
		if post.IsAnnouncement && post.IsUrgent && !s.dismissals[post.ID][userID] {
			out = append(out, post)
		}
	}
	return out, nil
}

func (s *stubPostRepo) ListRegular(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var out []models.Post
	for _, post := range s.posts {
		if !post.IsAnnouncement {
			out = append(out, post)
		}
	}
	return out, nil
}

func (s *stubPostRepo) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	if _, ok := s.posts[postID]; !ok {
		return false, gorm.ErrRecordNotFound
	}
	if s.likes[postID] == nil {
		s.likes[postID] = make(map[uint]bool)
	}
	if s.likes[postID][userID] {
		delete(s.likes[postID], userID)
		return false, nil
	}
	s.likes[postID][userID] = true
	return true, nil
}

func (s *stubPostRepo) Dismiss(ctx context.Context, postID, userID uint) error {
	if s.dismissals[postID] == nil {
		s.dismissals[postID] = make(map[uint]bool)
	}
	s.dismissals[postID][userID] = true
	return nil
}

type notifierCall struct {
	userID  uint
	trigger string
	content string
}

type stubNotifier struct {
	calls []notifierCall
}

func (s *stubNotifier) Publish(ctx context.Context, userID uint, trigger, content, link string, data map[string]any) error {
	s.calls = append(s.calls, notifierCall{userID: userID, trigger: trigger, content: content})
	return nil
}

func newFeedServiceForTest(repo *stubPostRepo, users *stubUserRepo, notifier *stubNotifier) *feedService {
	svc := NewFeedService(repo, users, notifier, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc.(*feedService)
}

func TestFeedServiceRegularPostSingleEditWithinWindow(t *testing.T) {
	repo := newStubPostRepo()
	users := newStubUserRepo()
	svc := newFeedServiceForTest(repo, users, &stubNotifier{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.posts[1] = models.Post{ID: 1, AuthorID: 7, Content: "original", CreatedAt: base}
	repo.nextID = 2

	// One second before the window closes still counts.
	svc.now = func() time.Time { return base.Add(10*time.Minute - time.Second) }
	updated, err := svc.EditPost(context.Background(), 1, 7, dto.EditPostRequest{Content: "fixed typo"})
	require.NoError(t, err)
	require.True(t, updated.IsEdited)
	require.Equal(t, "fixed typo", updated.Content)

	// The single edit is spent even though the window is still open.
	_, err = svc.EditPost(context.Background(), 1, 7, dto.EditPostRequest{Content: "again"})
	require.ErrorIs(t, err, ErrAlreadyEdited)
}

func TestFeedServiceRegularPostEditWindowExpires(t *testing.T) {
	repo := newStubPostRepo()
	svc := newFeedServiceForTest(repo, newStubUserRepo(), &stubNotifier{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.posts[1] = models.Post{ID: 1, AuthorID: 7, Content: "original", CreatedAt: base}
	repo.nextID = 2

	// One second past the window is already too late.
	svc.now = func() time.Time { return base.Add(10*time.Minute + time.Second) }
	_, err := svc.EditPost(context.Background(), 1, 7, dto.EditPostRequest{Content: "too late"})
	require.ErrorIs(t, err, ErrEditWindowExpired)

	post := repo.posts[1]
	require.False(t, post.IsEdited)
	require.Equal(t, "original", post.Content)
}

func TestFeedServiceOnlyAuthorMayEdit(t *testing.T) {
	repo := newStubPostRepo()
	svc := newFeedServiceForTest(repo, newStubUserRepo(), &stubNotifier{})

	repo.posts[1] = models.Post{ID: 1, AuthorID: 7, Content: "original", CreatedAt: time.Now()}
	repo.nextID = 2

	// Not even another member; deletion is the admin's tool, editing is
	// not.
	_, err := svc.EditPost(context.Background(), 1, 9, dto.EditPostRequest{Content: "hijack"})
	require.ErrorIs(t, err, ErrFeedForbidden)
}

func TestFeedServiceAnnouncementEditsUnlimited(t *testing.T) {
	repo := newStubPostRepo()
	svc := newFeedServiceForTest(repo, newStubUserRepo(), &stubNotifier{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.posts[1] = models.Post{ID: 1, AuthorID: 7, Title: "Notice", Content: "v1", IsAnnouncement: true, CreatedAt: base}
	repo.nextID = 2

	svc.now = func() time.Time { return base.Add(72 * time.Hour) }
	for _, content := range []string{"v2", "v3"} {
		updated, err := svc.EditPost(context.Background(), 1, 7, dto.EditPostRequest{Content: content})
		require.NoError(t, err)
		require.False(t, updated.IsEdited)
	}
}

func TestFeedServiceEditAnnouncementRevisesUrgency(t *testing.T) {
	repo := newStubPostRepo()
	svc := newFeedServiceForTest(repo, newStubUserRepo(), &stubNotifier{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.posts[1] = models.Post{ID: 1, AuthorID: 7, Title: "Storm", Content: "stay inside", IsAnnouncement: true, IsUrgent: true, CreatedAt: base}
	repo.posts[2] = models.Post{ID: 2, AuthorID: 7, Content: "plain post", CreatedAt: base}
	repo.nextID = 3

	svc.now = func() time.Time { return base.Add(time.Minute) }

	calm := false
	updated, err := svc.EditPost(context.Background(), 1, 7, dto.EditPostRequest{Content: "storm passed", IsUrgent: &calm})
	require.NoError(t, err)
	require.False(t, updated.IsUrgent)

	// Omitting the flag leaves it alone.
	urgentAgain := true
	updated, err = svc.EditPost(context.Background(), 1, 7, dto.EditPostRequest{Content: "back again", IsUrgent: &urgentAgain})
	require.NoError(t, err)
	require.True(t, updated.IsUrgent)
	updated, err = svc.EditPost(context.Background(), 1, 7, dto.EditPostRequest{Content: "unchanged flag"})
	require.NoError(t, err)
	require.True(t, updated.IsUrgent)

	// Regular posts never become urgent.
	updated, err = svc.EditPost(context.Background(), 2, 7, dto.EditPostRequest{Content: "edited", IsUrgent: &urgentAgain})
	require.NoError(t, err)
	require.False(t, updated.IsUrgent)
}

func TestFeedServiceAnnouncementRequiresAdmin(t *testing.T) {
	repo := newStubPostRepo()
	users := newStubUserRepo()
	svc := newFeedServiceForTest(repo, users, &stubNotifier{})

	_, err := svc.CreateAnnouncement(context.Background(), 7, models.RoleMember, dto.CreateAnnouncementRequest{
		Title:   "Family Reunion",
		Content: "Save the date",
	})
	require.ErrorIs(t, err, ErrFeedForbidden)
}

func TestFeedServiceAnnouncementNotifiesEveryoneElse(t *testing.T) {
	repo := newStubPostRepo()
	users := newStubUserRepo()
	notifier := &stubNotifier{}
	svc := newFeedServiceForTest(repo, users, notifier)

	admin := models.User{Email: "admin@family.test", FirstName: "Ad", LastName: "Min", Position: "Admin", Role: models.RoleAdmin}
	require.NoError(t, users.Create(context.Background(), &admin))
	member := models.User{Email: "member@family.test", FirstName: "Me", LastName: "Mber", Position: "Cousin"}
	require.NoError(t, users.Create(context.Background(), &member))

	_, err := svc.CreateAnnouncement(context.Background(), admin.ID, models.RoleAdmin, dto.CreateAnnouncementRequest{
		Title:   "Family Reunion",
		Content: "Save the date",
	})
	require.NoError(t, err)

	require.Len(t, notifier.calls, 1)
	require.Equal(t, member.ID, notifier.calls[0].userID)
	require.Equal(t, "announcement", notifier.calls[0].trigger)
}

func TestFeedServiceDeleteAuthorOrAdminOnly(t *testing.T) {
	repo := newStubPostRepo()
	svc := newFeedServiceForTest(repo, newStubUserRepo(), &stubNotifier{})

	repo.posts[1] = models.Post{ID: 1, AuthorID: 7, Content: "x", CreatedAt: time.Now()}
	repo.nextID = 2

	err := svc.DeletePost(context.Background(), 1, 9, models.RoleMember)
	require.ErrorIs(t, err, ErrFeedForbidden)

	require.NoError(t, svc.DeletePost(context.Background(), 1, 9, models.RoleAdmin))
}

func TestFeedServiceDismissOnlyUrgentAnnouncements(t *testing.T) {
	repo := newStubPostRepo()
	svc := newFeedServiceForTest(repo, newStubUserRepo(), &stubNotifier{})

	repo.posts[1] = models.Post{ID: 1, AuthorID: 7, Content: "plain", CreatedAt: time.Now()}
	repo.posts[2] = models.Post{ID: 2, AuthorID: 7, Title: "N", Content: "calm", IsAnnouncement: true, CreatedAt: time.Now()}
	repo.posts[3] = models.Post{ID: 3, AuthorID: 7, Title: "U", Content: "urgent", IsAnnouncement: true, IsUrgent: true, CreatedAt: time.Now()}
	repo.nextID = 4

	require.ErrorIs(t, svc.Dismiss(context.Background(), 1, 9), ErrNotDismissable)
	require.ErrorIs(t, svc.Dismiss(context.Background(), 2, 9), ErrNotDismissable)
	require.NoError(t, svc.Dismiss(context.Background(), 3, 9))

	pinned, err := repo.ListUrgentUndismissed(context.Background(), 9)
	require.NoError(t, err)
	require.Empty(t, pinned)
}

func TestFeedServiceLikeNotifiesAuthorNotSelf(t *testing.T) {
	repo := newStubPostRepo()
	users := newStubUserRepo()
	notifier := &stubNotifier{}
	svc := newFeedServiceForTest(repo, users, notifier)

	author := models.User{Email: "author@family.test", FirstName: "Au", LastName: "Thor", Position: "Cousin"}
	require.NoError(t, users.Create(context.Background(), &author))
	liker := models.User{Email: "liker@family.test", FirstName: "Li", LastName: "Ker", Position: "Cousin"}
	require.NoError(t, users.Create(context.Background(), &liker))

	repo.posts[1] = models.Post{ID: 1, AuthorID: author.ID, Content: "x", CreatedAt: time.Now()}
	repo.nextID = 2

	// Self-like: toggles but stays silent.
	result, err := svc.ToggleLike(context.Background(), 1, author.ID)
	require.NoError(t, err)
	require.True(t, result.Liked)
	require.Empty(t, notifier.calls)

	result, err = svc.ToggleLike(context.Background(), 1, liker.ID)
	require.NoError(t, err)
	require.True(t, result.Liked)
	require.Len(t, notifier.calls, 1)
	require.Equal(t, author.ID, notifier.calls[0].userID)
	require.Equal(t, "post_like", notifier.calls[0].trigger)

	// Unlike is silent.
	result, err = svc.ToggleLike(context.Background(), 1, liker.ID)
	require.NoError(t, err)
	require.False(t, result.Liked)
	require.Len(t, notifier.calls, 1)
}

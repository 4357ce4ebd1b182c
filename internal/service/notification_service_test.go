package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/pkg/webpush"
)

type stubNotificationRepo struct {
	notifications map[uint]models.Notification
	nextID        uint
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{notifications: make(map[uint]models.Notification), nextID: 1}
}

func (s *stubNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = s.nextID
	s.nextID++
	s.notifications[notification.ID] = *notification
	return nil
}

func (s *stubNotificationRepo) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, id, userID uint) error {
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	s.notifications[id] = n
	return nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID uint) error {
	for id, n := range s.notifications {
		if n.UserID == userID {
			n.IsRead = true
			s.notifications[id] = n
		}
	}
	return nil
}

func (s *stubNotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type stubPushRepo struct {
	subs map[string]models.PushSubscription
}

func newStubPushRepo() *stubPushRepo {
	return &stubPushRepo{subs: make(map[string]models.PushSubscription)}
}

func (s *stubPushRepo) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	s.subs[sub.Endpoint] = *sub
	return nil
}

func (s *stubPushRepo) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	delete(s.subs, endpoint)
	return nil
}

func (s *stubPushRepo) ListByUser(ctx context.Context, userID uint) ([]models.PushSubscription, error) {
	var out []models.PushSubscription
	for _, sub := range s.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

type stubPusher struct {
	sent []string
	// goneEndpoints answer with the push service's "subscription expired".
	goneEndpoints map[string]bool
}

func (s *stubPusher) Send(ctx context.Context, sub webpush.Subscription, payload []byte) error {
	if s.goneEndpoints[sub.Endpoint] {
		return webpush.ErrSubscriptionGone
	}
	s.sent = append(s.sent, sub.Endpoint)
	return nil
}

func newNotificationServiceForTest(repo *stubNotificationRepo, pushRepo *stubPushRepo, pusher PushSender) *notificationService {
	svc := NewNotificationService(repo, pushRepo, pusher, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc.(*notificationService)
}

func TestNotificationServiceMarkReadScopedToOwner(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := newNotificationServiceForTest(repo, newStubPushRepo(), nil)

	require.NoError(t, svc.Publish(context.Background(), 7, "post_like", "someone liked your post", "/common-room/1", nil))

	// Another member cannot mark it, the owner can.
	require.ErrorIs(t, svc.MarkRead(context.Background(), 1, 9), gorm.ErrRecordNotFound)
	require.NoError(t, svc.MarkRead(context.Background(), 1, 7))

	count, err := svc.UnreadCount(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, count.Unread)
}

func TestNotificationServiceMarkAllRead(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := newNotificationServiceForTest(repo, newStubPushRepo(), nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Publish(context.Background(), 7, "announcement", "new announcement", "/common-room/1", nil))
	}
	require.NoError(t, svc.Publish(context.Background(), 9, "announcement", "new announcement", "/common-room/1", nil))

	require.NoError(t, svc.MarkAllRead(context.Background(), 7))

	mine, err := svc.UnreadCount(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, mine.Unread)

	theirs, err := svc.UnreadCount(context.Background(), 9)
	require.NoError(t, err)
	require.EqualValues(t, 1, theirs.Unread)
}

func TestNotificationServicePushPrunesGoneSubscriptions(t *testing.T) {
	pushRepo := newStubPushRepo()
	pusher := &stubPusher{goneEndpoints: map[string]bool{"https://push.example/dead": true}}
	svc := newNotificationServiceForTest(newStubNotificationRepo(), pushRepo, pusher)

	pushRepo.subs["https://push.example/dead"] = models.PushSubscription{UserID: 7, Endpoint: "https://push.example/dead", P256dh: "p", Auth: "a"}
	pushRepo.subs["https://push.example/alive"] = models.PushSubscription{UserID: 7, Endpoint: "https://push.example/alive", P256dh: "p", Auth: "a"}

	svc.pushToMember(7, "hello", "/common-room/1")

	require.Equal(t, []string{"https://push.example/alive"}, pusher.sent)
	require.NotContains(t, pushRepo.subs, "https://push.example/dead")
	require.Contains(t, pushRepo.subs, "https://push.example/alive")
}

func TestNotificationServiceSubscribeUpsertsByEndpoint(t *testing.T) {
	pushRepo := newStubPushRepo()
	svc := newNotificationServiceForTest(newStubNotificationRepo(), pushRepo, nil)

	payload := dto.SubscribePushRequest{
		Endpoint: "https://push.example/sub",
		P256dh:   "key-one",
		Auth:     "auth-one",
	}
	require.NoError(t, svc.SubscribePush(context.Background(), 7, payload))

	// Browsers rotate keys on re-subscribe; the endpoint stays, keys change.
	payload.P256dh = "key-two"
	require.NoError(t, svc.SubscribePush(context.Background(), 7, payload))
	require.Len(t, pushRepo.subs, 1)
	require.Equal(t, "key-two", pushRepo.subs["https://push.example/sub"].P256dh)

	require.NoError(t, svc.UnsubscribePush(context.Background(), dto.UnsubscribePushRequest{Endpoint: "https://push.example/sub"}))
	require.Empty(t, pushRepo.subs)
}

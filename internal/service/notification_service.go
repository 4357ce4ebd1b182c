package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/observability"
	"github.com/lovemyfam/common-room-api/internal/repository"
	"github.com/lovemyfam/common-room-api/pkg/webpush"
)

// PushSender delivers a Web Push payload to one subscription.
type PushSender interface {
	Send(ctx context.Context, sub webpush.Subscription, payload []byte) error
}

// NotificationService manages the per-member notification tray and Web
// Push delivery.
type NotificationService interface {
	// Publish stores a tray notification and fans it out to the
	// member's push subscriptions. Push failures are logged, never
	// propagated.
	Publish(ctx context.Context, userID uint, trigger, content, link string, data map[string]any) error
	List(ctx context.Context, userID uint, limit int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	UnreadCount(ctx context.Context, userID uint) (dto.UnreadCountResponse, error)
	SubscribePush(ctx context.Context, userID uint, payload dto.SubscribePushRequest) error
	UnsubscribePush(ctx context.Context, payload dto.UnsubscribePushRequest) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	pushRepo  repository.PushRepository
	pusher    PushSender
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewNotificationService constructs the notification service. The pusher
// may be nil when no VAPID keys are configured; tray notifications still
// work without it.
func NewNotificationService(
	repo repository.NotificationRepository,
	pushRepo repository.PushRepository,
	pusher PushSender,
	validate *validator.Validate,
	logger zerolog.Logger,
) NotificationService {
	return &notificationService{
		repo:      repo,
		pushRepo:  pushRepo,
		pusher:    pusher,
		validator: validate,
		logger:    logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) Publish(ctx context.Context, userID uint, trigger, content, link string, data map[string]any) error {
	notification := models.Notification{
		UserID:  userID,
		Content: content,
		Link:    link,
	}
	if len(data) > 0 {
		notification.Data = datatypes.JSONMap(data)
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		return err
	}

	observability.NotificationsPublished().WithLabelValues(trigger).Inc()
	go s.pushToMember(userID, content, link)

	return nil
}

func (s *notificationService) List(ctx context.Context, userID uint, limit int) ([]dto.NotificationResponse, error) {
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(items), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (dto.UnreadCountResponse, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return dto.UnreadCountResponse{}, err
	}
	return dto.UnreadCountResponse{Unread: count}, nil
}

func (s *notificationService) SubscribePush(ctx context.Context, userID uint, payload dto.SubscribePushRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	return s.pushRepo.Upsert(ctx, &models.PushSubscription{
		UserID:   userID,
		Endpoint: payload.Endpoint,
		P256dh:   payload.P256dh,
		Auth:     payload.Auth,
	})
}

func (s *notificationService) UnsubscribePush(ctx context.Context, payload dto.UnsubscribePushRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	return s.pushRepo.DeleteByEndpoint(ctx, payload.Endpoint)
}

// pushToMember delivers the payload to every subscription the member
// holds, pruning endpoints the push service reports as gone.
func (s *notificationService) pushToMember(userID uint, content, link string) {
	if s.pusher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	subs, err := s.pushRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("loading push subscriptions failed")
		return
	}

	payload, err := json.Marshal(map[string]string{
		"title": "Common Room",
		"body":  content,
		"url":   link,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("encoding push payload failed")
		return
	}

	for _, sub := range subs {
		err := s.pusher.Send(ctx, webpush.Subscription{
			Endpoint: sub.Endpoint,
			P256dh:   sub.P256dh,
			Auth:     sub.Auth,
		}, payload)

		switch {
		case err == nil:
			observability.PushDeliveries().WithLabelValues("delivered").Inc()
		case errors.Is(err, webpush.ErrSubscriptionGone):
			observability.PushDeliveries().WithLabelValues("pruned").Inc()
			if delErr := s.pushRepo.DeleteByEndpoint(ctx, sub.Endpoint); delErr != nil {
				s.logger.Warn().Err(delErr).Msg("pruning dead subscription failed")
			}
		default:
			observability.PushDeliveries().WithLabelValues("failed").Inc()
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("push delivery failed")
		}
	}
}

package webpush

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
)

// ErrSubscriptionGone marks an endpoint the push service has retired.
// Callers should drop the stored subscription when they see it.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Config holds the VAPID key pair identifying this sender.
type Config struct {
	Subject    string
	PublicKey  string
	PrivateKey string
}

// Subscription is a browser push registration.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Service delivers Web Push payloads signed with the configured VAPID keys.
type Service struct {
	cfg    Config
	logger zerolog.Logger
}

// New constructs a push sender. The VAPID key pair is mandatory.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("vapid key pair must be provided")
	}
	if cfg.Subject == "" {
		return nil, fmt.Errorf("vapid subject must be provided")
	}

	return &Service{
		cfg:    cfg,
		logger: logger.With().Str("component", "webpush").Logger(),
	}, nil
}

// Send pushes the payload to a single subscription. A 404 or 410 from the
// push service is reported as ErrSubscriptionGone.
func (s *Service) Send(ctx context.Context, sub Subscription, payload []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &webpush.Options{
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	return nil
}

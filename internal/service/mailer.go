package service

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer delivers transactional email to family members.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outgoing mail to the structured log instead of an SMTP
// relay. It is the default provider for local and test environments.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer constructs the logging mail provider.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "mailer").Logger()}
}

// Send records the message in the log.
func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("email dispatched")
	return nil
}

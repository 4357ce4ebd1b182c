package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ctxKeyCorrelation struct{}

// Headers checked, in order, for an inbound correlation identifier.
var correlationHeaders = []string{"X-Correlation-ID", "X-Request-ID"}

// CorrelationID tags every request with an identifier that follows it
// through logs, chat events and notification fan-out. Inbound headers win
// so the frontend can stitch its own traces together.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := ""
		for _, header := range correlationHeaders {
			if id = strings.TrimSpace(c.Get(header)); id != "" {
				break
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set("X-Correlation-ID", id)
		c.SetUserContext(context.WithValue(c.Context(), ctxKeyCorrelation{}, id))

		return c.Next()
	}
}

// CorrelationIDFromContext reads the identifier carried by ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKeyCorrelation{}).(string)
	return id
}

// GetCorrelationID returns the identifier bound to the active request,
// falling back to the request context for handlers running off-fiber.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok && id != "" {
		return id
	}
	return CorrelationIDFromContext(c.Context())
}

// ContextWithCorrelation copies an identifier onto a fresh context, for
// work that outlives the request (push fan-out, chat processing).
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyCorrelation{}, correlationID)
}

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lovemyfam/common-room-api/internal/config"
	"github.com/lovemyfam/common-room-api/internal/handler"
	"github.com/lovemyfam/common-room-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	HealthHandler       *handler.HealthHandler
	AuthHandler         *handler.AuthHandler
	FeedHandler         *handler.FeedHandler
	CommentHandler      *handler.CommentHandler
	ChatHandler         *handler.ChatHandler
	MemberHandler       *handler.MemberHandler
	AlbumHandler        *handler.AlbumHandler
	TestimonialHandler  *handler.TestimonialHandler
	NotificationHandler *handler.NotificationHandler

	// SessionRequired rejects requests without a valid session cookie;
	// SessionOptional only resolves identity when a cookie is present.
	SessionRequired fiber.Handler
	SessionOptional fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	if deps.HealthHandler != nil {
		deps.HealthHandler.Register(app)
	}
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	required := deps.SessionRequired
	if required == nil {
		required = func(c *fiber.Ctx) error { return c.Next() }
	}
	optional := deps.SessionOptional
	if optional == nil {
		optional = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", required))
	}

	// The testimonial wall serves guests; listing only resolves identity
	// when a session cookie happens to be present.
	if deps.TestimonialHandler != nil {
		testimonials := api.Group("/testimonials")
		deps.TestimonialHandler.Register(testimonials.Group("", optional))
		deps.TestimonialHandler.RegisterProtected(testimonials.Group("", required))
	}

	if deps.FeedHandler != nil {
		feed := api.Group("/feed", required)
		deps.FeedHandler.Register(feed)

		if deps.CommentHandler != nil {
			deps.CommentHandler.Register(feed)
		}
	}

	if deps.ChatHandler != nil {
		chat := api.Group("/chat", required)
		deps.ChatHandler.Register(chat)
	}

	if deps.MemberHandler != nil {
		members := api.Group("/members", required)
		deps.MemberHandler.Register(members)
	}

	if deps.AlbumHandler != nil {
		album := api.Group("/album", required)
		deps.AlbumHandler.Register(album)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", required)
		deps.NotificationHandler.Register(notifications)
	}
}

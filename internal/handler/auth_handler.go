package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/middleware"
	"github.com/lovemyfam/common-room-api/internal/service"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

// AuthHandler wires registration, login and family secret endpoints.
type AuthHandler struct {
	service       service.AuthService
	logger        zerolog.Logger
	sessionTTL    time.Duration
	secureCookies bool
}

// NewAuthHandler creates an auth handler instance.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		service:       service,
		logger:        logger.With().Str("component", "auth_handler").Logger(),
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

// Register binds the public auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/logout", h.logout)
	router.Post("/check-secret", h.checkSecret)
}

// RegisterProtected binds routes requiring an authenticated session.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Put("/family-secret", h.updateSecret)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, token, err := h.service.Register(requestContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}

	h.setSessionCookie(c, token)
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "welcome to the family", session)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, token, err := h.service.Login(requestContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}

	h.setSessionCookie(c, token)
	return utils.SendSuccess(c, "logged in", session)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) checkSecret(c *fiber.Ctx) error {
	var payload dto.CheckSecretRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.CheckSecret(requestContext(c), payload); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "secret accepted", nil)
}

func (h *AuthHandler) updateSecret(c *fiber.Ctx) error {
	var payload dto.UpdateSecretRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateFamilySecret(requestContext(c), userRoleFromContext(c), payload); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "family secret updated", nil)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/service"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

// NotificationHandler wires the notification tray and push subscription
// endpoints.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler creates a notification handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register binds notification routes under the provided router group.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Put("/:id/read", h.markRead)
	router.Put("/read-all", h.markAllRead)
	router.Post("/push-subscriptions", h.subscribe)
	router.Delete("/push-subscriptions", h.unsubscribe)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	items, err := h.service.List(requestContext(c), userIDFromContext(c), limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "notifications", items)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(requestContext(c), userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "unread count", count)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.MarkRead(requestContext(c), id, userIDFromContext(c)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "notification read", nil)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllRead(requestContext(c), userIDFromContext(c)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "all notifications read", nil)
}

func (h *NotificationHandler) subscribe(c *fiber.Ctx) error {
	var payload dto.SubscribePushRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SubscribePush(requestContext(c), userIDFromContext(c), payload); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "push subscription saved", nil)
}

func (h *NotificationHandler) unsubscribe(c *fiber.Ctx) error {
	var payload dto.UnsubscribePushRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UnsubscribePush(requestContext(c), payload); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "push subscription removed", nil)
}

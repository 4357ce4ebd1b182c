package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/service"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

// FeedHandler wires the home feed endpoints.
type FeedHandler struct {
	service service.FeedService
	logger  zerolog.Logger
}

// NewFeedHandler creates a feed handler instance.
func NewFeedHandler(service service.FeedService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		service: service,
		logger:  logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register binds the feed routes under the provided router group.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Get("/", h.feed)
	router.Post("/posts", h.createPost)
	router.Post("/announcements", h.createAnnouncement)
	router.Get("/posts/:id", h.getPost)
	router.Put("/posts/:id", h.editPost)
	router.Delete("/posts/:id", h.deletePost)
	router.Post("/posts/:id/like", h.toggleLike)
	router.Post("/posts/:id/dismiss", h.dismiss)
}

func (h *FeedHandler) feed(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	feed, err := h.service.Feed(requestContext(c), userIDFromContext(c), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "feed", feed)
}

func (h *FeedHandler) getPost(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	post, err := h.service.GetPost(requestContext(c), id, userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "post", post)
}

func (h *FeedHandler) createPost(c *fiber.Ctx) error {
	var payload dto.CreatePostRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.service.CreatePost(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "post created", post)
}

func (h *FeedHandler) createAnnouncement(c *fiber.Ctx) error {
	var payload dto.CreateAnnouncementRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.service.CreateAnnouncement(requestContext(c), userIDFromContext(c), userRoleFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "announcement created", post)
}

func (h *FeedHandler) editPost(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EditPostRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.service.EditPost(requestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "post updated", post)
}

func (h *FeedHandler) deletePost(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeletePost(requestContext(c), id, userIDFromContext(c), userRoleFromContext(c)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "post deleted", nil)
}

func (h *FeedHandler) toggleLike(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ToggleLike(requestContext(c), id, userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "like toggled", result)
}

func (h *FeedHandler) dismiss(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Dismiss(requestContext(c), id, userIDFromContext(c)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "announcement dismissed", nil)
}

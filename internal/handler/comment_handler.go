package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/service"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

// CommentHandler wires the comment thread endpoints.
type CommentHandler struct {
	service service.CommentService
	logger  zerolog.Logger
}

// NewCommentHandler creates a comment handler instance.
func NewCommentHandler(service service.CommentService, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		logger:  logger.With().Str("component", "comment_handler").Logger(),
	}
}

// Register binds comment routes under the provided router group.
func (h *CommentHandler) Register(router fiber.Router) {
	router.Get("/posts/:id/comments", h.list)
	router.Post("/posts/:id/comments", h.add)
	router.Put("/comments/:id", h.edit)
	router.Delete("/comments/:id", h.remove)
	router.Post("/comments/:id/like", h.toggleLike)
}

func (h *CommentHandler) list(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	comments, err := h.service.ListByPost(requestContext(c), postID, userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "comments", comments)
}

func (h *CommentHandler) add(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CreateCommentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	comment, err := h.service.Add(requestContext(c), postID, userIDFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", comment)
}

func (h *CommentHandler) edit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EditCommentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	comment, err := h.service.Edit(requestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "comment updated", comment)
}

func (h *CommentHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), id, userIDFromContext(c)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "comment deleted", nil)
}

func (h *CommentHandler) toggleLike(c *fiber.Ctx) error {
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

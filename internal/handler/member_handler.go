package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/service"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

// MemberHandler wires the family directory endpoints.
type MemberHandler struct {
	service service.MemberService
	logger  zerolog.Logger
}

// NewMemberHandler creates a member handler instance.
func NewMemberHandler(service service.MemberService, logger zerolog.Logger) *MemberHandler {
	return &MemberHandler{
		service: service,
		logger:  logger.With().Str("component", "member_handler").Logger(),
	}
}

// Register binds member routes under the provided router group.
func (h *MemberHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/me", h.me)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Put("/:id/photo", h.updatePhoto)
	router.Delete("/:id", h.remove)
}

func (h *MemberHandler) list(c *fiber.Ctx) error {
	members, err := h.service.List(requestContext(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "members", members)
}

func (h *MemberHandler) me(c *fiber.Ctx) error {
	member, err := h.service.Get(requestContext(c), userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "profile", member)
}

func (h *MemberHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	member, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "member", member)
}

func (h *MemberHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UpdateMemberRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	member, err := h.service.UpdateDetails(requestContext(c), id, userIDFromContext(c), userRoleFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "profile updated", member)
}

func (h *MemberHandler) updatePhoto(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "could not read file")
	}
	defer file.Close()

	member, err := h.service.UpdatePhoto(requestContext(c), id, userIDFromContext(c), userRoleFromContext(c), fileHeader.Filename, file)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "photo updated", member)
}

func (h *MemberHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Remove(requestContext(c), id, userIDFromContext(c), userRoleFromContext(c)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "member removed", nil)
}

package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/service"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

// AlbumHandler wires the shared family album endpoints.
type AlbumHandler struct {
	service     service.AlbumService
	logger      zerolog.Logger
	maxUploadMB int
}

// NewAlbumHandler creates an album handler instance.
func NewAlbumHandler(service service.AlbumService, logger zerolog.Logger, maxUploadMB int) *AlbumHandler {
	return &AlbumHandler{
		service:     service,
		logger:      logger.With().Str("component", "album_handler").Logger(),
		maxUploadMB: maxUploadMB,
	}
}

// Register binds album routes under the provided router group.
func (h *AlbumHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.upload)
	router.Put("/:id/alt-text", h.updateAltText)
	router.Delete("/:id", h.remove)
}

func (h *AlbumHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	page, err := h.service.List(requestContext(c), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "album", page)
}

func (h *AlbumHandler) upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}
	if h.maxUploadMB > 0 && fileHeader.Size > int64(h.maxUploadMB)*1024*1024 {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds upload limit")
	}

	altText := strings.TrimSpace(c.FormValue("alt_text"))

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "could not read file")
	}
	defer file.Close()

	media, err := h.service.Upload(requestContext(c), userIDFromContext(c), fileHeader.Filename, altText, file)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "media uploaded", media)
}

func (h *AlbumHandler) updateAltText(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UpdateAltTextRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	media, err := h.service.UpdateAltText(requestContext(c), id, userIDFromContext(c), userRoleFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "alt text updated", media)
}

func (h *AlbumHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), id, userIDFromContext(c), userRoleFromContext(c)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "media deleted", nil)
}

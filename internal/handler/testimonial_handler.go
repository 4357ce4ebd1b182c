package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/service"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

// TestimonialHandler wires the testimonial wall. Listing is public with
// guest redaction; submitting requires a session.
type TestimonialHandler struct {
	service service.TestimonialService
	logger  zerolog.Logger
}

// NewTestimonialHandler creates a testimonial handler instance.
func NewTestimonialHandler(service service.TestimonialService, logger zerolog.Logger) *TestimonialHandler {
	return &TestimonialHandler{
		service: service,
		logger:  logger.With().Str("component", "testimonial_handler").Logger(),
	}
}

// Register binds the public listing route. The route should sit behind
// the optional session middleware so members see unredacted names.
func (h *TestimonialHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

// RegisterProtected binds the submission route.
func (h *TestimonialHandler) RegisterProtected(router fiber.Router) {
	router.Post("/", h.submit)
}

func (h *TestimonialHandler) list(c *fiber.Ctx) error {
	viewerIsMember := userIDFromContext(c) != 0

	testimonials, err := h.service.List(requestContext(c), viewerIsMember)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccess(c, "testimonials", testimonials)
}

func (h *TestimonialHandler) submit(c *fiber.Ctx) error {
	var payload dto.CreateTestimonialRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	testimonial, err := h.service.Submit(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "testimonial submitted", testimonial)
}

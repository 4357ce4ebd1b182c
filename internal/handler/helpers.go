package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/middleware"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/service"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) models.Role {
	if v := c.Locals("user_role"); v != nil {
		switch role := v.(type) {
		case models.Role:
			return role
		case string:
			return models.Role(role)
		}
	}
	return ""
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// respondServiceError maps the service layer's sentinel errors onto HTTP
// statuses. Unknown errors become an opaque 500.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "resource not found")
	case errors.Is(err, service.ErrWrongSecret),
		errors.Is(err, service.ErrUnknownMember):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrFeedForbidden),
		errors.Is(err, service.ErrCommentForbidden),
		errors.Is(err, service.ErrMemberForbidden),
		errors.Is(err, service.ErrAlbumForbidden),
		errors.Is(err, service.ErrAdminOnly),
		errors.Is(err, service.ErrAlreadyEdited),
		errors.Is(err, service.ErrEditWindowExpired),
		errors.Is(err, service.ErrAltTextWindowExpired):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSecretTooShort),
		errors.Is(err, service.ErrParentMismatch),
		errors.Is(err, service.ErrNotDismissable),
		errors.Is(err, service.ErrAltTextRequired),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrUnsupportedMedia),
		errors.Is(err, service.ErrProfileFieldRequired),
		errors.Is(err, service.ErrSelfDelete):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/utils"
)

// SessionCookieName is the httpOnly cookie carrying the signed session token.
const SessionCookieName = "fam_session"

// UserResolver looks up the user bound to a session. The role is resolved
// from storage on every request so role changes take effect immediately.
type UserResolver interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
}

// NewSessionToken mints a signed session token for the given user.
func NewSessionToken(secret string, userID uint, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// SessionProtected requires a valid session cookie and loads the user's
// identity and role into request locals.
func SessionProtected(secret string, users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := resolveSessionUser(c, secret, users)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.Role)

		return c.Next()
	}
}

// SessionOptional loads session identity when present but never rejects
// the request. Used by read paths that serve guests with redacted data.
func SessionOptional(secret string, users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, ok := resolveSessionUser(c, secret, users); ok {
			c.Locals("user_id", user.ID)
			c.Locals("user_role", user.Role)
		}
		return c.Next()
	}
}

func resolveSessionUser(c *fiber.Ctx, secret string, users UserResolver) (models.User, bool) {
	cookie := c.Cookies(SessionCookieName)
	if cookie == "" {
		return models.User{}, false
	}

	token, err := jwt.Parse(cookie, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.User{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, false
	}

	userID := extractSubject(claims)
	if userID == 0 {
		return models.User{}, false
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, false
	}

	return user, true
}

func extractSubject(claims jwt.MapClaims) uint {
	value, ok := claims["sub"]
	if !ok {
		return 0
	}

	switch v := value.(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0
		}
		return uint(parsed)
	case float64:
		if v < 0 {
			return 0
		}
		return uint(v)
	default:
		return 0
	}
}

package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/api/response"
)

const (
	LocalUserID = "user_id"
	LocalToken  = "token"

	defaultDescription = "Please sign in to continue."
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type Config struct {
	Authenticator Authenticator
	// Description is shown in the "Authentication Required" notification.
	Description string
	// QueryParam, when set, is read for the token if no Authorization header
	// is present. Browsers cannot set headers on websocket upgrades.
	QueryParam string
	Logger     *zap.Logger
}

func New(cfg Config) fiber.Handler {
	if cfg.Description == "" {
		cfg.Description = defaultDescription
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		token := BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" && cfg.QueryParam != "" {
			token = c.Query(cfg.QueryParam)
		}

		if token == "" {
			return unauthorized(c, cfg.Description)
		}

		userID, err := cfg.Authenticator.Authenticate(c.UserContext(), token)
		if err != nil {
			cfg.Logger.Debug("Rejected request token",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return unauthorized(c, cfg.Description)
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalToken, token)

		return c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(LocalUserID).(string)
	return userID
}

func Token(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalToken).(string)
	return token
}

func unauthorized(c *fiber.Ctx, description string) error {
	return response.Error(c, fiber.StatusUnauthorized,
		response.Destructive("Authentication Required", description), nil)
}

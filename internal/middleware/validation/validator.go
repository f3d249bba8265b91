package validation

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/api/response"
)

type Config struct {
	// MaxFieldLength bounds every string value in a JSON body, in bytes.
	MaxFieldLength      int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware checks request bodies before they reach the handlers: the
// content type must be allowed, the body must be valid JSON, and NUL bytes
// are removed from every string value.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxFieldLength == 0 {
		cfg.MaxFieldLength = 64 * 1024
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{fiber.MIMEApplicationJSON}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		default:
			return c.Next()
		}

		body := c.Body()
		if len(bytes.TrimSpace(body)) == 0 {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if !allowedType(contentType, cfg.AllowedContentTypes) {
			return response.Error(c, fiber.StatusUnsupportedMediaType,
				response.Destructive("Error", "Unsupported content type"), nil)
		}

		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			return response.Error(c, fiber.StatusBadRequest,
				response.Destructive("Error", "Invalid JSON format"), nil)
		}

		sanitized, tooLong := sanitize(payload, cfg.MaxFieldLength)
		if tooLong {
			cfg.Logger.Warn("Request field exceeds maximum length",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return response.Error(c, fiber.StatusRequestEntityTooLarge,
				response.Destructive("Error", "Request field exceeds maximum length"), nil)
		}

		cleaned, err := json.Marshal(sanitized)
		if err != nil {
			return response.Error(c, fiber.StatusBadRequest,
				response.Destructive("Error", "Invalid JSON format"), nil)
		}
		c.Request().SetBody(cleaned)

		return c.Next()
	}
}

func allowedType(contentType string, allowed []string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for _, t := range allowed {
		if mediaType == t {
			return true
		}
	}
	return false
}

// sanitize strips NUL bytes from every string in v and reports whether any
// string is longer than maxLen.
func sanitize(v any, maxLen int) (any, bool) {
	switch val := v.(type) {
	case string:
		s := strings.ReplaceAll(val, "\x00", "")
		return s, len(s) > maxLen
	case []any:
		for i, item := range val {
			clean, tooLong := sanitize(item, maxLen)
			if tooLong {
				return nil, true
			}
			val[i] = clean
		}
		return val, false
	case map[string]any:
		for k, item := range val {
			clean, tooLong := sanitize(item, maxLen)
			if tooLong {
				return nil, true
			}
			val[k] = clean
		}
		return val, false
	default:
		return v, false
	}
}

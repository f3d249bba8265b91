package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/api/response"
	mwauth "github.com/postcraft/backend/internal/middleware/auth"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/internal/style"
	"github.com/postcraft/backend/pkg/logger"
)

type StyleService interface {
	LoadUserStyle(ctx context.Context, userID string) (*models.UserStyle, error)
	AnalyzeStyle(ctx context.Context, userID string, posts []string) (*models.UserStyle, error)
}

type StyleHandler struct {
	styles StyleService
}

func NewStyleHandler(styles StyleService) *StyleHandler {
	return &StyleHandler{
		styles: styles,
	}
}

func (h *StyleHandler) GetStyle(c *fiber.Ctx) error {
	userStyle, err := h.styles.LoadUserStyle(c.UserContext(), mwauth.UserID(c))
	if err != nil {
		logger.Error("Failed to load writing style", zap.Error(err))
		if statusFor(err) == fiber.StatusUnauthorized {
			return response.Error(c, fiber.StatusUnauthorized,
				response.Destructive("Authentication Required", signInToAnalyze), nil)
		}
		return response.Error(c, fiber.StatusInternalServerError,
			response.Destructive("Error", "Failed to load your writing style."), nil)
	}

	return c.JSON(fiber.Map{
		"style": userStyle,
	})
}

func (h *StyleHandler) AnalyzeStyle(c *fiber.Ctx) error {
	var req struct {
		Posts []string `json:"posts"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return response.Error(c, fiber.StatusBadRequest,
			response.Destructive("Analysis Failed", "Failed to analyze posts: invalid request body"), nil)
	}

	userStyle, err := h.styles.AnalyzeStyle(c.UserContext(), mwauth.UserID(c), req.Posts)
	if err != nil {
		return h.analysisError(c, userStyle, err)
	}

	return response.OK(c,
		response.Notify("Analysis Complete", "Your writing style has been analyzed and saved successfully."),
		fiber.Map{"style": userStyle},
	)
}

func (h *StyleHandler) analysisError(c *fiber.Ctx, userStyle *models.UserStyle, err error) error {
	status := statusFor(err)
	msg := publicMessage(err)

	switch {
	case status == fiber.StatusUnauthorized:
		return response.Error(c, status,
			response.Destructive("Authentication Required", signInToAnalyze), nil)
	case errors.Is(err, style.ErrInvalidResponse):
		logger.Warn("Rejected analysis response", zap.Error(err))
		return response.Error(c, status,
			response.Destructive("Analysis Error", "Failed to process the analysis results: "+msg), nil)
	case errors.Is(err, style.ErrPersist):
		logger.Error("Analysis not persisted", zap.Error(err))
		return response.Error(c, status,
			response.Destructive("Analysis Failed", "Failed to analyze posts: "+msg),
			fiber.Map{"style": userStyle})
	default:
		if status >= fiber.StatusInternalServerError {
			logger.Error("Failed to analyze posts", zap.Error(err))
		}
		return response.Error(c, status,
			response.Destructive("Analysis Failed", "Failed to analyze posts: "+msg), nil)
	}
}

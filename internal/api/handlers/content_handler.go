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

type ContentService interface {
	GenerateContent(ctx context.Context, userID string, req style.GenerationRequest) (*style.GenerationResult, error)
	ListGeneratedContent(ctx context.Context, userID string) ([]models.GeneratedContent, error)
	LastGenerated(ctx context.Context, userID string) (string, error)
}

type ContentHandler struct {
	content ContentService
}

func NewContentHandler(content ContentService) *ContentHandler {
	return &ContentHandler{
		content: content,
	}
}

func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	var req style.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return response.Error(c, fiber.StatusBadRequest,
			response.Destructive("Generation Failed", "Failed to generate content: invalid request body"), nil)
	}

	result, err := h.content.GenerateContent(c.UserContext(), mwauth.UserID(c), req)
	if err != nil {
		status := statusFor(err)
		if status == fiber.StatusUnauthorized {
			return response.Error(c, status,
				response.Destructive("Authentication Required", signInToGenerate), nil)
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("Failed to generate content", zap.Error(err))
		}

		var extra fiber.Map
		if errors.Is(err, style.ErrPersist) && result != nil {
			extra = resultBody(result)
		}
		return response.Error(c, status,
			response.Destructive("Generation Failed", "Failed to generate content: "+publicMessage(err)), extra)
	}

	description := "Content generated with standard optimization."
	if result.StyleApplied {
		description = "Content generated matching your writing style."
	}

	return response.OK(c, response.Notify("Content Generated", description), resultBody(result))
}

func (h *ContentHandler) List(c *fiber.Ctx) error {
	items, err := h.content.ListGeneratedContent(c.UserContext(), mwauth.UserID(c))
	if err != nil {
		logger.Error("Failed to list generated content", zap.Error(err))
		return response.Error(c, statusFor(err),
			response.Destructive("Error", "Failed to load generated content."), nil)
	}
	if items == nil {
		items = []models.GeneratedContent{}
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

func (h *ContentHandler) Latest(c *fiber.Ctx) error {
	text, err := h.content.LastGenerated(c.UserContext(), mwauth.UserID(c))
	if err != nil {
		logger.Error("Failed to read last generated content", zap.Error(err))
		return response.Error(c, statusFor(err),
			response.Destructive("Error", "Failed to load generated content."), nil)
	}

	return c.JSON(fiber.Map{
		"content": text,
	})
}

func resultBody(result *style.GenerationResult) fiber.Map {
	return fiber.Map{
		"content":       result.Content,
		"style_applied": result.StyleApplied,
		"stats":         result.Stats,
		"within_length": result.WithinLength,
	}
}

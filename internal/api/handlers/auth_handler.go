package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/api/response"
	"github.com/postcraft/backend/internal/auth"
	mwauth "github.com/postcraft/backend/internal/middleware/auth"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/pkg/logger"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		auth: authService,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return authError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.auth.SignUp(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":         user,
		"notification": response.Notify("Account created", "Your account is ready. Please sign in to continue."),
	})
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return authError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return response.OK(c, response.Notify("Welcome back!", "You have successfully signed in."), fiber.Map{
		"session": session,
	})
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	if err := h.auth.SignOut(c.UserContext(), mwauth.Token(c)); err != nil {
		return h.fail(c, err)
	}

	return response.OK(c, response.Notify("Signed out", "You have been signed out."), nil)
}

func (h *AuthHandler) Session(c *fiber.Ctx) error {
	user, err := h.auth.CurrentUser(c.UserContext(), mwauth.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}

func (h *AuthHandler) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error("Auth request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return authError(c, status, publicMessage(err))
}

func authError(c *fiber.Ctx, status int, description string) error {
	return response.Error(c, status, response.Destructive("Error", description), nil)
}

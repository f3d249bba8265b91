package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/postcraft/backend/internal/api/handlers"
	"github.com/postcraft/backend/internal/auth"
	"github.com/postcraft/backend/internal/llm"
	mwauth "github.com/postcraft/backend/internal/middleware/auth"
	"github.com/postcraft/backend/internal/mocks"
	"github.com/postcraft/backend/internal/posttext"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/internal/style"
)

// newApp stands in for the auth middleware: the X-Test-User header becomes
// the authenticated user id.
func newApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user := c.Get("X-Test-User"); user != "" {
			c.Locals(mwauth.LocalUserID, user)
			c.Locals(mwauth.LocalToken, "token-"+user)
		}
		return c.Next()
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, user string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func notification(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	n, ok := body["notification"].(map[string]any)
	require.True(t, ok, "response has no notification: %v", body)
	return n
}

func storedStyle() *models.UserStyle {
	return &models.UserStyle{
		UserID:        "u1",
		StyleProfile:  "Punchy",
		Metrics:       models.StyleMetrics{Engagement: 81},
		WritingStyle:  models.WritingStyle{Tone: "Conversational"},
		AnalyzedPosts: []string{"A", "B"},
	}
}

func styleApp(t *testing.T) (*fiber.App, *mocks.MockStyleService) {
	svc := mocks.NewMockStyleService(t)
	h := handlers.NewStyleHandler(svc)

	app := newApp()
	app.Get("/style", h.GetStyle)
	app.Post("/style/analyze", h.AnalyzeStyle)
	return app, svc
}

func TestStyleHandler_GetStyle(t *testing.T) {
	app, svc := styleApp(t)
	svc.On("LoadUserStyle", mock.Anything, "u1").Return(storedStyle(), nil).Once()
	svc.On("LoadUserStyle", mock.Anything, "u2").Return(nil, nil).Once()

	status, body := do(t, app, fiber.MethodGet, "/style", "u1", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Punchy", body["style"].(map[string]any)["style_profile"])

	status, body = do(t, app, fiber.MethodGet, "/style", "u2", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, body["style"])
}

func TestStyleHandler_Analyze(t *testing.T) {
	app, svc := styleApp(t)
	svc.On("AnalyzeStyle", mock.Anything, "u1", []string{"A", "B"}).Return(storedStyle(), nil).Once()

	status, body := do(t, app, fiber.MethodPost, "/style/analyze", "u1", fiber.Map{"posts": []string{"A", "B"}})
	require.Equal(t, fiber.StatusOK, status)

	n := notification(t, body)
	assert.Equal(t, "Analysis Complete", n["title"])
	assert.Equal(t, "Your writing style has been analyzed and saved successfully.", n["description"])
	assert.Equal(t, "default", n["variant"])

	saved := body["style"].(map[string]any)
	assert.Equal(t, float64(81), saved["metrics"].(map[string]any)["engagement"])
	assert.Equal(t, []any{"A", "B"}, saved["analyzed_posts"])
}

func TestStyleHandler_AnalyzeErrors(t *testing.T) {
	tests := []struct {
		name        string
		user        string
		err         error
		style       *models.UserStyle
		status      int
		title       string
		description string
	}{
		{
			name:        "signed out",
			err:         style.ErrUnauthenticated,
			status:      fiber.StatusUnauthorized,
			title:       "Authentication Required",
			description: "Please sign in to analyze your writing style.",
		},
		{
			name:        "malformed analysis",
			user:        "u1",
			err:         &style.ValidationError{Field: "metrics.engagement", Reason: "missing metric"},
			status:      fiber.StatusBadGateway,
			title:       "Analysis Error",
			description: "Failed to process the analysis results: metrics.engagement: missing metric",
		},
		{
			name:        "empty posts",
			user:        "u1",
			err:         fmt.Errorf("%w: at least one post is required", style.ErrInvalidRequest),
			status:      fiber.StatusBadRequest,
			title:       "Analysis Failed",
			description: "Failed to analyze posts: invalid request: at least one post is required",
		},
		{
			name:        "busy",
			user:        "u1",
			err:         style.ErrBusy,
			status:      fiber.StatusConflict,
			title:       "Analysis Failed",
			description: "Failed to analyze posts: operation already in progress",
		},
		{
			name:        "llm down",
			user:        "u1",
			err:         fmt.Errorf("analysis failed: %w: dial tcp: refused", llm.ErrUnavailable),
			status:      fiber.StatusServiceUnavailable,
			title:       "Analysis Failed",
			description: "Failed to analyze posts: llm provider unavailable",
		},
		{
			name:        "not persisted",
			user:        "u1",
			err:         fmt.Errorf("%w: %w", style.ErrPersist, errors.New("disk full")),
			style:       storedStyle(),
			status:      fiber.StatusInternalServerError,
			title:       "Analysis Failed",
			description: "Failed to analyze posts: failed to persist result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, svc := styleApp(t)
			svc.On("AnalyzeStyle", mock.Anything, tt.user, []string{"A"}).Return(tt.style, tt.err).Once()

			status, body := do(t, app, fiber.MethodPost, "/style/analyze", tt.user, fiber.Map{"posts": []string{"A"}})
			assert.Equal(t, tt.status, status)

			n := notification(t, body)
			assert.Equal(t, tt.title, n["title"])
			assert.Equal(t, tt.description, n["description"])
			assert.Equal(t, "destructive", n["variant"])
			assert.Equal(t, tt.description, body["error"])
			assert.NotContains(t, body["error"], "disk full")

			if tt.style != nil {
				assert.Equal(t, "Punchy", body["style"].(map[string]any)["style_profile"])
			}
		})
	}
}

func contentApp(t *testing.T) (*fiber.App, *mocks.MockContentService) {
	svc := mocks.NewMockContentService(t)
	h := handlers.NewContentHandler(svc)

	app := newApp()
	app.Post("/content/generate", h.Generate)
	app.Get("/content", h.List)
	app.Get("/content/latest", h.Latest)
	return app, svc
}

func generated(styled bool) *style.GenerationResult {
	return &style.GenerationResult{
		Content: &models.GeneratedContent{
			ID:      "c1",
			UserID:  "u1",
			Content: "Hiring juniors pays off.",
			Topic:   "Hiring juniors",
			Tone:    "casual",
			Length:  "short",
		},
		StyleApplied: styled,
		Stats:        posttext.Stats{Words: 4, Sentences: 1, AvgSentenceLength: 4},
	}
}

func TestContentHandler_Generate(t *testing.T) {
	req := style.GenerationRequest{Topic: "Hiring juniors", Tone: "casual", Length: "short"}

	t.Run("styled", func(t *testing.T) {
		app, svc := contentApp(t)
		svc.On("GenerateContent", mock.Anything, "u1", req).Return(generated(true), nil).Once()

		status, body := do(t, app, fiber.MethodPost, "/content/generate", "u1", req)
		require.Equal(t, fiber.StatusOK, status)

		n := notification(t, body)
		assert.Equal(t, "Content Generated", n["title"])
		assert.Equal(t, "Content generated matching your writing style.", n["description"])
		assert.Equal(t, true, body["style_applied"])
		assert.Equal(t, "Hiring juniors pays off.", body["content"].(map[string]any)["content"])
		assert.Equal(t, float64(4), body["stats"].(map[string]any)["words"])
	})

	t.Run("standard", func(t *testing.T) {
		app, svc := contentApp(t)
		svc.On("GenerateContent", mock.Anything, "u1", req).Return(generated(false), nil).Once()

		_, body := do(t, app, fiber.MethodPost, "/content/generate", "u1", req)
		assert.Equal(t, "Content generated with standard optimization.", notification(t, body)["description"])
	})

	t.Run("not persisted", func(t *testing.T) {
		app, svc := contentApp(t)
		svc.On("GenerateContent", mock.Anything, "u1", req).
			Return(generated(true), fmt.Errorf("%w: %w", style.ErrPersist, errors.New("db locked"))).Once()

		status, body := do(t, app, fiber.MethodPost, "/content/generate", "u1", req)
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "Generation Failed", notification(t, body)["title"])
		assert.Equal(t, "Hiring juniors pays off.", body["content"].(map[string]any)["content"])
	})

	t.Run("signed out", func(t *testing.T) {
		app, svc := contentApp(t)
		svc.On("GenerateContent", mock.Anything, "", req).Return(nil, style.ErrUnauthenticated).Once()

		status, body := do(t, app, fiber.MethodPost, "/content/generate", "", req)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		n := notification(t, body)
		assert.Equal(t, "Authentication Required", n["title"])
		assert.Equal(t, "Please sign in to generate content.", n["description"])
	})

	t.Run("invalid topic", func(t *testing.T) {
		app, svc := contentApp(t)
		bad := style.GenerationRequest{Topic: "x"}
		svc.On("GenerateContent", mock.Anything, "u1", bad).
			Return(nil, fmt.Errorf("%w: topic must be at least 2 characters", style.ErrInvalidRequest)).Once()

		status, body := do(t, app, fiber.MethodPost, "/content/generate", "u1", bad)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Failed to generate content: invalid request: topic must be at least 2 characters",
			notification(t, body)["description"])
	})

	t.Run("empty completion", func(t *testing.T) {
		app, svc := contentApp(t)
		svc.On("GenerateContent", mock.Anything, "u1", req).
			Return(nil, fmt.Errorf("%w: %w", style.ErrInvalidResponse, llm.ErrEmptyResponse)).Once()

		status, _ := do(t, app, fiber.MethodPost, "/content/generate", "u1", req)
		assert.Equal(t, fiber.StatusBadGateway, status)
	})
}

func TestContentHandler_ListAndLatest(t *testing.T) {
	app, svc := contentApp(t)
	svc.On("ListGeneratedContent", mock.Anything, "u1").
		Return([]models.GeneratedContent{{ID: "c2"}, {ID: "c1"}}, nil).Once()
	svc.On("ListGeneratedContent", mock.Anything, "u2").Return(nil, nil).Once()
	svc.On("LastGenerated", mock.Anything, "u1").Return("latest post", nil).Once()

	status, body := do(t, app, fiber.MethodGet, "/content", "u1", nil)
	require.Equal(t, fiber.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "c2", items[0].(map[string]any)["id"])

	_, body = do(t, app, fiber.MethodGet, "/content", "u2", nil)
	assert.Equal(t, []any{}, body["items"])
	assert.Equal(t, float64(0), body["count"])

	_, body = do(t, app, fiber.MethodGet, "/content/latest", "u1", nil)
	assert.Equal(t, "latest post", body["content"])
}

func authApp(t *testing.T) (*fiber.App, *mocks.MockAuthService) {
	svc := mocks.NewMockAuthService(t)
	h := handlers.NewAuthHandler(svc)

	app := newApp()
	app.Post("/auth/signup", h.SignUp)
	app.Post("/auth/signin", h.SignIn)
	app.Post("/auth/signout", h.SignOut)
	app.Get("/auth/session", h.Session)
	return app, svc
}

func TestAuthHandler_SignUp(t *testing.T) {
	app, svc := authApp(t)
	svc.On("SignUp", mock.Anything, "ada@example.com", "secret-pass").
		Return(&models.User{ID: "u1", Email: "ada@example.com", PasswordHash: "hash"}, nil).Once()
	svc.On("SignUp", mock.Anything, "ada@example.com", "other-pass").Return(nil, auth.ErrEmailTaken).Once()
	svc.On("SignUp", mock.Anything, "ada", "secret-pass").
		Return(nil, fmt.Errorf("%w: invalid email address", auth.ErrInvalidInput)).Once()

	status, body := do(t, app, fiber.MethodPost, "/auth/signup", "", fiber.Map{"email": "ada@example.com", "password": "secret-pass"})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Account created", notification(t, body)["title"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	assert.NotContains(t, user, "password_hash")

	status, body = do(t, app, fiber.MethodPost, "/auth/signup", "", fiber.Map{"email": "ada@example.com", "password": "other-pass"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Error", notification(t, body)["title"])

	status, body = do(t, app, fiber.MethodPost, "/auth/signup", "", fiber.Map{"email": "ada", "password": "secret-pass"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, notification(t, body)["description"], "invalid email address")
}

func TestAuthHandler_SignInOutSession(t *testing.T) {
	app, svc := authApp(t)
	session := &auth.Session{
		AccessToken: "jwt",
		TokenType:   "Bearer",
		ExpiresAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		User:        &models.User{ID: "u1", Email: "ada@example.com"},
	}
	svc.On("SignIn", mock.Anything, "ada@example.com", "secret-pass").Return(session, nil).Once()
	svc.On("SignIn", mock.Anything, "ada@example.com", "wrong").Return(nil, auth.ErrInvalidCredentials).Once()
	svc.On("SignOut", mock.Anything, "token-u1").Return(nil).Once()
	svc.On("CurrentUser", mock.Anything, "u1").Return(session.User, nil).Once()

	status, body := do(t, app, fiber.MethodPost, "/auth/signin", "", fiber.Map{"email": "ada@example.com", "password": "secret-pass"})
	require.Equal(t, fiber.StatusOK, status)
	n := notification(t, body)
	assert.Equal(t, "Welcome back!", n["title"])
	assert.Equal(t, "You have successfully signed in.", n["description"])
	assert.Equal(t, "jwt", body["session"].(map[string]any)["access_token"])

	status, body = do(t, app, fiber.MethodPost, "/auth/signin", "", fiber.Map{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", notification(t, body)["description"])

	status, body = do(t, app, fiber.MethodGet, "/auth/session", "u1", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ada@example.com", body["user"].(map[string]any)["email"])

	status, _ = do(t, app, fiber.MethodPost, "/auth/signout", "u1", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	healthy := handlers.NewHealthHandler(map[string]handlers.Pinger{"store": stubPinger{}, "redis": stubPinger{}})
	degraded := handlers.NewHealthHandler(map[string]handlers.Pinger{"store": stubPinger{}, "redis": stubPinger{err: errors.New("down")}})

	app := fiber.New()
	app.Get("/health", healthy.Health)
	app.Get("/ready", healthy.Ready)
	app.Get("/degraded/ready", degraded.Ready)

	status, body := do(t, app, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = do(t, app, fiber.MethodGet, "/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = do(t, app, fiber.MethodGet, "/degraded/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["checks"].(map[string]any)["redis"])
	assert.Equal(t, "ok", body["checks"].(map[string]any)["store"])
}

func TestWebSocketHandler_RequiresUpgrade(t *testing.T) {
	h := handlers.NewWebSocketHandler(auth.NewBroadcaster(1))

	app := newApp()
	app.Get("/auth/events", h.Upgrade, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusSwitchingProtocols) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/auth/events", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

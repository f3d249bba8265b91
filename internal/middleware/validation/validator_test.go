package validation

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.Post("/echo", func(c *fiber.Ctx) error {
		return c.Send(c.Body())
	})
	app.Get("/echo", func(c *fiber.Ctx) error {
		return c.SendString("get")
	})
	return app
}

func post(t *testing.T, app *fiber.App, contentType, body string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, "/echo", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestMiddleware_StripsNulBytes(t *testing.T) {
	app := newApp(Config{})

	status, body := post(t, app, "application/json; charset=utf-8", `{"posts":["A\u0000B","C"],"n":1}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"posts":["AB","C"],"n":1}`, body)
}

func TestMiddleware_RejectsContentType(t *testing.T) {
	status, _ := post(t, newApp(Config{}), "text/plain", `{"topic":"x"}`)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, status)
}

func TestMiddleware_RejectsInvalidJSON(t *testing.T) {
	status, body := post(t, newApp(Config{}), fiber.MIMEApplicationJSON, `{"topic":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "Invalid JSON format")
}

func TestMiddleware_RejectsLongFields(t *testing.T) {
	app := newApp(Config{MaxFieldLength: 8})

	status, _ := post(t, app, fiber.MIMEApplicationJSON, `{"posts":["123456789"]}`)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, status)

	status, _ = post(t, app, fiber.MIMEApplicationJSON, `{"posts":["12345678"]}`)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestMiddleware_PassesEmptyBodiesAndReads(t *testing.T) {
	app := newApp(Config{})

	status, _ := post(t, app, "", "")
	assert.Equal(t, fiber.StatusOK, status)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/echo", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

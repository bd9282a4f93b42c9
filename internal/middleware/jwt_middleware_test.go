package middleware_test

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmtoclick/internal/middleware"
	"farmtoclick/internal/models"
	"farmtoclick/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware_secret"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newApp() *fiber.App {
	log.SetOutput(io.Discard)
	// Tokens are validated without touching the repository.
	auth := services.NewAuthService(nil, secret)

	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(auth), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c) + ":" + middleware.Role(c))
	})
	app.Get("/farm", middleware.AuthRequired(auth), middleware.RequireRole(models.RoleFarmer, models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthRequired(t *testing.T) {
	app := newApp()

	status, _ := get(t, app, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := get(t, app, "/me", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Bearer <token>")

	status, _ = get(t, app, "/me", "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, status)

	token := signed(t, jwt.MapClaims{"user_id": "u7", "email": "r@farm.test", "role": "rider"})
	status, body = get(t, app, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u7:rider", body)
}

func TestRequireRole(t *testing.T) {
	app := newApp()

	rider := signed(t, jwt.MapClaims{"user_id": "u7", "role": "rider"})
	status, body := get(t, app, "/farm", "Bearer "+rider)
	assert.Equal(t, http.StatusForbidden, status)
	assert.JSONEq(t, `{"error":"Not authorized"}`, body)

	farmer := signed(t, jwt.MapClaims{"user_id": "u8", "role": "farmer"})
	status, _ = get(t, app, "/farm", "Bearer "+farmer)
	assert.Equal(t, http.StatusNoContent, status)
}

package middleware_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"foodgram/internal/middleware"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator map[string]uint

func (s stubValidator) RequesterFromToken(token string) (services.Requester, error) {
	if id, ok := s[token]; ok {
		return services.Requester{UserID: id}, nil
	}
	return services.Requester{}, errors.New("invalid token")
}

func whoAmI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user_id": middleware.Requester(c).UserID})
}

func get(t *testing.T, app *fiber.App, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.AuthRequired(stubValidator{"good": 7}), whoAmI)

	status, body := get(t, app, "Bearer good")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"user_id":7}`, body)

	status, _ = get(t, app, "Token good")
	assert.Equal(t, fiber.StatusOK, status)

	for _, header := range []string{"", "good", "Basic good", "Bearer bad"} {
		status, _ = get(t, app, header)
		assert.Equal(t, fiber.StatusUnauthorized, status, header)
	}
}

func TestOptionalAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.OptionalAuth(stubValidator{"good": 7}), whoAmI)

	_, body := get(t, app, "Bearer good")
	assert.JSONEq(t, `{"user_id":7}`, body)

	status, body := get(t, app, "Bearer bad")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"user_id":0}`, body)

	_, body = get(t, app, "")
	assert.JSONEq(t, `{"user_id":0}`, body)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	limiter := middleware.NewRateLimiter(client, middleware.RateLimitConfig{Window: time.Minute, Limit: 1})

	app := fiber.New()
	app.Get("/", middleware.OptionalAuth(stubValidator{"good": 7}), limiter.Handler(), whoAmI)

	// Anonymous requests never touch Redis; an unreachable Redis lets users through.
	for _, header := range []string{"", "Bearer good", "Bearer good"} {
		status, _ := get(t, app, header)
		assert.Equal(t, fiber.StatusOK, status)
	}
}

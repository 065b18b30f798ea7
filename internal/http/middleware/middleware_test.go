package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archivesys/internal/auth"
	"archivesys/internal/i18n"
	"archivesys/internal/logging"
	"archivesys/internal/service"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, ridHeader, string(body))
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "test-id-123")

		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, "test-id-123", resp.Header.Get(RequestIDHeader))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "test-id-123", string(body))
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()

	app.Use(RequestID())
	app.Use(Logger(logging.New(&buf, time.UTC)))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
}

func TestLogger_ErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(Logger(logging.New(&buf, time.UTC)))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, float64(fiber.StatusTeapot), logData["status"])
	assert.Equal(t, "short and stout", logData["error"])
}

type stubAuthenticator struct {
	principal *auth.Principal
	err       error
}

func (s stubAuthenticator) Authenticate(context.Context, string) (*auth.Principal, error) {
	return s.principal, s.err
}

func TestAuth(t *testing.T) {
	newApp := func(a Authenticator) *fiber.App {
		app := fiber.New()
		app.Use(Auth(a))
		app.Get("/me", func(c *fiber.Ctx) error {
			p, _ := GetPrincipal(c)
			return c.SendString(p.Username)
		})
		app.Get("/admin", RequireStaff(), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
		return app
	}

	tests := []struct {
		name       string
		header     string
		auth       Authenticator
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing header",
			auth:       stubAuthenticator{},
			path:       "/me",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			auth:       stubAuthenticator{},
			path:       "/me",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			header:     "Bearer abc",
			auth:       stubAuthenticator{err: service.ErrInvalidCredentials},
			path:       "/me",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "inactive user",
			header:     "Bearer abc",
			auth:       stubAuthenticator{err: service.ErrInactiveUser},
			path:       "/me",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "store failure",
			header:     "Bearer abc",
			auth:       stubAuthenticator{err: errors.New("db down")},
			path:       "/me",
			wantStatus: fiber.StatusInternalServerError,
		},
		{
			name:       "valid token",
			header:     "Bearer abc",
			auth:       stubAuthenticator{principal: &auth.Principal{UserID: "u-1", Username: "clerk"}},
			path:       "/me",
			wantStatus: fiber.StatusOK,
			wantBody:   "clerk",
		},
		{
			name:       "staff route for regular user",
			header:     "Bearer abc",
			auth:       stubAuthenticator{principal: &auth.Principal{UserID: "u-1", Username: "clerk"}},
			path:       "/admin",
			wantStatus: fiber.StatusForbidden,
		},
		{
			name:       "staff route for staff",
			header:     "Bearer abc",
			auth:       stubAuthenticator{principal: &auth.Principal{UserID: "u-2", IsStaff: true}},
			path:       "/admin",
			wantStatus: fiber.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newApp(tt.auth).Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	lim := NewIPRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lim.now = func() time.Time { return now }

	assert.True(t, lim.Allow("10.0.0.1"))
	assert.True(t, lim.Allow("10.0.0.1"))
	assert.False(t, lim.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, lim.Allow("10.0.0.2"), "buckets are per ip")

	now = now.Add(time.Second)
	assert.True(t, lim.Allow("10.0.0.1"), "refilled after a second")

	now = now.Add(limiterTTL + 2*time.Minute)
	lim.Allow("10.0.0.3")
	assert.Len(t, lim.buckets, 1, "idle buckets swept")
}

func TestIPRateLimiter_Handler(t *testing.T) {
	app := fiber.New()
	app.Post("/auth/login", NewIPRateLimiter(0.001, 1).Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/auth/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/auth/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestLang(t *testing.T) {
	labels, err := i18n.NewBundle("uk")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(Lang(labels))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(i18n.LangFromContext(c.UserContext(), "none"))
	})

	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: "uk"},
		{header: "en-US,en;q=0.9", want: "en"},
		{header: "de-DE", want: "uk"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Accept-Language", tt.header)
			resp, err := app.Test(req)
			require.NoError(t, err)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
			assert.Equal(t, tt.want, resp.Header.Get("Content-Language"))
		})
	}
}

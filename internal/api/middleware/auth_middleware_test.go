package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/pkg/utils"
)

type fakeApiKeyService struct {
	userID int64
	err    error
}

func (f *fakeApiKeyService) Create(ctx context.Context, userID int64) error { return nil }

func (f *fakeApiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	return nil, nil
}

func (f *fakeApiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	return f.userID, f.err
}

func (f *fakeApiKeyService) RemoveAPIKey(ctx context.Context, userID, keyID int64) error {
	return nil
}

func setupApp(keys *fakeApiKeyService) (*fiber.App, cfg.Config) {
	c := cfg.Config{SecretKey: "test-secret", CookieName: "session"}
	m := NewAuthMiddleware(c, keys)

	app := fiber.New()
	app.Get("/me", m.RequireAuth(), func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"user_id": ctx.Locals("user_id"),
			"role":    ctx.Locals("role"),
		})
	})
	app.Get("/admin", m.RequireAuth(), m.RequireAdmin(), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})
	return app, c
}

func TestRequireAuthMissingCredentials(t *testing.T) {
	app, _ := setupApp(&fakeApiKeyService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthValidCookie(t *testing.T) {
	app, c := setupApp(&fakeApiKeyService{})

	token, err := utils.GenerateToken(c.SecretKey, "17", models.RoleUser, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", c.CookieName+"="+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAuthInvalidCookieClearsIt(t *testing.T) {
	app, c := setupApp(&fakeApiKeyService{})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", c.CookieName+"=garbage")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	cleared := false
	for _, ck := range resp.Cookies() {
		if ck.Name == c.CookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRequireAuthApiKey(t *testing.T) {
	app, _ := setupApp(&fakeApiKeyService{userID: 42})

	resp, err := app.Test(httptest.NewRequest("GET", "/me?api_key=abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAuthApiKeyRejected(t *testing.T) {
	app, _ := setupApp(&fakeApiKeyService{err: errors.New("invalid api key")})

	resp, err := app.Test(httptest.NewRequest("GET", "/me?api_key=abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdminRejectsUserRole(t *testing.T) {
	app, c := setupApp(&fakeApiKeyService{})

	token, err := utils.GenerateToken(c.SecretKey, "17", models.RoleUser, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Cookie", c.CookieName+"="+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireAdminAllowsAdminRole(t *testing.T) {
	app, c := setupApp(&fakeApiKeyService{})

	token, err := utils.GenerateToken(c.SecretKey, "17", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Cookie", c.CookieName+"="+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAdminRejectsApiKeyCallers(t *testing.T) {
	app, _ := setupApp(&fakeApiKeyService{userID: 42})

	resp, err := app.Test(httptest.NewRequest("GET", "/admin?api_key=abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

package middleware

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/service"
	"github.com/autumsam/postpilot/pkg/utils"
)

type AuthMiddleware struct {
	s   service.ApiKeyService
	cfg cfg.Config
}

func NewAuthMiddleware(c cfg.Config, s service.ApiKeyService) *AuthMiddleware {
	return &AuthMiddleware{s: s, cfg: c}
}

// RequireAuth accepts either the session cookie or an api_key query
// parameter. API key callers act with plain user privileges.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		apiKey := c.Query("api_key")

		if tokenString == "" && apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing session cookie or api key",
			})
		}

		if apiKey != "" {
			userID, err := m.s.GetUserID(c.Context(), apiKey)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			c.Locals("user_id", fmt.Sprintf("%d", userID))
			c.Locals("role", models.RoleUser)
			return c.Next()
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil {
			c.Cookie(&fiber.Cookie{
				Name:   m.cfg.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})

			slog.Info("token validation failed", "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}

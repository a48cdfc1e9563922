package handlers

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/service"
	"github.com/autumsam/postpilot/pkg/utils"
)

const sessionDuration = 24 * time.Hour

type AuthHandler struct {
	s        service.AuthService
	sessions *composer.Manager
	cfg      cfg.Config
}

func NewAuthHandler(c cfg.Config, s service.AuthService, sessions *composer.Manager) *AuthHandler {
	return &AuthHandler{s: s, sessions: sessions, cfg: c}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	authURL := "https://accounts.google.com/o/oauth2/v2/auth"
	params := url.Values{}
	params.Add("client_id", h.cfg.GoogleClientID)
	params.Add("redirect_uri", h.cfg.GoogleRedirectURI)
	params.Add("response_type", "code")
	params.Add("scope", "https://www.googleapis.com/auth/userinfo.profile https://www.googleapis.com/auth/userinfo.email")
	params.Add("access_type", "offline")

	return c.Redirect(fmt.Sprintf("%s?%s", authURL, params.Encode()))
}

func (h *AuthHandler) LoginCallback(c *fiber.Ctx) error {
	code := c.Query("code")

	userID, role, err := h.s.LoginCallback(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", userID), role, sessionDuration)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteNoneMode,
		Path:     "/",
		Expires:  time.Now().Add(sessionDuration),
	})

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}

// Logout clears the cookie and discards the user's composer draft.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID := GetUserID(c)
	h.sessions.Drop(userID)

	c.Cookie(&fiber.Cookie{
		Name:   h.cfg.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return c.SendStatus(fiber.StatusOK)
}

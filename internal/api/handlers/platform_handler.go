package handlers

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/service"
	"github.com/autumsam/postpilot/pkg/utils"
)

type PlatformHandler struct {
	ps  service.PlatformService
	tw  service.TwitterService
	ig  service.InstagramService
	fb  service.FacebookService
	li  service.LinkedInService
	tt  service.TiktokService
	cfg cfg.Config
}

func NewPlatformHandler(
	ps service.PlatformService,
	tw service.TwitterService,
	ig service.InstagramService,
	fb service.FacebookService,
	li service.LinkedInService,
	tt service.TiktokService,
	c cfg.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:  ps,
		tw:  tw,
		ig:  ig,
		fb:  fb,
		li:  li,
		tt:  tt,
		cfg: c,
	}
}

// AddSocialAccount redirects to the platform's consent page. The session
// token travels as OAuth state.
func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	state := c.Cookies(h.cfg.CookieName)
	authURL := h.ps.GetAuthURL(c.Context(), c.Params("platform"), state)
	if authURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown platform",
		})
	}
	return c.Redirect(authURL)
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platform := c.Params("platform")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to validate user",
		})
	}

	switch platform {
	case "twitter":
		err = h.tw.Callback(c.Context(), code, userID)
	case "instagram":
		err = h.ig.Callback(c.Context(), code, userID)
	case "facebook":
		err = h.fb.Callback(c.Context(), code, userID)
	case "linkedin":
		err = h.li.Callback(c.Context(), code, userID)
	case "tiktok":
		err = h.tt.Callback(c.Context(), code, userID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown platform",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	accountList, err := h.ps.List(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)

	if err := h.ps.Delete(c.Context(), userID, int64(accountID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to delete social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/autumsam/postpilot/internal/service"
)

type ApiKeyHandler struct {
	s service.ApiKeyService
}

func NewApiKeyHandler(s service.ApiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{s: s}
}

func (h *ApiKeyHandler) CreateKey(c *fiber.Ctx) error {
	if err := h.s.Create(c.Context(), GetUserID(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ApiKeyHandler) ListKeys(c *fiber.Ctx) error {
	keys, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to list api keys",
		})
	}

	return c.Status(fiber.StatusOK).JSON(keys)
}

func (h *ApiKeyHandler) RemoveKey(c *fiber.Ctx) error {
	userID := GetUserID(c)
	keyID := c.QueryInt("id", 0)

	if err := h.s.RemoveAPIKey(c.Context(), userID, int64(keyID)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

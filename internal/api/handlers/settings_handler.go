package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/autumsam/postpilot/internal/service"
	"github.com/autumsam/postpilot/internal/transfer"
)

type SettingsHandler struct {
	s service.SettingsService
}

func NewSettingsHandler(s service.SettingsService) *SettingsHandler {
	return &SettingsHandler{s: s}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.s.GetSettingsInfo(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to get settings",
		})
	}

	return c.Status(fiber.StatusOK).JSON(settings)
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req transfer.UpdateSettingsRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.s.UpdateSettings(c.Context(), GetUserID(c), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/autumsam/postpilot/internal/service"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{s: s}
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID := GetUserID(c)

	user, err := h.s.GetUserInfo(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to get user info",
		})
	}

	h.s.TouchLastActive(c.Context(), userID)

	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *UserHandler) RemoveUser(c *fiber.Ctx) error {
	if err := h.s.RemoveUser(c.Context(), GetUserID(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to remove user",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

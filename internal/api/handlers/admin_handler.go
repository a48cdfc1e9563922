package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/service"
	"github.com/autumsam/postpilot/internal/transfer"
)

type AdminHandler struct {
	s service.UserService
}

func NewAdminHandler(s service.UserService) *AdminHandler {
	return &AdminHandler{s: s}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Plan:   c.Query("plan"),
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}

	users, err := h.s.ListUsers(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to list users",
		})
	}

	return c.Status(fiber.StatusOK).JSON(users)
}

func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	var req transfer.UpdateRoleRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.s.UpdateRole(c.Context(), GetUserID(c), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AdminHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	var req transfer.BulkStatusRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.s.BulkUpdateStatus(c.Context(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AdminHandler) UpdatePlan(c *fiber.Ctx) error {
	var req transfer.UpdatePlanRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.s.UpdatePlan(c.Context(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/autumsam/postpilot/internal/service"
	"github.com/autumsam/postpilot/internal/transfer"
)

type SubscriptionHandler struct {
	s service.SubscriptionService
}

func NewSubscriptionHandler(s service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{s: s}
}

// Webhook takes the billing provider's subscription events. Always answers
// 200 on processable payloads so the provider does not retry forever.
func (h *SubscriptionHandler) Webhook(c *fiber.Ctx) error {
	var payload transfer.SubscriptionEvent
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse webhook payload",
		})
	}

	if err := h.s.HandleSubscription(c.Context(), &payload); err != nil {
		slog.Error("subscription webhook failed", "event", payload.EventType, "error", err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *SubscriptionHandler) Overview(c *fiber.Ctx) error {
	subscription, err := h.s.Overview(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to get subscription",
		})
	}

	return c.Status(fiber.StatusOK).JSON(subscription)
}

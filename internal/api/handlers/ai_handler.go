package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/service"
	"github.com/autumsam/postpilot/internal/transfer"
)

type AIHandler struct {
	sessions *composer.Manager
	trending service.TrendingService
}

func NewAIHandler(sessions *composer.Manager, trending service.TrendingService) *AIHandler {
	return &AIHandler{sessions: sessions, trending: trending}
}

// Generate runs the composer's generation flow so the candidate lands in
// the draft's generation state.
func (h *AIHandler) Generate(c *fiber.Ctx) error {
	var req transfer.GenerateContentRequest
	if !parseBody(c, &req) {
		return nil
	}

	cmp := h.sessions.Get(c.Context(), GetUserID(c))
	candidate, err := cmp.Generate(c.Context(), &composer.GenerationRequest{
		Topic:            req.Topic,
		CustomPrompt:     req.CustomPrompt,
		PlatformHint:     composer.PlatformID(req.PlatformHint),
		Tone:             composer.Tone(req.Tone),
		Length:           composer.Length(req.Length),
		UsePreviousPosts: req.UsePreviousPosts,
		UseTrending:      req.UseTrending,
	})
	if err != nil {
		if composer.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":      "Unable to generate content. Please try again.",
			"generation": cmp.Generation(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"candidate":  candidate,
		"generation": cmp.Generation(),
	})
}

func (h *AIHandler) Trending(c *fiber.Ctx) error {
	platform := c.Query("platform", "twitter")

	topics, err := h.trending.Topics(c.Context(), platform)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "unable to load trending topics",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"platform": platform,
		"topics":   topics,
	})
}

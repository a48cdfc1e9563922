package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/autumsam/postpilot/internal/service"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{s: s}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unable to get post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) History(c *fiber.Ctx) error {
	history, err := h.s.History(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list posting history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(history)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(postID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

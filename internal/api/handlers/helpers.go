package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// parseBody binds and validates a JSON request body, writing the 400
// itself. It returns false when the handler should bail out.
func parseBody(c *fiber.Ctx, out any) bool {
	if err := c.BodyParser(out); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request body",
		})
		return false
	}
	if err := validate.Struct(out); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
		return false
	}
	return true
}

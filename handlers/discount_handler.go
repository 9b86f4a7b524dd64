package handlers

import (
	"strconv"
	"time"

	"github.com/anjiri1684/activity_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ValidateDiscountCode previews a code against a cart. Ineligibility comes
// back as a normal response with a reason, not as an error.
func ValidateDiscountCode(c *fiber.Ctx) error {
	userID := callerID(c)

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code is required"})
	}
	cartTotal, err := strconv.ParseInt(c.Query("cart_total_cents"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart_total_cents must be an integer"})
	}

	var classIDs []uuid.UUID
	for _, raw := range c.Context().QueryArgs().PeekMulti("class_id") {
		id, err := uuid.Parse(string(raw))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "class_id must be a UUID"})
		}
		classIDs = append(classIDs, id)
	}

	result, _, err := services.ValidateCode(code, userID, cartTotal, classIDs, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to validate code"})
	}
	return c.JSON(fiber.Map{
		"eligible":       result.Eligible,
		"reason":         result.Reason,
		"discount_cents": result.DiscountCents,
	})
}

// PreviewSiblingDiscount shows what the family discount would take off a
// cart for the given child.
func PreviewSiblingDiscount(c *fiber.Ctx) error {
	userID := callerID(c)

	childID, err := uuid.Parse(c.Query("child_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "child_id must be a UUID"})
	}
	cartTotal, err := strconv.ParseInt(c.Query("cart_total_cents"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart_total_cents must be an integer"})
	}

	discount, err := services.EvaluateSibling(userID, childID, cartTotal)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute sibling discount"})
	}
	return c.JSON(fiber.Map{"discount_cents": discount})
}

package handlers

import (
	"errors"

	"github.com/anjiri1684/activity_hub/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var validate = validator.New()

func callerID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	return id
}

// serviceError maps the service error taxonomy onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var expiredErr *services.ExpiredClaimError
	var conflictErr *services.ConflictError
	var paymentErr *services.PaymentProcessingError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundErr.Error()})
	case errors.As(err, &expiredErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": expiredErr.Error(), "expired": true})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": conflictErr.Error()})
	case errors.As(err, &paymentErr):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error":     paymentErr.Error(),
			"retryable": paymentErr.Retryable,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

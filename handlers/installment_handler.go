package handlers

import (
	"strconv"
	"time"

	"github.com/anjiri1684/activity_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PreviewInstallments answers "what would my payment plan look like" without
// creating anything.
func PreviewInstallments(c *fiber.Ctx) error {
	totalCents, err := strconv.ParseInt(c.Query("total_cents"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "total_cents must be an integer"})
	}
	count, err := strconv.Atoi(c.Query("count"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "count must be an integer"})
	}
	frequency := c.Query("frequency", "monthly")

	first := time.Now()
	if raw := c.Query("first_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "first_date must be YYYY-MM-DD"})
		}
		first = parsed
	}

	schedule, err := services.BuildSchedule(totalCents, count, frequency, first)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"schedule": schedule})
}

type CreatePlanRequest struct {
	Count             int    `json:"count" validate:"required,min=2"`
	Frequency         string `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	PaymentMethodRef  string `json:"payment_method_ref" validate:"required"`
	ChargeImmediately bool   `json:"charge_immediately,omitempty"`
}

func CreateInstallmentPlan(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	plan, err := services.CreatePlan(orderID, req.Count, req.Frequency, req.PaymentMethodRef, req.ChargeImmediately, time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func GetInstallmentPlan(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	plan, err := services.GetPlanForOrder(orderID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(plan)
}

func CancelInstallmentPlan(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("planId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan ID"})
	}

	if err := services.CancelPlan(planID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Installment plan cancelled; completed payments are untouched."})
}

// AttemptInstallmentPayment is the manual retry path for a failed payment.
func AttemptInstallmentPayment(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("planId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan ID"})
	}
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}

	if err := services.AttemptPayment(planID, paymentID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment attempt succeeded."})
}

package handlers

import (
	"github.com/anjiri1684/activity_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	EnrollmentIDs      []string `json:"enrollment_ids" validate:"required,min=1,dive,uuid"`
	DiscountCode       *string  `json:"discount_code,omitempty"`
	UseSiblingDiscount bool     `json:"use_sibling_discount,omitempty"`
}

func CreateOrder(c *fiber.Ctx) error {
	ownerID := callerID(c)

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	enrollmentIDs := make([]uuid.UUID, 0, len(req.EnrollmentIDs))
	for _, raw := range req.EnrollmentIDs {
		id, _ := uuid.Parse(raw)
		enrollmentIDs = append(enrollmentIDs, id)
	}

	order, err := services.CreateOrder(ownerID, enrollmentIDs, req.DiscountCode, req.UseSiblingDiscount)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func GetOrder(c *fiber.Ctx) error {
	ownerID := callerID(c)
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := services.GetOrder(orderID, ownerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(order)
}

type CheckoutRequest struct {
	PaymentMethodRef     string `json:"payment_method_ref" validate:"required"`
	PaymentKind          string `json:"payment_kind" validate:"required,oneof=full subscription installments"`
	InstallmentCount     int    `json:"installment_count,omitempty"`
	InstallmentFrequency string `json:"installment_frequency,omitempty"`
	ChargeImmediately    bool   `json:"charge_immediately,omitempty"`
}

func CheckoutOrder(c *fiber.Ctx) error {
	ownerID := callerID(c)
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	method := services.PaymentMethod{
		Kind:                 req.PaymentKind,
		InstallmentCount:     req.InstallmentCount,
		InstallmentFrequency: req.InstallmentFrequency,
	}
	order, err := services.Checkout(orderID, ownerID, req.PaymentMethodRef, method, req.ChargeImmediately)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Checkout opened; awaiting payment confirmation.", "order": order})
}

func CancelOrder(c *fiber.Ctx) error {
	ownerID := callerID(c)
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	if err := services.CancelOrder(orderID, ownerID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order cancelled."})
}

// PaymentConfirmRequest is the gateway's confirmation callback. It may be
// delivered more than once; replays are acknowledged without re-processing.
type PaymentConfirmRequest struct {
	OrderID            string `json:"order_id" validate:"required,uuid"`
	AuthorizationToken string `json:"authorization_token" validate:"required"`
	Status             string `json:"status" validate:"required,oneof=succeeded processing failed"`
}

func ConfirmPayment(c *fiber.Ctx) error {
	var req PaymentConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	orderID, _ := uuid.Parse(req.OrderID)

	order, err := services.ConfirmOrder(orderID, req.AuthorizationToken, req.Status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment confirmation processed.", "order_status": order.Status})
}

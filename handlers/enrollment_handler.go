package handlers

import (
	"time"

	"github.com/anjiri1684/activity_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateEnrollmentRequest struct {
	ChildID          string `json:"child_id" validate:"required,uuid"`
	ClassID          string `json:"class_id" validate:"required,uuid"`
	PriorityWaitlist bool   `json:"priority_waitlist,omitempty"`
}

func CreateEnrollment(c *fiber.Ctx) error {
	parentID := callerID(c)

	var req CreateEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	childID, _ := uuid.Parse(req.ChildID)
	classID, _ := uuid.Parse(req.ClassID)

	enrollment, waitlistPosition, err := services.CreateEnrollment(parentID, childID, classID, req.PriorityWaitlist)
	if err != nil {
		return serviceError(c, err)
	}

	body := fiber.Map{"enrollment": enrollment}
	if waitlistPosition > 0 {
		body["waitlist_position"] = waitlistPosition
		body["message"] = "Class is full; your child has been added to the waitlist."
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

func GetMyEnrollments(c *fiber.Ctx) error {
	parentID := callerID(c)

	enrollments, err := services.GetMyEnrollments(parentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load enrollments"})
	}
	return c.JSON(enrollments)
}

type CancelEnrollmentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func CancelEnrollment(c *fiber.Ctx) error {
	parentID := callerID(c)
	enrollmentID, err := uuid.Parse(c.Params("enrollmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment ID"})
	}

	var req CancelEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.CancelEnrollment(enrollmentID, parentID, req.Reason); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Enrollment cancelled."})
}

func PreviewCancellation(c *fiber.Ctx) error {
	parentID := callerID(c)
	enrollmentID, err := uuid.Parse(c.Params("enrollmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment ID"})
	}

	breakdown, err := services.PreviewCancellation(enrollmentID, parentID, time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(breakdown)
}

type TransferEnrollmentRequest struct {
	NewClassID       string `json:"new_class_id" validate:"required,uuid"`
	PaymentMethodRef string `json:"payment_method_ref,omitempty"`
}

func TransferEnrollment(c *fiber.Ctx) error {
	parentID := callerID(c)
	enrollmentID, err := uuid.Parse(c.Params("enrollmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment ID"})
	}

	var req TransferEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	newClassID, _ := uuid.Parse(req.NewClassID)

	enrollment, err := services.TransferEnrollment(enrollmentID, parentID, newClassID, req.PaymentMethodRef)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Enrollment transferred.", "enrollment": enrollment})
}

package handlers

import (
	"time"

	"github.com/anjiri1684/activity_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ClaimWaitlistSpot(c *fiber.Ctx) error {
	enrollmentID, err := uuid.Parse(c.Params("enrollmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment ID"})
	}

	if err := services.ClaimWaitlistSpot(enrollmentID, time.Now()); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Spot claimed. Complete checkout to secure the enrollment."})
}

func PromoteWaitlistEntry(c *fiber.Ctx) error {
	enrollmentID, err := uuid.Parse(c.Params("enrollmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment ID"})
	}

	if err := services.PromoteWaitlistEntry(enrollmentID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Waitlist entry promoted to an active enrollment."})
}

func NotifyNextOnWaitlist(c *fiber.Ctx) error {
	classID, err := uuid.Parse(c.Params("classId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID"})
	}

	head, err := services.NotifyNext(classID)
	if err != nil {
		return serviceError(c, err)
	}
	if head == nil {
		return c.JSON(fiber.Map{"message": "Waitlist is empty."})
	}
	return c.JSON(fiber.Map{"message": "Next family notified.", "entry": head})
}

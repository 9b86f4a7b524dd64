package handlers

import (
	"time"

	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/gofiber/fiber/v2"
)

type CreateChildRequest struct {
	FullName  string  `json:"full_name" validate:"required,min=2"`
	BirthDate *string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes     *string `json:"notes,omitempty"`
}

func CreateChild(c *fiber.Ctx) error {
	parentID := callerID(c)

	var req CreateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	child := models.Child{
		ParentID: parentID,
		FullName: req.FullName,
		Notes:    req.Notes,
	}
	if req.BirthDate != nil {
		birthDate, _ := time.Parse("2006-01-02", *req.BirthDate)
		child.BirthDate = &birthDate
	}

	if err := database.DB.Create(&child).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create child"})
	}
	return c.Status(fiber.StatusCreated).JSON(child)
}

func GetMyChildren(c *fiber.Ctx) error {
	parentID := callerID(c)

	var children []models.Child
	database.DB.Where("parent_id = ?", parentID).Order("created_at asc").Find(&children)
	return c.JSON(children)
}

package handlers

import (
	"time"

	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/anjiri1684/activity_hub/services"
	"github.com/anjiri1684/activity_hub/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateClassRequest struct {
	Name          string  `json:"name" validate:"required,min=2"`
	Program       string  `json:"program,omitempty"`
	Description   *string `json:"description,omitempty"`
	PriceCents    int64   `json:"price_cents" validate:"required,min=0"`
	Capacity      int     `json:"capacity" validate:"required,min=0"`
	SessionsTotal int     `json:"sessions_total" validate:"required,min=1"`
	StartDate     string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string  `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func CreateClass(c *fiber.Ctx) error {
	var req CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)
	if !endDate.After(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be after start_date"})
	}

	class := models.ActivityClass{
		Name:          req.Name,
		Program:       req.Program,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		Capacity:      req.Capacity,
		SessionsTotal: req.SessionsTotal,
		StartDate:     startDate,
		EndDate:       endDate,
		IsActive:      true,
	}
	if err := database.DB.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create class"})
	}
	return c.Status(fiber.StatusCreated).JSON(class)
}

func ListClasses(c *fiber.Ctx) error {
	var classes []models.ActivityClass
	database.DB.Where("is_active = ?", true).Order("start_date asc").Find(&classes)
	return c.JSON(classes)
}

func GetClassAvailability(c *fiber.Ctx) error {
	classID, err := uuid.Parse(c.Params("classId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID"})
	}

	var class models.ActivityClass
	if err := database.DB.First(&class, "id = ?", classID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}

	spots, err := services.AvailableSpots(database.DB, &class)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute availability"})
	}
	return c.JSON(fiber.Map{"class_id": class.ID, "available_spots": spots, "capacity": class.Capacity})
}

func DeactivateClass(c *fiber.Ctx) error {
	classID, err := uuid.Parse(c.Params("classId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID"})
	}

	result := database.DB.Model(&models.ActivityClass{}).Where("id = ?", classID).Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate class"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}
	return c.JSON(fiber.Map{"message": "Class deactivated."})
}

type CreateDiscountCodeRequest struct {
	Code           *string  `json:"code,omitempty"`
	Type           string   `json:"type" validate:"required,oneof=percentage fixed_amount"`
	Value          int64    `json:"value" validate:"required,min=1"`
	ValidFrom      *string  `json:"valid_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil     *string  `json:"valid_until,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MaxUses        int      `json:"max_uses,omitempty"`
	MaxUsesPerUser int      `json:"max_uses_per_user,omitempty"`
	MinOrderCents  int64    `json:"min_order_cents,omitempty"`
	FirstTimeOnly  bool     `json:"first_time_only,omitempty"`
	ClassIDs       []string `json:"class_ids,omitempty" validate:"omitempty,dive,uuid"`
}

func CreateDiscountCode(c *fiber.Ctx) error {
	var req CreateDiscountCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Type == models.DiscountTypePercentage && req.Value > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "percentage value cannot exceed 100"})
	}

	code := models.DiscountCode{
		Type:           req.Type,
		Value:          req.Value,
		MaxUses:        req.MaxUses,
		MaxUsesPerUser: req.MaxUsesPerUser,
		MinOrderCents:  req.MinOrderCents,
		FirstTimeOnly:  req.FirstTimeOnly,
		IsActive:       true,
	}
	if req.ValidFrom != nil {
		from, _ := time.Parse("2006-01-02", *req.ValidFrom)
		code.ValidFrom = &from
	}
	if req.ValidUntil != nil {
		until, _ := time.Parse("2006-01-02", *req.ValidUntil)
		code.ValidUntil = &until
	}

	if req.Code != nil && *req.Code != "" {
		code.Code = *req.Code
	} else {
		generated, err := utils.GenerateUniqueDiscountCode(database.DB)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate code"})
		}
		code.Code = generated
	}

	for _, raw := range req.ClassIDs {
		classID, _ := uuid.Parse(raw)
		code.ApplicableClasses = append(code.ApplicableClasses, models.DiscountCodeClass{ClassID: classID})
	}

	if err := database.DB.Create(&code).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Failed to create discount code (duplicate?)"})
	}
	return c.Status(fiber.StatusCreated).JSON(code)
}

func DeactivateDiscountCode(c *fiber.Ctx) error {
	codeID, err := uuid.Parse(c.Params("codeId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid code ID"})
	}

	result := database.DB.Model(&models.DiscountCode{}).Where("id = ?", codeID).Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate code"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Discount code not found"})
	}
	return c.JSON(fiber.Map{"message": "Discount code deactivated."})
}

// ListRefundPendingEnrollments surfaces cancellations whose gateway refund
// failed and still needs manual reconciliation.
func ListRefundPendingEnrollments(c *fiber.Ctx) error {
	var enrollments []models.Enrollment
	database.DB.Preload("Child").Preload("Class").
		Where("refund_pending = ?", true).
		Order("cancelled_at asc").
		Find(&enrollments)
	return c.JSON(enrollments)
}

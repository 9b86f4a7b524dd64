package routes

import (
	"github.com/anjiri1684/activity_hub/handlers"
	"github.com/anjiri1684/activity_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func DiscountRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	discounts := api.Group("/discounts", middleware.Protected())
	discounts.Get("/validate", handlers.ValidateDiscountCode)
	discounts.Get("/sibling-preview", handlers.PreviewSiblingDiscount)
}

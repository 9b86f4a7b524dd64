package routes

import (
	"github.com/anjiri1684/activity_hub/handlers"
	"github.com/anjiri1684/activity_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func ChildRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	children := api.Group("/children", middleware.Protected())
	children.Get("/me", handlers.GetMyChildren)
	children.Post("", handlers.CreateChild)
}

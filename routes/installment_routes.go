package routes

import (
	"github.com/anjiri1684/activity_hub/handlers"
	"github.com/anjiri1684/activity_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func InstallmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	installments := api.Group("/installments", middleware.Protected())
	installments.Get("/preview", handlers.PreviewInstallments)
	installments.Post("/orders/:orderId", handlers.CreateInstallmentPlan)
	installments.Get("/orders/:orderId", handlers.GetInstallmentPlan)
	installments.Post("/:planId/cancel", handlers.CancelInstallmentPlan)
	installments.Post("/:planId/payments/:paymentId/attempt", handlers.AttemptInstallmentPayment)
}

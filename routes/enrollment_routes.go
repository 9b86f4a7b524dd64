package routes

import (
	"github.com/anjiri1684/activity_hub/handlers"
	"github.com/anjiri1684/activity_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func EnrollmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	enrollment := api.Group("/enrollments", middleware.Protected())
	enrollment.Get("/me", handlers.GetMyEnrollments)
	enrollment.Post("", handlers.CreateEnrollment)
	enrollment.Get("/:enrollmentId/cancellation-preview", handlers.PreviewCancellation)
	enrollment.Post("/:enrollmentId/cancel", handlers.CancelEnrollment)
	enrollment.Post("/:enrollmentId/transfer", handlers.TransferEnrollment)
	enrollment.Post("/:enrollmentId/claim", handlers.ClaimWaitlistSpot)
}

package routes

import (
	"github.com/anjiri1684/activity_hub/handlers"
	"github.com/anjiri1684/activity_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/classes", handlers.CreateClass)
	admin.Delete("/classes/:classId", handlers.DeactivateClass)
	admin.Post("/discount-codes", handlers.CreateDiscountCode)
	admin.Delete("/discount-codes/:codeId", handlers.DeactivateDiscountCode)
	admin.Post("/waitlist/:enrollmentId/promote", handlers.PromoteWaitlistEntry)
	admin.Post("/waitlist/classes/:classId/notify-next", handlers.NotifyNextOnWaitlist)
	admin.Get("/enrollments/refund-pending", handlers.ListRefundPendingEnrollments)
}

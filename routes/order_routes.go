package routes

import (
	"github.com/anjiri1684/activity_hub/handlers"
	"github.com/anjiri1684/activity_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func OrderRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	order := api.Group("/orders", middleware.Protected())
	order.Post("", handlers.CreateOrder)
	order.Get("/:orderId", handlers.GetOrder)
	order.Post("/:orderId/checkout", handlers.CheckoutOrder)
	order.Post("/:orderId/cancel", handlers.CancelOrder)

	// Gateway callback, authenticated by the authorization token in the body.
	api.Post("/payments/confirm", handlers.ConfirmPayment)
}

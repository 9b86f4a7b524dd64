package notifications

import (
	"fmt"
	"log"

	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/anjiri1684/activity_hub/websocket"
	"github.com/google/uuid"
)

var eventSubjects = map[string]string{
	"order.paid":              "Your payment was successful!",
	"order.partially_paid":    "Your first installment went through!",
	"enrollment.activated":    "Enrollment confirmed!",
	"enrollment.cancelled":    "Your enrollment was cancelled",
	"waitlist.spot_available": "A spot opened up — claim it now!",
	"installment.failed":      "We couldn't process your installment",
	"installment.defaulted":   "Your payment plan needs attention",
}

// Notify delivers an event to a user over email and the websocket feed.
// Fire-and-forget: failures are logged and never block the caller.
func Notify(userID uuid.UUID, event string, payload map[string]interface{}) {
	websocket.Push(userID, event, payload)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		log.Printf("🔥 Notify: user %s not found: %v", userID, err)
		return
	}

	subject, ok := eventSubjects[event]
	if !ok {
		subject = fmtEvent(event)
	}

	body := fmt.Sprintf("<h1>%s</h1>", subject)
	if detail, ok := payload["detail"].(string); ok && detail != "" {
		body += fmt.Sprintf("<p>%s</p>", detail)
	}
	body += "<p>Log in to your dashboard for details.</p>"

	go SendEmail(user.FullName, user.Email, subject, body)
}

package services

import (
	"fmt"
	"log"

	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/anjiri1684/activity_hub/notifications"
)

// notifyWaitlistSpot tells the family at the head of the queue that a seat
// opened and their claim window is running.
func notifyWaitlistSpot(entry *models.WaitlistEntry) {
	var enrollment models.Enrollment
	if err := database.DB.Preload("Child").Preload("Class").
		First(&enrollment, "id = ?", entry.EnrollmentID).Error; err != nil {
		log.Printf("🔥 Waitlist notification: enrollment %s not found: %v", entry.EnrollmentID, err)
		return
	}

	detail := fmt.Sprintf("A spot opened up in %s for %s.", enrollment.Class.Name, enrollment.Child.FullName)
	if entry.ClaimExpiresAt != nil {
		detail += fmt.Sprintf(" Claim it before %s or it goes to the next family.",
			entry.ClaimExpiresAt.Format("Jan 2, 3:04 PM"))
	}

	go notifications.Notify(enrollment.Child.ParentID, "waitlist.spot_available", map[string]interface{}{
		"enrollment_id":    enrollment.ID.String(),
		"class_id":         enrollment.ClassID.String(),
		"claim_expires_at": entry.ClaimExpiresAt,
		"detail":           detail,
	})
}

func notifyOrderSettled(order *models.Order) {
	event := "order.paid"
	if order.Status == models.OrderStatusPartiallyPaid {
		event = "order.partially_paid"
	}
	notifications.Notify(order.OwnerID, event, map[string]interface{}{
		"order_id":    order.ID.String(),
		"total_cents": order.TotalCents,
		"detail":      fmt.Sprintf("Payment received for order %s.", order.ID),
	})
}

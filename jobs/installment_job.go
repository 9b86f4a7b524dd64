package jobs

import (
	"errors"
	"log"
	"time"

	config "github.com/anjiri1684/activity_hub/configs"
	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/anjiri1684/activity_hub/notifications"
	"github.com/anjiri1684/activity_hub/services"
)

// AttemptDueInstallments charges every installment that is due: pending
// payments past their due date, plus failed ones still under the retry cap.
func AttemptDueInstallments() {
	log.Println("Running job: AttemptDueInstallments...")

	maxAttempts := config.Policy().InstallmentMaxAttempts
	now := time.Now()

	var due []models.InstallmentPayment
	err := database.DB.
		Joins("JOIN installment_plans ON installment_plans.id = installment_payments.plan_id").
		Where("installment_plans.status = ?", models.PlanStatusActive).
		Where("installment_payments.due_date <= ?", now).
		Where("(installment_payments.status = ? OR (installment_payments.status = ? AND installment_payments.attempt_count < ?))",
			models.InstallmentStatusPending, models.InstallmentStatusFailed, maxAttempts).
		Order("installment_payments.due_date asc").
		Find(&due).Error
	if err != nil {
		log.Printf("Error loading due installments: %v", err)
		return
	}

	if len(due) == 0 {
		return
	}

	for _, payment := range due {
		err := services.AttemptPayment(payment.PlanID, payment.ID)
		if err == nil {
			continue
		}

		var procErr *services.PaymentProcessingError
		if errors.As(err, &procErr) {
			notifyInstallmentFailure(payment, procErr)
			continue
		}
		log.Printf("🔥 Installment attempt for payment %s errored: %v", payment.ID, err)
	}
}

func notifyInstallmentFailure(payment models.InstallmentPayment, procErr *services.PaymentProcessingError) {
	var plan models.InstallmentPlan
	if err := database.DB.Preload("Order").First(&plan, "id = ?", payment.PlanID).Error; err != nil {
		return
	}

	event := "installment.failed"
	detail := "We could not process your installment payment. We will retry automatically."
	if plan.Status == models.PlanStatusDefaulted {
		event = "installment.defaulted"
		detail = "Your payment plan has been suspended after repeated failures. Please update your payment method."
	}

	go notifications.Notify(plan.Order.OwnerID, event, map[string]interface{}{
		"plan_id":    plan.ID.String(),
		"payment_id": payment.ID.String(),
		"reason":     procErr.Reason,
		"detail":     detail,
	})
}

package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	config "github.com/anjiri1684/activity_hub/configs"
	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/anjiri1684/activity_hub/payments"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxInstallmentCount bounds plan length; it also keeps unauthenticated
// previews from allocating arbitrarily large schedules.
const maxInstallmentCount = 36

type ScheduledPayment struct {
	Sequence    int       `json:"sequence"`
	DueDate     time.Time `json:"due_date"`
	AmountCents int64     `json:"amount_cents"`
}

// BuildSchedule splits a total into count integer amounts. The floor-division
// remainder lands entirely on the first installment so the amounts always sum
// back to the total. Monthly steps clamp to the length of the target month.
func BuildSchedule(totalCents int64, count int, frequency string, first time.Time) ([]ScheduledPayment, error) {
	if totalCents <= 0 {
		return nil, &ValidationError{Field: "total", Message: "must be positive"}
	}
	if count <= 0 {
		return nil, &ValidationError{Field: "count", Message: "must be at least 1"}
	}
	if count > maxInstallmentCount {
		return nil, &ValidationError{Field: "count", Message: fmt.Sprintf("must be at most %d", maxInstallmentCount)}
	}
	switch frequency {
	case models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly:
	default:
		return nil, &ValidationError{Field: "frequency", Message: fmt.Sprintf("unknown frequency %q", frequency)}
	}

	base := totalCents / int64(count)
	remainder := totalCents - base*int64(count)

	schedule := make([]ScheduledPayment, count)
	for i := 0; i < count; i++ {
		amount := base
		if i == 0 {
			amount += remainder
		}
		schedule[i] = ScheduledPayment{
			Sequence:    i + 1,
			DueDate:     stepDueDate(first, frequency, i),
			AmountCents: amount,
		}
	}
	return schedule, nil
}

func stepDueDate(first time.Time, frequency string, step int) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return first.AddDate(0, 0, 7*step)
	case models.FrequencyBiweekly:
		return first.AddDate(0, 0, 14*step)
	default:
		return addMonthsClamped(first, step)
	}
}

// addMonthsClamped steps whole calendar months, pinning the day to the last
// day of shorter months (Jan 31 + 1 month = Feb 28, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// CreatePlan persists an installment plan for a checked-out order. When
// chargeImmediately is set the first payment is attempted synchronously;
// otherwise the due-payment job picks it up.
func CreatePlan(orderID uuid.UUID, count int, frequency, paymentMethodRef string, chargeImmediately bool, firstDate time.Time) (*models.InstallmentPlan, error) {
	if paymentMethodRef == "" {
		return nil, &ValidationError{Field: "payment_method_ref", Message: "is required"}
	}

	var plan models.InstallmentPlan
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID.String()}
			}
			return err
		}
		if order.Status != models.OrderStatusPendingPayment {
			return &ConflictError{Message: "installment plans can only be created for orders awaiting payment"}
		}

		var existing models.InstallmentPlan
		if err := tx.Where("order_id = ?", orderID).First(&existing).Error; err == nil {
			return &ConflictError{Message: "order already has an installment plan"}
		}

		schedule, err := BuildSchedule(order.TotalCents, count, frequency, firstDate)
		if err != nil {
			return err
		}

		plan = models.InstallmentPlan{
			OrderID:          orderID,
			TotalCents:       order.TotalCents,
			Count:            count,
			Frequency:        frequency,
			PaymentMethodRef: paymentMethodRef,
			Status:           models.PlanStatusActive,
		}
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}

		for _, s := range schedule {
			payment := models.InstallmentPayment{
				PlanID:      plan.ID,
				Sequence:    s.Sequence,
				DueDate:     s.DueDate,
				AmountCents: s.AmountCents,
				Status:      models.InstallmentStatusPending,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			plan.Payments = append(plan.Payments, payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if chargeImmediately && len(plan.Payments) > 0 {
		if err := AttemptPayment(plan.ID, plan.Payments[0].ID); err != nil {
			return &plan, err
		}
	}
	return &plan, nil
}

// AttemptPayment charges a single installment. The payment row is locked for
// the duration of the attempt and anything already resolved is skipped, so
// concurrent invocations for the same payment cannot double-charge.
func AttemptPayment(planID, paymentID uuid.UUID) error {
	maxAttempts := config.Policy().InstallmentMaxAttempts

	var payment models.InstallmentPayment
	var plan models.InstallmentPlan
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&payment, "id = ? AND plan_id = ?", paymentID, planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "installment payment", ID: paymentID.String()}
			}
			return err
		}
		if payment.Status == models.InstallmentStatusSucceeded {
			return nil
		}
		if err := tx.First(&plan, "id = ?", planID).Error; err != nil {
			return err
		}
		if plan.Status != models.PlanStatusActive {
			return &ConflictError{Message: "installment plan is not active"}
		}

		var order models.Order
		if err := tx.First(&order, "id = ?", plan.OrderID).Error; err != nil {
			return err
		}

		result, chargeErr := payments.Client.Charge(payment.AmountCents, order.Currency, plan.PaymentMethodRef)
		if chargeErr == nil && result.Status != payments.StatusSucceeded {
			chargeErr = &payments.GatewayError{
				Code:      result.Status,
				Message:   "charge did not succeed",
				Retryable: result.Status == payments.StatusProcessing,
			}
		}

		if chargeErr != nil {
			return recordFailedAttempt(tx, &payment, &plan, maxAttempts, chargeErr)
		}

		now := time.Now()
		payment.Status = models.InstallmentStatusSucceeded
		payment.AttemptCount++
		payment.ChargeID = &result.ChargeID
		payment.FailureReason = nil
		payment.UpdatedAt = now
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.InstallmentPayment{}).
			Where("plan_id = ? AND status <> ?", plan.ID, models.InstallmentStatusSucceeded).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			plan.Status = models.PlanStatusCompleted
			if err := tx.Save(&plan).Error; err != nil {
				return err
			}
		}
		return settleOrderAfterInstallment(tx, plan.OrderID, remaining == 0)
	})
	return err
}

func recordFailedAttempt(tx *gorm.DB, payment *models.InstallmentPayment, plan *models.InstallmentPlan, maxAttempts int, cause error) error {
	reason := cause.Error()
	retryable := true
	var gwErr *payments.GatewayError
	if errors.As(cause, &gwErr) {
		reason = gwErr.Message
		if reason == "" {
			reason = gwErr.Code
		}
		retryable = gwErr.Retryable
	}

	payment.AttemptCount++
	payment.Status = models.InstallmentStatusFailed
	payment.FailureReason = &reason
	if err := tx.Save(payment).Error; err != nil {
		return err
	}

	exhausted := payment.AttemptCount >= maxAttempts
	if exhausted || !retryable {
		plan.Status = models.PlanStatusDefaulted
		if err := tx.Save(plan).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", plan.OrderID).
			Update("flagged_for_collections", true).Error; err != nil {
			return err
		}
		log.Printf("🔥 Installment plan %s defaulted after payment %s failed (%s)", plan.ID, payment.ID, reason)
	}

	return &PaymentProcessingError{Reason: reason, Retryable: retryable && !exhausted, Err: cause}
}

// settleOrderAfterInstallment moves the order forward as installments clear:
// the first successful payment leaves it partially paid, the last one paid.
func settleOrderAfterInstallment(tx *gorm.DB, orderID uuid.UUID, planComplete bool) error {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", orderID).Error; err != nil {
		return err
	}

	switch {
	case planComplete && (order.Status == models.OrderStatusPartiallyPaid || order.Status == models.OrderStatusPendingPayment):
		order.Status = models.OrderStatusPaid
	case order.Status == models.OrderStatusPendingPayment:
		order.Status = models.OrderStatusPartiallyPaid
	default:
		return nil
	}
	if err := tx.Save(&order).Error; err != nil {
		return err
	}

	if order.Status == models.OrderStatusPartiallyPaid || order.Status == models.OrderStatusPaid {
		if err := recordDiscountRedemption(tx, &order); err != nil {
			return err
		}
		if err := activateEnrollmentsForOrder(tx, &order); err != nil {
			return err
		}
	}
	return nil
}

// CancelPlan stops all future attempts. Payments that already went through
// stay as they are; refunding them is a separate explicit action.
func CancelPlan(planID uuid.UUID) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var plan models.InstallmentPlan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&plan, "id = ?", planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "installment plan", ID: planID.String()}
			}
			return err
		}
		if plan.Status != models.PlanStatusActive {
			return &ConflictError{Message: "only active installment plans can be cancelled"}
		}
		plan.Status = models.PlanStatusCancelled
		return tx.Save(&plan).Error
	})
}

// GetPlanForOrder loads a plan with its payments in sequence order.
func GetPlanForOrder(orderID uuid.UUID) (*models.InstallmentPlan, error) {
	var plan models.InstallmentPlan
	err := database.DB.Preload("Payments", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence asc")
	}).Where("order_id = ?", orderID).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "installment plan", ID: orderID.String()}
		}
		return nil, err
	}
	return &plan, nil
}

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

// AvailableSpots reports remaining capacity: seats held by pending and
// active enrollments count against it, waitlisted ones do not.
func AvailableSpots(tx *gorm.DB, class *models.ActivityClass) (int, error) {
	var held int64
	err := tx.Model(&models.Enrollment{}).
		Where("class_id = ? AND status IN ?", class.ID,
			[]string{models.EnrollmentStatusPending, models.EnrollmentStatusActive}).
		Count(&held).Error
	if err != nil {
		return 0, err
	}
	spots := class.Capacity - int(held)
	if spots < 0 {
		spots = 0
	}
	return spots, nil
}

// CreateEnrollment registers a child for a class. A full class is not an
// error: the enrollment is created waitlisted and its queue position is
// returned alongside it.
func CreateEnrollment(parentID, childID, classID uuid.UUID, priorityWaitlist bool) (*models.Enrollment, int, error) {
	var enrollment models.Enrollment
	var waitlistPosition int

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var child models.Child
		if err := tx.Where("id = ? AND parent_id = ?", childID, parentID).First(&child).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "child", ID: childID.String()}
			}
			return err
		}

		// The class row lock serializes concurrent enrollments for the same
		// class, so two requests cannot both take the last seat.
		var class models.ActivityClass
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&class, "id = ?", classID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "class", ID: classID.String()}
			}
			return err
		}
		if !class.IsActive {
			return &ConflictError{Message: "class is not open for enrollment"}
		}

		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("child_id = ? AND class_id = ? AND status <> ?", childID, classID, models.EnrollmentStatusCancelled).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return &ConflictError{Message: "child already has an enrollment for this class"}
		}

		spots, err := AvailableSpots(tx, &class)
		if err != nil {
			return err
		}

		status := models.EnrollmentStatusPending
		if spots <= 0 {
			status = models.EnrollmentStatusWaitlist
		}

		enrollment = models.Enrollment{
			ChildID:         childID,
			ClassID:         classID,
			Status:          status,
			FinalPriceCents: class.PriceCents,
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}

		if status == models.EnrollmentStatusWaitlist {
			waitlistPosition, err = joinWaitlistLocked(tx, classID, enrollment.ID, priorityWaitlist)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &enrollment, waitlistPosition, nil
}

// estimateAttendedSessions derives how many sessions have elapsed from the
// class schedule. An attendance-tracking system could replace this with
// actual check-ins without touching the refund math.
func estimateAttendedSessions(class models.ActivityClass, now time.Time) int {
	if !now.After(class.StartDate) {
		return 0
	}
	if !now.Before(class.EndDate) {
		return class.SessionsTotal
	}
	total := class.EndDate.Sub(class.StartDate)
	if total <= 0 {
		return class.SessionsTotal
	}
	attended := int(int64(class.SessionsTotal) * int64(now.Sub(class.StartDate)) / int64(total))
	if attended > class.SessionsTotal {
		attended = class.SessionsTotal
	}
	return attended
}

func refundPolicyFromConfig() RefundPolicy {
	p := config.Policy()
	return RefundPolicy{
		PreStartFeeCents: p.PreStartCancelFeeCents,
		LateFeeCents:     p.LateCancelFeeCents,
	}
}

// paidShareCents apportions the money actually collected for an order onto
// one enrollment's discounted price. While an installment plan is still in
// flight the refundable base shrinks in the same proportion; it never
// exceeds the enrollment's own price.
func paidShareCents(finalPriceCents, collectedCents, orderTotalCents int64) int64 {
	if finalPriceCents <= 0 || collectedCents <= 0 || orderTotalCents <= 0 {
		return 0
	}
	if collectedCents >= orderTotalCents {
		return finalPriceCents
	}
	share := finalPriceCents * collectedCents / orderTotalCents
	if share > finalPriceCents {
		share = finalPriceCents
	}
	return share
}

// capRefund bounds a refund request by what was collected and not yet
// refunded. Money can only flow back out of what actually came in.
func capRefund(requestedCents, collectedCents, alreadyRefundedCents int64) int64 {
	available := collectedCents - alreadyRefundedCents
	if available < 0 {
		available = 0
	}
	if requestedCents < 0 {
		return 0
	}
	if requestedCents > available {
		return available
	}
	return requestedCents
}

// collectedCentsForOrder reports how much money has actually been captured
// for an order: the sum of succeeded installment payments when a plan
// exists, the full total once paid, zero otherwise.
func collectedCentsForOrder(tx *gorm.DB, order *models.Order) (int64, error) {
	var plan models.InstallmentPlan
	err := tx.Where("order_id = ?", order.ID).First(&plan).Error
	if err == nil {
		var collected int64
		err = tx.Model(&models.InstallmentPayment{}).
			Where("plan_id = ? AND status = ?", plan.ID, models.InstallmentStatusSucceeded).
			Select("COALESCE(SUM(amount_cents), 0)").
			Scan(&collected).Error
		return collected, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	switch order.Status {
	case models.OrderStatusPaid, models.OrderStatusRefunded:
		return order.TotalCents, nil
	}
	return 0, nil
}

func paidCentsForEnrollment(tx *gorm.DB, enrollment *models.Enrollment) (int64, error) {
	if enrollment.OrderID == nil {
		return 0, nil
	}
	var order models.Order
	if err := tx.First(&order, "id = ?", enrollment.OrderID).Error; err != nil {
		return 0, err
	}
	collected, err := collectedCentsForOrder(tx, &order)
	if err != nil {
		return 0, err
	}
	return paidShareCents(enrollment.FinalPriceCents, collected, order.TotalCents), nil
}

// releasePlanIfOrphaned stops an order's active installment plan once no
// live enrollment remains on the order, so the scheduler stops charging for
// seats nobody holds. Payments that already went through stay as they are.
func releasePlanIfOrphaned(tx *gorm.DB, orderID uuid.UUID) error {
	var live int64
	if err := tx.Model(&models.Enrollment{}).
		Where("order_id = ? AND status <> ?", orderID, models.EnrollmentStatusCancelled).
		Count(&live).Error; err != nil {
		return err
	}
	if live > 0 {
		return nil
	}
	return tx.Model(&models.InstallmentPlan{}).
		Where("order_id = ? AND status = ?", orderID, models.PlanStatusActive).
		Update("status", models.PlanStatusCancelled).Error
}

// PreviewCancellation shows what cancelling now would refund, without
// changing anything. The refund base is what was actually collected for this
// enrollment, not its list price.
func PreviewCancellation(enrollmentID, parentID uuid.UUID, now time.Time) (*RefundBreakdown, error) {
	enrollment, err := getOwnedEnrollment(database.DB, enrollmentID, parentID)
	if err != nil {
		return nil, err
	}
	paid, err := paidCentsForEnrollment(database.DB, enrollment)
	if err != nil {
		return nil, err
	}
	attended := estimateAttendedSessions(enrollment.Class, now)
	breakdown := ComputeRefund(refundPolicyFromConfig(), paid,
		attended, enrollment.Class.SessionsTotal, enrollment.Class.StartDate, now)
	return &breakdown, nil
}

// CancelEnrollment ends an enrollment. Pending and waitlisted ones cancel
// outright; active ones get a refund per policy, and the vacated seat is
// offered to the waitlist. A refund that fails at the gateway is recorded on
// the enrollment for reconciliation rather than silently dropped.
func CancelEnrollment(enrollmentID, parentID uuid.UUID, reason string) error {
	var notifyClassID *uuid.UUID
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		enrollment, err := getOwnedEnrollmentLocked(tx, enrollmentID, parentID)
		if err != nil {
			return err
		}

		now := time.Now()
		switch enrollment.Status {
		case models.EnrollmentStatusPending:
			enrollment.Status = models.EnrollmentStatusCancelled
			enrollment.CancelledAt = &now
			appendNote(enrollment, "cancelled: "+reason)
			classID := enrollment.ClassID
			notifyClassID = &classID
			return tx.Save(enrollment).Error

		case models.EnrollmentStatusWaitlist:
			var entry models.WaitlistEntry
			if err := tx.Where("enrollment_id = ?", enrollment.ID).First(&entry).Error; err == nil {
				if err := tx.Delete(&entry).Error; err != nil {
					return err
				}
				var remaining []models.WaitlistEntry
				if err := tx.Where("class_id = ?", entry.ClassID).Order("position asc").Find(&remaining).Error; err != nil {
					return err
				}
				if err := saveWaitlistOrder(tx, remaining); err != nil {
					return err
				}
			}
			enrollment.Status = models.EnrollmentStatusCancelled
			enrollment.CancelledAt = &now
			appendNote(enrollment, "cancelled: "+reason)
			return tx.Save(enrollment).Error

		case models.EnrollmentStatusActive:
			attended := estimateAttendedSessions(enrollment.Class, now)
			paid, err := paidCentsForEnrollment(tx, enrollment)
			if err != nil {
				return err
			}
			breakdown := ComputeRefund(refundPolicyFromConfig(), paid,
				attended, enrollment.Class.SessionsTotal, enrollment.Class.StartDate, now)

			if breakdown.NetRefundCents > 0 && enrollment.OrderID != nil {
				if err := issueRefund(tx, *enrollment.OrderID, breakdown.NetRefundCents, enrollment); err != nil {
					return err
				}
			}

			enrollment.Status = models.EnrollmentStatusCancelled
			enrollment.CancelledAt = &now
			appendNote(enrollment, fmt.Sprintf("cancelled: %s (refunded %d cents)", reason, breakdown.NetRefundCents))
			if err := tx.Save(enrollment).Error; err != nil {
				return err
			}
			if enrollment.OrderID != nil {
				if err := releasePlanIfOrphaned(tx, *enrollment.OrderID); err != nil {
					return err
				}
			}
			classID := enrollment.ClassID
			notifyClassID = &classID
			return nil

		default:
			return &ConflictError{Message: "enrollment can no longer be cancelled"}
		}
	})
	if err != nil {
		return err
	}

	if notifyClassID != nil {
		if _, err := NotifyNext(*notifyClassID); err != nil {
			log.Printf("🔥 Error notifying waitlist for class %s: %v", *notifyClassID, err)
		}
	}
	return nil
}

// issueRefund pushes a refund through the gateway and annotates the order.
// A gateway failure does not abort the cancellation; the enrollment keeps a
// refund-pending flag so the discrepancy is never lost.
func issueRefund(tx *gorm.DB, orderID uuid.UUID, amountCents int64, enrollment *models.Enrollment) error {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", orderID).Error; err != nil {
		return err
	}
	collected, err := collectedCentsForOrder(tx, &order)
	if err != nil {
		return err
	}
	amountCents = capRefund(amountCents, collected, order.RefundedCents)
	if amountCents <= 0 {
		log.Printf("Order %s has nothing left to refund (collected %d, already refunded %d)", order.ID, collected, order.RefundedCents)
		return nil
	}

	if order.AuthorizationToken == nil {
		enrollment.RefundPending = true
		log.Printf("🔥 Order %s has no authorization token; refund of %d cents queued for manual reconciliation", order.ID, amountCents)
		return nil
	}

	refundID, err := payments.Client.Refund(*order.AuthorizationToken, amountCents)
	if err != nil {
		enrollment.RefundPending = true
		log.Printf("🔥 Gateway refund failed for order %s: %v; flagged for reconciliation", order.ID, err)
		return nil
	}

	order.RefundedCents += amountCents
	order.RefundRef = &refundID
	if order.RefundedCents >= collected {
		order.Status = models.OrderStatusRefunded
	}
	return tx.Save(&order).Error
}

// TransferEnrollment moves an enrollment to another class, charging or
// refunding the price difference. Order linkage and history stay intact.
func TransferEnrollment(enrollmentID, parentID, newClassID uuid.UUID, paymentMethodRef string) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	var vacatedClassID uuid.UUID

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = getOwnedEnrollmentLocked(tx, enrollmentID, parentID)
		if err != nil {
			return err
		}
		if enrollment.Status != models.EnrollmentStatusActive && enrollment.Status != models.EnrollmentStatusPending {
			return &ConflictError{Message: "only pending or active enrollments can be transferred"}
		}
		if enrollment.ClassID == newClassID {
			return &ValidationError{Field: "new_class_id", Message: "enrollment is already in this class"}
		}

		var newClass models.ActivityClass
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&newClass, "id = ?", newClassID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "class", ID: newClassID.String()}
			}
			return err
		}
		if !newClass.IsActive {
			return &ConflictError{Message: "target class is not open for enrollment"}
		}

		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("child_id = ? AND class_id = ? AND status <> ?", enrollment.ChildID, newClassID, models.EnrollmentStatusCancelled).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return &ConflictError{Message: "child is already enrolled in the target class"}
		}

		spots, err := AvailableSpots(tx, &newClass)
		if err != nil {
			return err
		}
		if spots <= 0 {
			return &ConflictError{Message: "target class is full"}
		}

		delta := newClass.PriceCents - enrollment.FinalPriceCents
		if enrollment.Status == models.EnrollmentStatusActive && delta != 0 {
			if err := settleTransferDelta(tx, enrollment, delta, paymentMethodRef); err != nil {
				return err
			}
		}

		vacatedClassID = enrollment.ClassID
		appendNote(enrollment, fmt.Sprintf("transferred from class %s (price delta %d cents)", enrollment.ClassID, delta))
		enrollment.ClassID = newClassID
		enrollment.FinalPriceCents = newClass.PriceCents
		return tx.Save(enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	if _, err := NotifyNext(vacatedClassID); err != nil {
		log.Printf("🔥 Error notifying waitlist for class %s: %v", vacatedClassID, err)
	}
	return enrollment, nil
}

func settleTransferDelta(tx *gorm.DB, enrollment *models.Enrollment, delta int64, paymentMethodRef string) error {
	if delta > 0 {
		if paymentMethodRef == "" {
			return &ValidationError{Field: "payment_method_ref", Message: "required when the target class costs more"}
		}
		var order models.Order
		currency := "USD"
		if enrollment.OrderID != nil {
			if err := tx.First(&order, "id = ?", enrollment.OrderID).Error; err == nil {
				currency = order.Currency
			}
		}
		result, err := payments.Client.Charge(delta, currency, paymentMethodRef)
		if err != nil {
			return wrapGatewayError(err)
		}
		if result.Status != payments.StatusSucceeded {
			return &PaymentProcessingError{
				Reason:    "transfer charge did not succeed",
				Retryable: result.Status == payments.StatusProcessing,
			}
		}
		return nil
	}

	if enrollment.OrderID == nil {
		return nil
	}
	return issueRefund(tx, *enrollment.OrderID, -delta, enrollment)
}

// CompleteFinishedClasses flips active enrollments of ended classes to
// completed. Driven by the cron scheduler.
func CompleteFinishedClasses(now time.Time) {
	var finished []models.Enrollment
	err := database.DB.
		Joins("JOIN activity_classes ON activity_classes.id = enrollments.class_id").
		Where("enrollments.status = ? AND activity_classes.end_date < ?", models.EnrollmentStatusActive, now).
		Find(&finished).Error
	if err != nil {
		log.Printf("Error loading finished enrollments: %v", err)
		return
	}

	for _, enrollment := range finished {
		enrollment.Status = models.EnrollmentStatusCompleted
		if err := database.DB.Save(&enrollment).Error; err != nil {
			log.Printf("🔥 Failed to complete enrollment %s: %v", enrollment.ID, err)
		}
	}
	if len(finished) > 0 {
		log.Printf("Marked %d enrollment(s) as completed.", len(finished))
	}
}

// GetMyEnrollments lists a parent's enrollments across their children.
func GetMyEnrollments(parentID uuid.UUID) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := database.DB.Preload("Child").Preload("Class").
		Joins("JOIN children ON children.id = enrollments.child_id").
		Where("children.parent_id = ?", parentID).
		Order("enrollments.created_at desc").
		Find(&enrollments).Error
	return enrollments, err
}

func getOwnedEnrollment(tx *gorm.DB, enrollmentID, parentID uuid.UUID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := tx.Preload("Class").Preload("Child").
		Joins("JOIN children ON children.id = enrollments.child_id").
		Where("enrollments.id = ? AND children.parent_id = ?", enrollmentID, parentID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "enrollment", ID: enrollmentID.String()}
		}
		return nil, err
	}
	return &enrollment, nil
}

func getOwnedEnrollmentLocked(tx *gorm.DB, enrollmentID, parentID uuid.UUID) (*models.Enrollment, error) {
	enrollment, err := getOwnedEnrollment(tx, enrollmentID, parentID)
	if err != nil {
		return nil, err
	}
	// Re-read under lock; the ownership join above cannot carry FOR UPDATE
	// across the joined table.
	var locked models.Enrollment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "enrollments"}}).
		First(&locked, "id = ?", enrollment.ID).Error; err != nil {
		return nil, err
	}
	locked.Class = enrollment.Class
	locked.Child = enrollment.Child
	return &locked, nil
}

func appendNote(enrollment *models.Enrollment, note string) {
	stamped := time.Now().Format("2006-01-02") + " " + note
	if enrollment.Notes == nil || *enrollment.Notes == "" {
		enrollment.Notes = &stamped
		return
	}
	combined := *enrollment.Notes + "\n" + stamped
	enrollment.Notes = &combined
}

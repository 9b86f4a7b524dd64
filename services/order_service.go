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

const (
	PaymentKindFull         = "full"
	PaymentKindSubscription = "subscription"
	PaymentKindInstallments = "installments"
)

// PaymentMethod is the closed set of ways an order can be paid. Subscription
// is a monthly installment plan spanning the class duration.
type PaymentMethod struct {
	Kind                 string `json:"kind"`
	InstallmentCount     int    `json:"installment_count,omitempty"`
	InstallmentFrequency string `json:"installment_frequency,omitempty"`
}

func (m PaymentMethod) validate() error {
	switch m.Kind {
	case PaymentKindFull, PaymentKindSubscription:
		return nil
	case PaymentKindInstallments:
		if m.InstallmentCount < 2 {
			return &ValidationError{Field: "installment_count", Message: "must be at least 2"}
		}
		if m.InstallmentCount > maxInstallmentCount {
			return &ValidationError{Field: "installment_count", Message: fmt.Sprintf("must be at most %d", maxInstallmentCount)}
		}
		switch m.InstallmentFrequency {
		case models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly:
			return nil
		default:
			return &ValidationError{Field: "installment_frequency", Message: "must be weekly, biweekly or monthly"}
		}
	default:
		return &ValidationError{Field: "kind", Message: "must be full, subscription or installments"}
	}
}

// openOrderStatuses are the order states whose line items still lay claim to
// the enrollments they reference; only cancellation releases them. An
// enrollment may appear in at most one order across these states.
var openOrderStatuses = []string{
	models.OrderStatusDraft,
	models.OrderStatusPendingPayment,
	models.OrderStatusPartiallyPaid,
	models.OrderStatusPaid,
	models.OrderStatusRefunded,
}

var orderTransitions = map[string][]string{
	models.OrderStatusDraft:          {models.OrderStatusPendingPayment, models.OrderStatusCancelled},
	models.OrderStatusPendingPayment: {models.OrderStatusPartiallyPaid, models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPartiallyPaid:  {models.OrderStatusPaid, models.OrderStatusRefunded},
	models.OrderStatusPaid:           {models.OrderStatusRefunded},
}

func canTransitionOrder(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// allocateCents spreads a total across units proportionally in integer
// cents, with the rounding remainder assigned to the first unit.
func allocateCents(units []int64, total int64) []int64 {
	allocated := make([]int64, len(units))
	if len(units) == 0 || total <= 0 {
		return allocated
	}
	var sumUnits int64
	for _, u := range units {
		sumUnits += u
	}
	if sumUnits <= 0 {
		return allocated
	}
	var distributed int64
	for i, u := range units {
		share := total * u / sumUnits
		allocated[i] = share
		distributed += share
	}
	allocated[0] += total - distributed
	return allocated
}

// CreateOrder builds a draft order over the caller's pending enrollments.
// At most one discount applies: an explicit code, or the sibling discount
// when requested, never both.
func CreateOrder(ownerID uuid.UUID, enrollmentIDs []uuid.UUID, discountCode *string, useSiblingDiscount bool) (*models.Order, error) {
	if len(enrollmentIDs) == 0 {
		return nil, &ValidationError{Field: "enrollment_ids", Message: "at least one enrollment is required"}
	}
	if discountCode != nil && useSiblingDiscount {
		return nil, &ValidationError{Field: "discount", Message: "choose either a discount code or the sibling discount"}
	}

	var order models.Order
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Locking the enrollment rows serializes concurrent CreateOrder
		// calls over the same enrollments.
		var enrollments []models.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Class").Preload("Child").
			Where("id IN ?", enrollmentIDs).Find(&enrollments).Error; err != nil {
			return err
		}
		if len(enrollments) != len(enrollmentIDs) {
			return &NotFoundError{Resource: "enrollment", ID: "one or more of the requested enrollments"}
		}

		var openRefs int64
		if err := tx.Model(&models.OrderLineItem{}).
			Joins("JOIN orders ON orders.id = order_line_items.order_id").
			Where("order_line_items.enrollment_id IN ? AND orders.status IN ?", enrollmentIDs, openOrderStatuses).
			Count(&openRefs).Error; err != nil {
			return err
		}
		if openRefs > 0 {
			return &ConflictError{Message: "enrollment is already part of an open order"}
		}

		var subtotal int64
		classIDs := make([]uuid.UUID, 0, len(enrollments))
		for _, e := range enrollments {
			if e.Status != models.EnrollmentStatusPending {
				return &ConflictError{Message: "only pending enrollments can be ordered"}
			}
			if e.Child.ParentID != ownerID {
				return &ConflictError{Message: "enrollment does not belong to the caller"}
			}
			if e.OrderID != nil {
				return &ConflictError{Message: "enrollment is already attached to an order"}
			}
			subtotal += e.Class.PriceCents
			classIDs = append(classIDs, e.ClassID)
		}

		var discountTotal int64
		var discountCodeID *uuid.UUID
		if discountCode != nil {
			result, code, err := ValidateCode(*discountCode, ownerID, subtotal, classIDs, time.Now())
			if err != nil {
				return err
			}
			if !result.Eligible {
				return &ValidationError{Field: "discount_code", Message: result.Reason}
			}
			discountTotal = result.DiscountCents
			discountCodeID = &code.ID
		} else if useSiblingDiscount {
			siblings, err := ActiveSiblingCount(tx, ownerID, enrollments[0].ChildID)
			if err != nil {
				return err
			}
			discountTotal = SiblingDiscountCents(subtotal, siblings, config.Policy().SiblingDiscountSteps)
		}

		tax := (subtotal - discountTotal) * config.Policy().TaxRateBasisPoints / 10000

		order = models.Order{
			OwnerID:            ownerID,
			Status:             models.OrderStatusDraft,
			SubtotalCents:      subtotal,
			DiscountTotalCents: discountTotal,
			TaxCents:           tax,
			TotalCents:         subtotal - discountTotal + tax,
			DiscountCodeID:     discountCodeID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, e := range enrollments {
			enrollmentID := e.ID
			item := models.OrderLineItem{
				OrderID:      order.ID,
				ClassID:      e.ClassID,
				ChildID:      e.ChildID,
				EnrollmentID: &enrollmentID,
				UnitCents:    e.Class.PriceCents,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.LineItems = append(order.LineItems, item)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// recordDiscountRedemption burns the order's discount code once money has
// actually moved. Draft and abandoned orders never count against a code's
// usage limits; replayed settlements count it once.
func recordDiscountRedemption(tx *gorm.DB, order *models.Order) error {
	if order.DiscountCodeID == nil {
		return nil
	}
	var existing int64
	if err := tx.Model(&models.DiscountRedemption{}).
		Where("order_id = ?", order.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	redemption := models.DiscountRedemption{
		DiscountCodeID: *order.DiscountCodeID,
		UserID:         order.OwnerID,
		OrderID:        order.ID,
	}
	if err := tx.Create(&redemption).Error; err != nil {
		return err
	}
	return tx.Model(&models.DiscountCode{}).Where("id = ?", order.DiscountCodeID).
		Update("use_count", gorm.Expr("use_count + 1")).Error
}

// Checkout opens a two-phase authorization for a draft order and moves it to
// pending payment. Installment and subscription methods additionally create
// a payment plan against the order.
func Checkout(orderID, ownerID uuid.UUID, paymentMethodRef string, method PaymentMethod, chargeImmediately bool) (*models.Order, error) {
	if paymentMethodRef == "" {
		return nil, &ValidationError{Field: "payment_method_ref", Message: "is required"}
	}
	if err := method.validate(); err != nil {
		return nil, err
	}

	var order models.Order
	var classEnd time.Time
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("LineItems.Class").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID.String()}
			}
			return err
		}
		if order.OwnerID != ownerID {
			return &NotFoundError{Resource: "order", ID: orderID.String()}
		}
		if order.Status != models.OrderStatusDraft {
			return &ConflictError{Message: "only draft orders can be checked out"}
		}

		auth, err := payments.Client.Authorize(order.TotalCents, order.Currency, paymentMethodRef)
		if err != nil {
			return wrapGatewayError(err)
		}
		if auth.Status == payments.StatusFailed {
			return &PaymentProcessingError{Reason: "authorization failed", Retryable: false}
		}

		for _, item := range order.LineItems {
			if item.Class.EndDate.After(classEnd) {
				classEnd = item.Class.EndDate
			}
		}

		order.Status = models.OrderStatusPendingPayment
		order.AuthorizationToken = &auth.AuthorizationToken
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	switch method.Kind {
	case PaymentKindInstallments:
		if _, err := CreatePlan(order.ID, method.InstallmentCount, method.InstallmentFrequency, paymentMethodRef, chargeImmediately, time.Now()); err != nil {
			return &order, err
		}
	case PaymentKindSubscription:
		count := monthsUntil(time.Now(), classEnd)
		if count > maxInstallmentCount {
			count = maxInstallmentCount
		}
		if _, err := CreatePlan(order.ID, count, models.FrequencyMonthly, paymentMethodRef, chargeImmediately, time.Now()); err != nil {
			return &order, err
		}
	}
	return &order, nil
}

func monthsUntil(from, until time.Time) int {
	months := 1
	for cursor := addMonthsClamped(from, 1); cursor.Before(until); cursor = addMonthsClamped(cursor, 1) {
		months++
	}
	return months
}

type confirmAction int

const (
	confirmReplay confirmAction = iota
	confirmSettle
)

// resolveConfirm decides what a gateway confirmation callback means for an
// order without touching it. Replaying a matching token against a settled
// order is harmless; everything else either settles the order or fails with
// a typed error.
func resolveConfirm(orderStatus string, storedToken *string, reportedToken, gatewayStatus string) (confirmAction, error) {
	if storedToken == nil || *storedToken != reportedToken {
		return 0, &ValidationError{Field: "authorization_token", Message: "does not match this order"}
	}
	if orderStatus == models.OrderStatusPaid || orderStatus == models.OrderStatusPartiallyPaid {
		return confirmReplay, nil
	}
	if orderStatus != models.OrderStatusPendingPayment {
		return 0, &ConflictError{Message: "order is not awaiting payment"}
	}
	switch gatewayStatus {
	case payments.StatusSucceeded:
		return confirmSettle, nil
	case payments.StatusProcessing:
		return 0, &PaymentProcessingError{Reason: "payment still processing", Retryable: true}
	default:
		return 0, &PaymentProcessingError{Reason: "payment failed at the gateway", Retryable: false}
	}
}

// interpretCapture maps the gateway's own answer to a capture attempt onto
// the error taxonomy. nil means the funds moved.
func interpretCapture(status string) error {
	switch status {
	case payments.StatusSucceeded:
		return nil
	case payments.StatusProcessing:
		return &PaymentProcessingError{Reason: "capture still processing", Retryable: true}
	default:
		return &PaymentProcessingError{Reason: "capture failed at the gateway", Retryable: false}
	}
}

// ConfirmOrder finalizes payment once the gateway reports on an
// authorization. The reported status is not trusted on its own: the capture
// is confirmed against the gateway before the order settles. Replaying the
// same token against an already-settled order is a no-op, so duplicate or
// out-of-order gateway callbacks are harmless.
func ConfirmOrder(orderID uuid.UUID, authorizationToken, gatewayStatus string) (*models.Order, error) {
	var order models.Order
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID.String()}
			}
			return err
		}

		action, err := resolveConfirm(order.Status, order.AuthorizationToken, authorizationToken, gatewayStatus)
		if err != nil {
			return err
		}
		if action == confirmReplay {
			return nil
		}

		var plan models.InstallmentPlan
		hasPlan := tx.Where("order_id = ? AND status = ?", order.ID, models.PlanStatusActive).
			First(&plan).Error == nil

		// Installment orders collect through per-payment charges; capturing
		// the authorization on top of them would take the money twice.
		if !hasPlan {
			captured, err := payments.Client.Confirm(authorizationToken)
			if err != nil {
				return wrapGatewayError(err)
			}
			if err := interpretCapture(captured); err != nil {
				return err
			}
		}

		if hasPlan {
			order.Status = models.OrderStatusPartiallyPaid
		} else {
			order.Status = models.OrderStatusPaid
		}
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		if err := recordDiscountRedemption(tx, &order); err != nil {
			return err
		}
		return activateEnrollmentsForOrder(tx, &order)
	})
	if err != nil {
		return nil, err
	}

	if order.Status == models.OrderStatusPaid || order.Status == models.OrderStatusPartiallyPaid {
		go GenerateOrderReceipt(order.ID)
		go notifyOrderSettled(&order)
	}
	return &order, nil
}

// activateEnrollmentsForOrder flips the order's pending enrollments to
// active, stamping each with its share of the discounted total.
func activateEnrollmentsForOrder(tx *gorm.DB, order *models.Order) error {
	var items []models.OrderLineItem
	if err := tx.Where("order_id = ?", order.ID).Order("created_at asc").Find(&items).Error; err != nil {
		return err
	}

	units := make([]int64, len(items))
	for i, item := range items {
		units[i] = item.UnitCents
	}
	discounts := allocateCents(units, order.DiscountTotalCents)

	now := time.Now()
	for i, item := range items {
		if item.EnrollmentID == nil {
			continue
		}
		var enrollment models.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&enrollment, "id = ?", item.EnrollmentID).Error; err != nil {
			return err
		}
		if enrollment.Status != models.EnrollmentStatusPending {
			continue
		}
		orderID := order.ID
		enrollment.Status = models.EnrollmentStatusActive
		enrollment.OrderID = &orderID
		enrollment.FinalPriceCents = item.UnitCents - discounts[i]
		enrollment.ActivatedAt = &now
		if err := tx.Save(&enrollment).Error; err != nil {
			return err
		}
	}
	return nil
}

// CancelOrder voids the open authorization and releases any seats the
// order's pending enrollments were holding.
func CancelOrder(orderID, ownerID uuid.UUID) error {
	affectedClasses := make(map[uuid.UUID]bool)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID.String()}
			}
			return err
		}
		if order.OwnerID != ownerID {
			return &NotFoundError{Resource: "order", ID: orderID.String()}
		}
		if !canTransitionOrder(order.Status, models.OrderStatusCancelled) {
			return &ConflictError{Message: "order can no longer be cancelled"}
		}

		if order.AuthorizationToken != nil {
			if err := payments.Client.Void(*order.AuthorizationToken); err != nil {
				return wrapGatewayError(err)
			}
		}

		var items []models.OrderLineItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, item := range items {
			if item.EnrollmentID == nil {
				continue
			}
			var enrollment models.Enrollment
			if err := tx.First(&enrollment, "id = ?", item.EnrollmentID).Error; err != nil {
				continue
			}
			if enrollment.Status == models.EnrollmentStatusPending {
				enrollment.Status = models.EnrollmentStatusCancelled
				enrollment.CancelledAt = &now
				if err := tx.Save(&enrollment).Error; err != nil {
					return err
				}
				affectedClasses[enrollment.ClassID] = true
			}
		}

		order.Status = models.OrderStatusCancelled
		return tx.Save(&order).Error
	})
	if err != nil {
		return err
	}

	for classID := range affectedClasses {
		if _, err := NotifyNext(classID); err != nil {
			log.Printf("🔥 Error notifying waitlist for class %s: %v", classID, err)
		}
	}
	return nil
}

// GetOrder loads an order with line items, scoped to the owner.
func GetOrder(orderID, ownerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := database.DB.Preload("LineItems.Class").Preload("LineItems.Child").
		Where("id = ? AND owner_id = ?", orderID, ownerID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: orderID.String()}
		}
		return nil, err
	}
	return &order, nil
}

func wrapGatewayError(err error) error {
	var gwErr *payments.GatewayError
	if errors.As(err, &gwErr) {
		reason := gwErr.Message
		if reason == "" {
			reason = gwErr.Code
		}
		return &PaymentProcessingError{Reason: reason, Retryable: gwErr.Retryable, Err: err}
	}
	log.Printf("🔥 Unexpected gateway failure: %v", err)
	return &PaymentProcessingError{Reason: "gateway unavailable", Retryable: true, Err: err}
}

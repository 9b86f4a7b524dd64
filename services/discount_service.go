package services

import (
	"errors"
	"time"

	config "github.com/anjiri1684/activity_hub/configs"
	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReasonCodeNotFound      = "code not found"
	ReasonCodeInactive      = "code is not active"
	ReasonCodeNotYetValid   = "code is not yet valid"
	ReasonCodeExpired       = "code has expired"
	ReasonUsageLimitReached = "code usage limit reached"
	ReasonPerUserLimit      = "per-user usage limit reached"
	ReasonBelowMinimum      = "below minimum order amount"
	ReasonNotApplicable     = "code does not apply to the selected classes"
	ReasonFirstTimeOnly     = "code is limited to first-time customers"
)

type CodeEvalInput struct {
	CartTotalCents      int64
	TargetClassIDs      []uuid.UUID
	UserRedemptionCount int
	CompletedOrderCount int
	Now                 time.Time
}

type CodeEvalResult struct {
	Eligible      bool
	Reason        string
	DiscountCents int64
}

func ineligible(reason string) CodeEvalResult {
	return CodeEvalResult{Eligible: false, Reason: reason}
}

// EvaluateCode runs the eligibility checks in a fixed order and short-circuits
// on the first failure. It has no side effects; redemption counting is the
// caller's job.
func EvaluateCode(code models.DiscountCode, in CodeEvalInput) CodeEvalResult {
	if !code.IsActive {
		return ineligible(ReasonCodeInactive)
	}
	if code.ValidFrom != nil && in.Now.Before(*code.ValidFrom) {
		return ineligible(ReasonCodeNotYetValid)
	}
	if code.ValidUntil != nil && in.Now.After(*code.ValidUntil) {
		return ineligible(ReasonCodeExpired)
	}
	if code.MaxUses > 0 && code.UseCount >= code.MaxUses {
		return ineligible(ReasonUsageLimitReached)
	}
	if code.MaxUsesPerUser > 0 && in.UserRedemptionCount >= code.MaxUsesPerUser {
		return ineligible(ReasonPerUserLimit)
	}
	if in.CartTotalCents < code.MinOrderCents {
		return ineligible(ReasonBelowMinimum)
	}
	if len(code.ApplicableClasses) > 0 && !intersectsApplicable(code.ApplicableClasses, in.TargetClassIDs) {
		return ineligible(ReasonNotApplicable)
	}
	if code.FirstTimeOnly && in.CompletedOrderCount > 0 {
		return ineligible(ReasonFirstTimeOnly)
	}

	return CodeEvalResult{Eligible: true, DiscountCents: discountAmount(code, in.CartTotalCents)}
}

func intersectsApplicable(applicable []models.DiscountCodeClass, targets []uuid.UUID) bool {
	for _, a := range applicable {
		for _, t := range targets {
			if a.ClassID == t {
				return true
			}
		}
	}
	return false
}

func discountAmount(code models.DiscountCode, cartTotalCents int64) int64 {
	switch code.Type {
	case models.DiscountTypePercentage:
		amount := (cartTotalCents*code.Value + 50) / 100
		if amount > cartTotalCents {
			return cartTotalCents
		}
		return amount
	case models.DiscountTypeFixedAmount:
		if code.Value > cartTotalCents {
			return cartTotalCents
		}
		return code.Value
	default:
		return 0
	}
}

// SiblingDiscountCents maps the number of already-active siblings to a
// percentage step and applies it to the cart total. Zero siblings means no
// discount. The step table comes from policy config; the last step applies to
// any larger family.
func SiblingDiscountCents(cartTotalCents int64, siblingCount int, steps []int64) int64 {
	if siblingCount <= 0 || len(steps) == 0 {
		return 0
	}
	idx := siblingCount - 1
	if idx >= len(steps) {
		idx = len(steps) - 1
	}
	return (cartTotalCents*steps[idx] + 50) / 100
}

// ValidateCode loads the code plus the caller's usage history and evaluates
// eligibility against the given cart. An unknown code is reported as an
// ineligible result, not an error.
func ValidateCode(codeStr string, userID uuid.UUID, cartTotalCents int64, targetClassIDs []uuid.UUID, now time.Time) (CodeEvalResult, *models.DiscountCode, error) {
	var code models.DiscountCode
	err := database.DB.Preload("ApplicableClasses").Where("code = ?", codeStr).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ineligible(ReasonCodeNotFound), nil, nil
		}
		return CodeEvalResult{}, nil, err
	}

	var userRedemptions int64
	if err := database.DB.Model(&models.DiscountRedemption{}).
		Where("discount_code_id = ? AND user_id = ?", code.ID, userID).
		Count(&userRedemptions).Error; err != nil {
		return CodeEvalResult{}, nil, err
	}

	var completedOrders int64
	if err := database.DB.Model(&models.Order{}).
		Where("owner_id = ? AND status IN ?", userID, []string{models.OrderStatusPaid, models.OrderStatusPartiallyPaid}).
		Count(&completedOrders).Error; err != nil {
		return CodeEvalResult{}, nil, err
	}

	result := EvaluateCode(code, CodeEvalInput{
		CartTotalCents:      cartTotalCents,
		TargetClassIDs:      targetClassIDs,
		UserRedemptionCount: int(userRedemptions),
		CompletedOrderCount: int(completedOrders),
		Now:                 now,
	})
	return result, &code, nil
}

// ActiveSiblingCount counts distinct children of the same parent, other than
// the target child, holding an active enrollment.
func ActiveSiblingCount(tx *gorm.DB, parentID, targetChildID uuid.UUID) (int, error) {
	var count int64
	err := tx.Model(&models.Enrollment{}).
		Joins("JOIN children ON children.id = enrollments.child_id").
		Where("children.parent_id = ? AND enrollments.child_id <> ? AND enrollments.status = ?",
			parentID, targetChildID, models.EnrollmentStatusActive).
		Distinct("enrollments.child_id").
		Count(&count).Error
	return int(count), err
}

// EvaluateSibling is the code-free discount path: it derives the discount
// purely from family enrollment history. Callers pick either this or a code
// result; the engine never combines the two.
func EvaluateSibling(parentID, targetChildID uuid.UUID, cartTotalCents int64) (int64, error) {
	siblings, err := ActiveSiblingCount(database.DB, parentID, targetChildID)
	if err != nil {
		return 0, err
	}
	return SiblingDiscountCents(cartTotalCents, siblings, config.Policy().SiblingDiscountSteps), nil
}

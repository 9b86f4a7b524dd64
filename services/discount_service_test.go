package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/activity_hub/models"
	"github.com/google/uuid"
)

func activeCode(mutate func(*models.DiscountCode)) models.DiscountCode {
	code := models.DiscountCode{
		Code:     "SAVE20",
		Type:     models.DiscountTypePercentage,
		Value:    20,
		IsActive: true,
	}
	if mutate != nil {
		mutate(&code)
	}
	return code
}

func TestEvaluateCodeEligibilityOrder(t *testing.T) {
	now := date(2026, time.March, 10)
	past := date(2026, time.January, 1)
	future := date(2026, time.December, 31)
	classA := uuid.New()
	classB := uuid.New()

	tests := []struct {
		name       string
		code       models.DiscountCode
		in         CodeEvalInput
		wantReason string
	}{
		{
			"inactive",
			activeCode(func(c *models.DiscountCode) { c.IsActive = false }),
			CodeEvalInput{CartTotalCents: 10000, Now: now},
			ReasonCodeInactive,
		},
		{
			"not yet valid",
			activeCode(func(c *models.DiscountCode) { c.ValidFrom = &future }),
			CodeEvalInput{CartTotalCents: 10000, Now: now},
			ReasonCodeNotYetValid,
		},
		{
			"expired",
			activeCode(func(c *models.DiscountCode) { c.ValidUntil = &past }),
			CodeEvalInput{CartTotalCents: 10000, Now: now},
			ReasonCodeExpired,
		},
		{
			"usage limit",
			activeCode(func(c *models.DiscountCode) { c.MaxUses = 5; c.UseCount = 5 }),
			CodeEvalInput{CartTotalCents: 10000, Now: now},
			ReasonUsageLimitReached,
		},
		{
			"per-user limit",
			activeCode(func(c *models.DiscountCode) { c.MaxUsesPerUser = 1 }),
			CodeEvalInput{CartTotalCents: 10000, UserRedemptionCount: 1, Now: now},
			ReasonPerUserLimit,
		},
		{
			"below minimum",
			activeCode(func(c *models.DiscountCode) { c.MinOrderCents = 10000 }),
			CodeEvalInput{CartTotalCents: 5000, Now: now},
			ReasonBelowMinimum,
		},
		{
			"class restriction",
			activeCode(func(c *models.DiscountCode) {
				c.ApplicableClasses = []models.DiscountCodeClass{{ClassID: classA}}
			}),
			CodeEvalInput{CartTotalCents: 10000, TargetClassIDs: []uuid.UUID{classB}, Now: now},
			ReasonNotApplicable,
		},
		{
			"first time only",
			activeCode(func(c *models.DiscountCode) { c.FirstTimeOnly = true }),
			CodeEvalInput{CartTotalCents: 10000, CompletedOrderCount: 2, Now: now},
			ReasonFirstTimeOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateCode(tt.code, tt.in)
			if got.Eligible {
				t.Fatal("expected code to be ineligible")
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.DiscountCents != 0 {
				t.Errorf("ineligible result carries discount %d", got.DiscountCents)
			}
		})
	}

	// Expiry failures must trump amount failures: stacked violations report
	// the first check in order.
	stacked := activeCode(func(c *models.DiscountCode) {
		c.ValidUntil = &past
		c.MinOrderCents = 10000
	})
	got := EvaluateCode(stacked, CodeEvalInput{CartTotalCents: 5000, Now: now})
	if got.Reason != ReasonCodeExpired {
		t.Errorf("stacked violations: reason = %q, want %q", got.Reason, ReasonCodeExpired)
	}
}

func TestEvaluateCodeDiscountAmounts(t *testing.T) {
	now := date(2026, time.March, 10)

	tests := []struct {
		name      string
		code      models.DiscountCode
		cart      int64
		wantCents int64
	}{
		{"twenty percent", activeCode(nil), 10000, 2000},
		{"percentage rounds half up", activeCode(func(c *models.DiscountCode) { c.Value = 15 }), 999, 150},
		{"hundred percent caps at cart", activeCode(func(c *models.DiscountCode) { c.Value = 100 }), 4200, 4200},
		{
			"fixed amount",
			activeCode(func(c *models.DiscountCode) { c.Type = models.DiscountTypeFixedAmount; c.Value = 3000 }),
			10000, 3000,
		},
		{
			"fixed amount caps at cart",
			activeCode(func(c *models.DiscountCode) { c.Type = models.DiscountTypeFixedAmount; c.Value = 3000 }),
			2000, 2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateCode(tt.code, CodeEvalInput{CartTotalCents: tt.cart, Now: now})
			if !got.Eligible {
				t.Fatalf("unexpectedly ineligible: %s", got.Reason)
			}
			if got.DiscountCents != tt.wantCents {
				t.Errorf("discount = %d, want %d", got.DiscountCents, tt.wantCents)
			}
		})
	}
}

func TestSiblingDiscountCents(t *testing.T) {
	steps := []int64{10, 15, 20}

	tests := []struct {
		name     string
		cart     int64
		siblings int
		want     int64
	}{
		{"no siblings", 10000, 0, 0},
		{"one sibling", 10000, 1, 1000},
		{"two siblings", 10000, 2, 1500},
		{"three siblings", 10000, 3, 2000},
		{"beyond last step", 10000, 6, 2000},
		{"rounds half up", 999, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SiblingDiscountCents(tt.cart, tt.siblings, steps)
			if got != tt.want {
				t.Errorf("SiblingDiscountCents(%d, %d) = %d, want %d", tt.cart, tt.siblings, got, tt.want)
			}
		})
	}

	if got := SiblingDiscountCents(10000, 3, nil); got != 0 {
		t.Errorf("empty step table should give no discount, got %d", got)
	}
}

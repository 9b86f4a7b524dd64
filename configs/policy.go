package config

import (
	"strconv"
	"strings"
	"time"
)

// Business policy knobs. All of these can be tuned per deployment through
// environment variables; the defaults match the values product signed off on.
type BusinessPolicy struct {
	TaxRateBasisPoints     int64
	ClaimWindow            time.Duration
	InstallmentMaxAttempts int
	SiblingDiscountSteps   []int64 // percent by sibling count: index 0 = 1 sibling
	PreStartCancelFeeCents int64
	LateCancelFeeCents     int64
}

func Policy() BusinessPolicy {
	return BusinessPolicy{
		TaxRateBasisPoints:     envInt64("TAX_RATE_BASIS_POINTS", 0),
		ClaimWindow:            time.Duration(envInt64("WAITLIST_CLAIM_WINDOW_HOURS", 48)) * time.Hour,
		InstallmentMaxAttempts: int(envInt64("INSTALLMENT_MAX_ATTEMPTS", 3)),
		SiblingDiscountSteps:   envIntList("SIBLING_DISCOUNT_STEPS", []int64{10, 15, 20}),
		PreStartCancelFeeCents: envInt64("PRE_START_CANCEL_FEE_CENTS", 0),
		LateCancelFeeCents:     envInt64("LATE_CANCEL_FEE_CENTS", 1500),
	}
}

func envInt64(key string, fallback int64) int64 {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envIntList(key string, fallback []int64) []int64 {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	values := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return fallback
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}

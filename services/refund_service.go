package services

import "time"

type RefundPolicy struct {
	PreStartFeeCents int64
	LateFeeCents     int64
}

type RefundBreakdown struct {
	RefundCents       int64  `json:"refund_cents"`
	CancellationCents int64  `json:"cancellation_fee_cents"`
	NetRefundCents    int64  `json:"net_refund_cents"`
	PolicyDescription string `json:"policy_description"`
}

// ComputeRefund is pure: it only describes what a cancellation would pay
// back. Whether the refund is actually issued is the caller's decision.
// The net refund never exceeds the amount paid and never goes negative.
func ComputeRefund(policy RefundPolicy, paymentCents int64, classesAttended, classesTotal int, classStart, now time.Time) RefundBreakdown {
	if paymentCents <= 0 {
		return RefundBreakdown{PolicyDescription: "nothing paid, nothing to refund"}
	}

	if now.Before(classStart) {
		fee := policy.PreStartFeeCents
		if fee > paymentCents {
			fee = paymentCents
		}
		return RefundBreakdown{
			RefundCents:       paymentCents,
			CancellationCents: fee,
			NetRefundCents:    paymentCents - fee,
			PolicyDescription: "full refund before class start, minus flat fee",
		}
	}

	if classesTotal <= 0 {
		return RefundBreakdown{PolicyDescription: "class has no sessions to prorate"}
	}

	unattended := classesTotal - classesAttended
	if unattended < 0 {
		unattended = 0
	}

	refund := (paymentCents*int64(unattended) + int64(classesTotal)/2) / int64(classesTotal)
	if refund > paymentCents {
		refund = paymentCents
	}

	fee := policy.LateFeeCents
	if fee > refund {
		fee = refund
	}

	return RefundBreakdown{
		RefundCents:       refund,
		CancellationCents: fee,
		NetRefundCents:    refund - fee,
		PolicyDescription: "prorated by unattended sessions, minus late-cancellation fee",
	}
}

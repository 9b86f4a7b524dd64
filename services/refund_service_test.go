package services

import (
	"testing"
	"time"
)

func TestComputeRefund(t *testing.T) {
	policy := RefundPolicy{PreStartFeeCents: 2500, LateFeeCents: 1500}
	start := date(2026, time.June, 1)
	beforeStart := date(2026, time.May, 20)
	afterStart := date(2026, time.June, 15)

	tests := []struct {
		name       string
		payment    int64
		attended   int
		total      int
		now        time.Time
		wantRefund int64
		wantFee    int64
		wantNet    int64
	}{
		{"nothing paid", 0, 0, 10, beforeStart, 0, 0, 0},
		{"before start full refund minus fee", 10000, 0, 10, beforeStart, 10000, 2500, 7500},
		{"before start fee capped at payment", 1000, 0, 10, beforeStart, 1000, 1000, 0},
		{"prorated mid class", 10000, 4, 10, afterStart, 6000, 1500, 4500},
		{"nothing attended after start", 10000, 0, 10, afterStart, 10000, 1500, 8500},
		{"all sessions attended", 10000, 10, 10, afterStart, 0, 0, 0},
		{"attended beyond total clamps to zero", 10000, 12, 10, afterStart, 0, 0, 0},
		{"thirds round half up", 1000, 1, 3, afterStart, 667, 667, 0},
		{"no sessions to prorate", 10000, 0, 0, afterStart, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRefund(policy, tt.payment, tt.attended, tt.total, start, tt.now)
			if got.RefundCents != tt.wantRefund {
				t.Errorf("refund = %d, want %d", got.RefundCents, tt.wantRefund)
			}
			if got.CancellationCents != tt.wantFee {
				t.Errorf("fee = %d, want %d", got.CancellationCents, tt.wantFee)
			}
			if got.NetRefundCents != tt.wantNet {
				t.Errorf("net = %d, want %d", got.NetRefundCents, tt.wantNet)
			}
			if got.NetRefundCents < 0 {
				t.Error("net refund went negative")
			}
			if got.NetRefundCents > tt.payment {
				t.Error("net refund exceeds amount paid")
			}
		})
	}
}

func TestComputeRefundProrationNeverExceedsPayment(t *testing.T) {
	policy := RefundPolicy{LateFeeCents: 0}
	start := date(2026, time.June, 1)
	now := date(2026, time.June, 10)

	for total := 1; total <= 12; total++ {
		for attended := 0; attended <= total; attended++ {
			got := ComputeRefund(policy, 9999, attended, total, start, now)
			if got.RefundCents > 9999 {
				t.Fatalf("attended %d/%d: refund %d exceeds payment", attended, total, got.RefundCents)
			}
		}
	}
}

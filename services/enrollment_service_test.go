package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/activity_hub/models"
)

func TestEstimateAttendedSessions(t *testing.T) {
	class := models.ActivityClass{
		SessionsTotal: 10,
		StartDate:     date(2026, time.June, 1),
		EndDate:       date(2026, time.July, 1),
	}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before start", date(2026, time.May, 20), 0},
		{"on start date", date(2026, time.June, 1), 0},
		{"halfway through", date(2026, time.June, 16), 5},
		{"on end date", date(2026, time.July, 1), 10},
		{"after end", date(2026, time.August, 1), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimateAttendedSessions(class, tt.now); got != tt.want {
				t.Errorf("estimateAttendedSessions at %s = %d, want %d", tt.now, got, tt.want)
			}
		})
	}
}

func TestPaidShareCents(t *testing.T) {
	tests := []struct {
		name       string
		finalPrice int64
		collected  int64
		orderTotal int64
		want       int64
	}{
		{"fully paid order", 100000, 100000, 100000, 100000},
		{"first installment only", 100000, 33334, 100000, 33334},
		{"nothing collected", 100000, 0, 100000, 0},
		{"half collected on shared order", 40000, 50000, 100000, 20000},
		{"overcollection clamps to price", 40000, 120000, 100000, 40000},
		{"free enrollment", 0, 100000, 100000, 0},
		{"degenerate order total", 40000, 33334, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paidShareCents(tt.finalPrice, tt.collected, tt.orderTotal)
			if got != tt.want {
				t.Errorf("paidShareCents(%d, %d, %d) = %d, want %d",
					tt.finalPrice, tt.collected, tt.orderTotal, got, tt.want)
			}
			if got > tt.finalPrice {
				t.Error("paid share exceeds the enrollment price")
			}
			if tt.orderTotal > 0 && got > tt.collected {
				t.Error("paid share exceeds what was collected")
			}
		})
	}
}

func TestCapRefund(t *testing.T) {
	tests := []struct {
		name            string
		requested       int64
		collected       int64
		alreadyRefunded int64
		want            int64
	}{
		{"within available", 5000, 33334, 0, 5000},
		{"request above collected", 100000, 33334, 0, 33334},
		{"prior refunds shrink the pool", 30000, 33334, 10000, 23334},
		{"pool exhausted", 5000, 33334, 33334, 0},
		{"over-refunded order never goes negative", 5000, 33334, 40000, 0},
		{"negative request", -100, 33334, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := capRefund(tt.requested, tt.collected, tt.alreadyRefunded)
			if got != tt.want {
				t.Errorf("capRefund(%d, %d, %d) = %d, want %d",
					tt.requested, tt.collected, tt.alreadyRefunded, got, tt.want)
			}
		})
	}
}

// An installment order activates enrollments after the first payment; a
// cancellation right after must refund from the collected share, never the
// full discounted price.
func TestRefundAfterFirstInstallmentStaysWithinCollected(t *testing.T) {
	policy := RefundPolicy{PreStartFeeCents: 2500, LateFeeCents: 1500}
	classStart := date(2026, time.September, 1)
	now := date(2026, time.August, 1)

	paid := paidShareCents(100000, 33334, 100000)
	if paid != 33334 {
		t.Fatalf("paid share = %d, want 33334", paid)
	}

	breakdown := ComputeRefund(policy, paid, 0, 10, classStart, now)
	if breakdown.NetRefundCents > 33334 {
		t.Errorf("net refund %d exceeds the 33334 cents collected", breakdown.NetRefundCents)
	}
	if got := capRefund(breakdown.NetRefundCents, 33334, 0); got != breakdown.NetRefundCents {
		t.Errorf("capRefund trimmed an in-bounds refund: %d -> %d", breakdown.NetRefundCents, got)
	}
}

func TestEstimateAttendedSessionsDegenerateSchedule(t *testing.T) {
	class := models.ActivityClass{
		SessionsTotal: 5,
		StartDate:     date(2026, time.June, 1),
		EndDate:       date(2026, time.June, 1),
	}
	if got := estimateAttendedSessions(class, date(2026, time.June, 2)); got != 5 {
		t.Errorf("zero-length schedule after end = %d, want all sessions", got)
	}
}

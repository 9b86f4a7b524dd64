package services

import (
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/activity_hub/models"
)

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{models.OrderStatusDraft, models.OrderStatusPendingPayment, true},
		{models.OrderStatusDraft, models.OrderStatusCancelled, true},
		{models.OrderStatusDraft, models.OrderStatusPaid, false},
		{models.OrderStatusPendingPayment, models.OrderStatusPaid, true},
		{models.OrderStatusPendingPayment, models.OrderStatusPartiallyPaid, true},
		{models.OrderStatusPendingPayment, models.OrderStatusDraft, false},
		{models.OrderStatusPartiallyPaid, models.OrderStatusPaid, true},
		{models.OrderStatusPartiallyPaid, models.OrderStatusCancelled, false},
		{models.OrderStatusPaid, models.OrderStatusRefunded, true},
		{models.OrderStatusPaid, models.OrderStatusPendingPayment, false},
		{models.OrderStatusRefunded, models.OrderStatusPaid, false},
		{models.OrderStatusCancelled, models.OrderStatusDraft, false},
	}

	for _, tt := range tests {
		if got := canTransitionOrder(tt.from, tt.to); got != tt.want {
			t.Errorf("canTransitionOrder(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

// Every order status except cancelled must keep its claim on the
// enrollments its line items reference; a status added to the transition map
// needs an explicit decision here.
func TestOpenOrderStatusesClaimEnrollments(t *testing.T) {
	all := []string{
		models.OrderStatusDraft,
		models.OrderStatusPendingPayment,
		models.OrderStatusPartiallyPaid,
		models.OrderStatusPaid,
		models.OrderStatusRefunded,
		models.OrderStatusCancelled,
	}

	open := make(map[string]bool, len(openOrderStatuses))
	for _, s := range openOrderStatuses {
		open[s] = true
	}

	for _, status := range all {
		wantOpen := status != models.OrderStatusCancelled
		if open[status] != wantOpen {
			t.Errorf("status %s: holds enrollments = %v, want %v", status, open[status], wantOpen)
		}
	}
	if len(openOrderStatuses) != len(all)-1 {
		t.Errorf("openOrderStatuses has %d entries, want %d", len(openOrderStatuses), len(all)-1)
	}
}

func TestResolveConfirm(t *testing.T) {
	token := "auth-123"
	otherToken := "auth-999"

	tests := []struct {
		name          string
		orderStatus   string
		storedToken   *string
		reportedToken string
		gatewayStatus string
		wantAction    confirmAction
		wantErr       string
	}{
		{"settles a pending order", models.OrderStatusPendingPayment, &token, token, "succeeded", confirmSettle, ""},
		{"replay on paid order", models.OrderStatusPaid, &token, token, "succeeded", confirmReplay, ""},
		{"replay on partially paid order", models.OrderStatusPartiallyPaid, &token, token, "succeeded", confirmReplay, ""},
		{"replay ignores gateway status", models.OrderStatusPaid, &token, token, "failed", confirmReplay, ""},
		{"token mismatch", models.OrderStatusPendingPayment, &token, otherToken, "succeeded", 0, "validation"},
		{"token mismatch beats replay", models.OrderStatusPaid, &token, otherToken, "succeeded", 0, "validation"},
		{"no stored token", models.OrderStatusDraft, nil, token, "succeeded", 0, "validation"},
		{"draft not confirmable", models.OrderStatusDraft, &token, token, "succeeded", 0, "conflict"},
		{"cancelled not confirmable", models.OrderStatusCancelled, &token, token, "succeeded", 0, "conflict"},
		{"still processing", models.OrderStatusPendingPayment, &token, token, "processing", 0, "payment-retryable"},
		{"gateway failure", models.OrderStatusPendingPayment, &token, token, "failed", 0, "payment-terminal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := resolveConfirm(tt.orderStatus, tt.storedToken, tt.reportedToken, tt.gatewayStatus)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if action != tt.wantAction {
					t.Errorf("action = %d, want %d", action, tt.wantAction)
				}
				return
			}

			if err == nil {
				t.Fatal("expected an error")
			}
			var ve *ValidationError
			var ce *ConflictError
			var ppe *PaymentProcessingError
			switch tt.wantErr {
			case "validation":
				if !errors.As(err, &ve) {
					t.Errorf("got %T, want ValidationError", err)
				}
			case "conflict":
				if !errors.As(err, &ce) {
					t.Errorf("got %T, want ConflictError", err)
				}
			case "payment-retryable":
				if !errors.As(err, &ppe) || !ppe.Retryable {
					t.Errorf("got %v, want retryable PaymentProcessingError", err)
				}
			case "payment-terminal":
				if !errors.As(err, &ppe) || ppe.Retryable {
					t.Errorf("got %v, want terminal PaymentProcessingError", err)
				}
			}
		})
	}
}

// Confirming twice with the same token must land in the same end state as
// confirming once: the first call settles, the second resolves to a no-op.
func TestResolveConfirmIsIdempotent(t *testing.T) {
	token := "auth-123"

	action, err := resolveConfirm(models.OrderStatusPendingPayment, &token, token, "succeeded")
	if err != nil || action != confirmSettle {
		t.Fatalf("first confirm: action %d, err %v", action, err)
	}

	for _, settled := range []string{models.OrderStatusPaid, models.OrderStatusPartiallyPaid} {
		action, err = resolveConfirm(settled, &token, token, "succeeded")
		if err != nil {
			t.Fatalf("second confirm on %s order errored: %v", settled, err)
		}
		if action != confirmReplay {
			t.Errorf("second confirm on %s order: action %d, want replay", settled, action)
		}
	}
}

func TestInterpretCapture(t *testing.T) {
	if err := interpretCapture("succeeded"); err != nil {
		t.Errorf("succeeded capture: %v", err)
	}

	var ppe *PaymentProcessingError
	if err := interpretCapture("processing"); !errors.As(err, &ppe) || !ppe.Retryable {
		t.Errorf("processing capture: got %v, want retryable PaymentProcessingError", err)
	}
	if err := interpretCapture("failed"); !errors.As(err, &ppe) || ppe.Retryable {
		t.Errorf("failed capture: got %v, want terminal PaymentProcessingError", err)
	}
}

func TestAllocateCents(t *testing.T) {
	tests := []struct {
		name  string
		units []int64
		total int64
		want  []int64
	}{
		{"even units", []int64{5000, 5000}, 1000, []int64{500, 500}},
		{"remainder to first", []int64{3333, 6667}, 1000, []int64{334, 666}},
		{"single unit", []int64{4200}, 999, []int64{999}},
		{"three uneven units", []int64{100, 100, 100}, 100, []int64{34, 33, 33}},
		{"zero total", []int64{5000, 5000}, 0, []int64{0, 0}},
		{"no units", nil, 1000, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allocateCents(tt.units, tt.total)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(got), len(tt.want))
			}
			var sum int64
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("share %d = %d, want %d", i, got[i], tt.want[i])
				}
				sum += got[i]
			}
			if len(tt.units) > 0 && tt.total > 0 && sum != tt.total {
				t.Errorf("shares sum to %d, want exactly %d", sum, tt.total)
			}
		})
	}
}

func TestPaymentMethodValidate(t *testing.T) {
	tests := []struct {
		name    string
		method  PaymentMethod
		wantErr bool
	}{
		{"full", PaymentMethod{Kind: PaymentKindFull}, false},
		{"subscription", PaymentMethod{Kind: PaymentKindSubscription}, false},
		{"installments", PaymentMethod{Kind: PaymentKindInstallments, InstallmentCount: 3, InstallmentFrequency: models.FrequencyMonthly}, false},
		{"installments need two payments", PaymentMethod{Kind: PaymentKindInstallments, InstallmentCount: 1, InstallmentFrequency: models.FrequencyMonthly}, true},
		{"installments capped", PaymentMethod{Kind: PaymentKindInstallments, InstallmentCount: maxInstallmentCount + 1, InstallmentFrequency: models.FrequencyMonthly}, true},
		{"installments need known frequency", PaymentMethod{Kind: PaymentKindInstallments, InstallmentCount: 3, InstallmentFrequency: "daily"}, true},
		{"unknown kind", PaymentMethod{Kind: "crypto"}, true},
		{"empty kind", PaymentMethod{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.method.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("got %T, want ValidationError", err)
				}
			}
		})
	}
}

func TestMonthsUntil(t *testing.T) {
	tests := []struct {
		name  string
		from  time.Time
		until time.Time
		want  int
	}{
		{"under one month", date(2026, time.January, 15), date(2026, time.February, 1), 1},
		{"just under three months", date(2026, time.January, 15), date(2026, time.April, 10), 3},
		{"exactly on the step", date(2026, time.January, 15), date(2026, time.April, 15), 3},
		{"end-of-january clamp", date(2026, time.January, 31), date(2026, time.March, 15), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := monthsUntil(tt.from, tt.until); got != tt.want {
				t.Errorf("monthsUntil(%s, %s) = %d, want %d", tt.from, tt.until, got, tt.want)
			}
		})
	}
}

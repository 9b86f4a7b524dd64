package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/anjiri1684/activity_hub/payments"
)

func TestErrorTypesMatchWithErrorsAs(t *testing.T) {
	var (
		ve  *ValidationError
		nfe *NotFoundError
		ce  *ConflictError
		ece *ExpiredClaimError
		ppe *PaymentProcessingError
	)

	tests := []struct {
		name   string
		err    error
		target interface{}
	}{
		{"validation", &ValidationError{Field: "count", Message: "must be at least 1"}, &ve},
		{"not found", &NotFoundError{Resource: "order", ID: "abc"}, &nfe},
		{"conflict", &ConflictError{Message: "already enrolled"}, &ce},
		{"expired claim", &ExpiredClaimError{}, &ece},
		{"payment processing", &PaymentProcessingError{Reason: "declined"}, &ppe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer context: %w", tt.err)
			if !errors.As(wrapped, tt.target) {
				t.Errorf("errors.As failed to match %T through wrapping", tt.err)
			}
		})
	}
}

func TestPaymentProcessingErrorUnwrapsGatewayCause(t *testing.T) {
	cause := &payments.GatewayError{Code: "rate_limited", Message: "slow down", Retryable: true}
	err := wrapGatewayError(cause)

	var ppe *PaymentProcessingError
	if !errors.As(err, &ppe) {
		t.Fatalf("wrapGatewayError returned %T, want PaymentProcessingError", err)
	}
	if !ppe.Retryable {
		t.Error("retryable gateway error lost its retryable flag")
	}

	var ge *payments.GatewayError
	if !errors.As(err, &ge) {
		t.Fatal("gateway cause not reachable through Unwrap")
	}
	if ge.Code != "rate_limited" {
		t.Errorf("cause code = %q, want rate_limited", ge.Code)
	}
}

func TestWrapGatewayErrorTerminal(t *testing.T) {
	cause := &payments.GatewayError{Code: "card_declined", Message: "declined", Retryable: false}
	err := wrapGatewayError(cause)

	var ppe *PaymentProcessingError
	if !errors.As(err, &ppe) {
		t.Fatalf("wrapGatewayError returned %T, want PaymentProcessingError", err)
	}
	if ppe.Retryable {
		t.Error("terminal gateway error marked retryable")
	}
}

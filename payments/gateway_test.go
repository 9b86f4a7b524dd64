package payments

import (
	"errors"
	"testing"
)

func TestStubGatewayDefaultsSucceed(t *testing.T) {
	stub := &StubGateway{}

	auth, err := stub.Authorize(10000, "USD", "pm_test")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if auth.Status != StatusSucceeded || auth.AuthorizationToken == "" {
		t.Errorf("unexpected authorize result: %+v", auth)
	}

	status, err := stub.Confirm(auth.AuthorizationToken)
	if err != nil || status != StatusSucceeded {
		t.Errorf("Confirm = %q, %v", status, err)
	}

	charge, err := stub.Charge(2500, "USD", "pm_test")
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if charge.Status != StatusSucceeded {
		t.Errorf("charge status = %q", charge.Status)
	}
}

func TestStubGatewayScriptedFailure(t *testing.T) {
	declined := &GatewayError{Code: "card_declined", Message: "insufficient funds"}
	stub := &StubGateway{
		ChargeFunc: func(amountCents int64, currency, paymentMethodRef string) (*ChargeResult, error) {
			return nil, declined
		},
	}

	_, err := stub.Charge(2500, "USD", "pm_bad")
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("got %T, want GatewayError", err)
	}
	if ge.Retryable {
		t.Error("declined card should not be retryable")
	}
}

func TestGatewayErrorRetryableByStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{402, false},
		{404, false},
	}

	for _, tt := range tests {
		if got := retryableStatus(tt.status); got != tt.retryable {
			t.Errorf("retryableStatus(%d) = %v, want %v", tt.status, got, tt.retryable)
		}
	}
}

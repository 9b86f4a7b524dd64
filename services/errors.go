package services

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ExpiredClaimError is a waitlist-specific conflict: the entry is left in
// place so an admin can still promote it manually.
type ExpiredClaimError struct {
	EnrollmentID string
}

func (e *ExpiredClaimError) Error() string {
	return fmt.Sprintf("waitlist claim for enrollment %s has expired", e.EnrollmentID)
}

// PaymentProcessingError wraps a gateway failure. Retryable failures
// (still processing, rate limited) may be attempted again; terminal ones
// (declined, expired card) must not be.
type PaymentProcessingError struct {
	Reason    string
	Retryable bool
	Err       error
}

func (e *PaymentProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment processing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("payment processing failed: %s", e.Reason)
}

func (e *PaymentProcessingError) Unwrap() error { return e.Err }

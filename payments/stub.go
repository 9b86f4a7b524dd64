package payments

// StubGateway lets tests script gateway behavior without touching the
// network. Unset funcs succeed with canned values.
type StubGateway struct {
	AuthorizeFunc func(amountCents int64, currency, paymentMethodRef string) (*AuthorizeResult, error)
	ConfirmFunc   func(authorizationToken string) (string, error)
	VoidFunc      func(authorizationToken string) error
	RefundFunc    func(authorizationToken string, amountCents int64) (string, error)
	ChargeFunc    func(amountCents int64, currency, paymentMethodRef string) (*ChargeResult, error)
}

func (s *StubGateway) Authorize(amountCents int64, currency, paymentMethodRef string) (*AuthorizeResult, error) {
	if s.AuthorizeFunc != nil {
		return s.AuthorizeFunc(amountCents, currency, paymentMethodRef)
	}
	return &AuthorizeResult{AuthorizationToken: "stub-auth", Status: StatusSucceeded}, nil
}

func (s *StubGateway) Confirm(authorizationToken string) (string, error) {
	if s.ConfirmFunc != nil {
		return s.ConfirmFunc(authorizationToken)
	}
	return StatusSucceeded, nil
}

func (s *StubGateway) Void(authorizationToken string) error {
	if s.VoidFunc != nil {
		return s.VoidFunc(authorizationToken)
	}
	return nil
}

func (s *StubGateway) Refund(authorizationToken string, amountCents int64) (string, error) {
	if s.RefundFunc != nil {
		return s.RefundFunc(authorizationToken, amountCents)
	}
	return "stub-refund", nil
}

func (s *StubGateway) Charge(amountCents int64, currency, paymentMethodRef string) (*ChargeResult, error) {
	if s.ChargeFunc != nil {
		return s.ChargeFunc(amountCents, currency, paymentMethodRef)
	}
	return &ChargeResult{ChargeID: "stub-charge", Status: StatusSucceeded}, nil
}

package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	config "github.com/anjiri1684/activity_hub/configs"
	"github.com/google/uuid"
)

const (
	StatusSucceeded  = "succeeded"
	StatusProcessing = "processing"
	StatusFailed     = "failed"
)

type AuthorizeResult struct {
	AuthorizationToken string `json:"authorization_token"`
	Status             string `json:"status"`
}

type ChargeResult struct {
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
}

// GatewayError reports why a gateway call failed and whether it makes sense
// to try again.
type GatewayError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

// Gateway is the payment collaborator contract. Authorize/Confirm implement
// two-phase capture for checkout; Charge is the single-shot path used by
// installment payments.
type Gateway interface {
	Authorize(amountCents int64, currency, paymentMethodRef string) (*AuthorizeResult, error)
	Confirm(authorizationToken string) (string, error)
	Void(authorizationToken string) error
	Refund(authorizationToken string, amountCents int64) (string, error)
	Charge(amountCents int64, currency, paymentMethodRef string) (*ChargeResult, error)
}

// Client is swapped for a stub in tests.
var Client Gateway = &restGateway{}

type restGateway struct{}

type gatewayErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (g *restGateway) post(path string, payload interface{}, out interface{}) error {
	apiBase := config.Config("GATEWAY_API_BASE_URL")
	apiKey := config.Config("GATEWAY_API_KEY")

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s%s", apiBase, path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return &GatewayError{Code: "network_error", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody gatewayErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &GatewayError{
			Code:      errBody.Code,
			Message:   errBody.Message,
			Retryable: retryableStatus(resp.StatusCode),
		}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func retryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func (g *restGateway) Authorize(amountCents int64, currency, paymentMethodRef string) (*AuthorizeResult, error) {
	var result AuthorizeResult
	err := g.post("/v1/authorizations", map[string]interface{}{
		"amount_cents":       amountCents,
		"currency":           currency,
		"payment_method_ref": paymentMethodRef,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *restGateway) Confirm(authorizationToken string) (string, error) {
	var result struct {
		Status string `json:"status"`
	}
	err := g.post(fmt.Sprintf("/v1/authorizations/%s/confirm", authorizationToken), map[string]interface{}{}, &result)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

func (g *restGateway) Void(authorizationToken string) error {
	var result struct {
		Status string `json:"status"`
	}
	return g.post(fmt.Sprintf("/v1/authorizations/%s/void", authorizationToken), map[string]interface{}{}, &result)
}

func (g *restGateway) Refund(authorizationToken string, amountCents int64) (string, error) {
	var result struct {
		RefundID string `json:"refund_id"`
	}
	err := g.post("/v1/refunds", map[string]interface{}{
		"authorization_token": authorizationToken,
		"amount_cents":        amountCents,
	}, &result)
	if err != nil {
		return "", err
	}
	return result.RefundID, nil
}

func (g *restGateway) Charge(amountCents int64, currency, paymentMethodRef string) (*ChargeResult, error) {
	var result ChargeResult
	err := g.post("/v1/charges", map[string]interface{}{
		"amount_cents":       amountCents,
		"currency":           currency,
		"payment_method_ref": paymentMethodRef,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"topup_relay/internal/config"
)

// Client calls the payment gateway's HTTP API with a bearer token.
// Credentials and the per-call timeout come from configuration, never
// from package state.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Compile-time check that Client satisfies Adapter
var _ Adapter = (*Client)(nil)

// NewClient builds a gateway client from configuration. Every call is
// bounded by cfg.GatewayTimeout; a timeout surfaces as *Error.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.GatewayBaseURL,
		token:   cfg.GatewayToken,
		http:    &http.Client{Timeout: cfg.GatewayTimeout},
	}
}

// depositRequest is the createDeposit payload. Reference is a
// client-generated id so requests can be found in gateway logs.
type depositRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference"`
}

// RequestDeposit asks the gateway to open a deposit. The returned intent
// carries the gateway-confirmed amount and currency.
func (c *Client) RequestDeposit(ctx context.Context, amount decimal.Decimal, currency string) (*DepositIntent, error) {
	reference := uuid.NewString()
	payload := depositRequest{Amount: amount, Currency: currency, Reference: reference}
	var intent DepositIntent
	if err := c.post(ctx, "createDeposit", payload, &intent); err != nil {
		return nil, err
	}
	if intent.Address == "" || intent.ExternalID == "" {
		return nil, &Error{Method: "createDeposit", Err: fmt.Errorf("malformed reply: missing address or externalId")}
	}
	logrus.WithFields(logrus.Fields{
		"reference":   reference,
		"external_id": intent.ExternalID,
		"amount":      intent.Amount.String(),
		"currency":    intent.Currency,
	}).Info("Gateway deposit created")
	return &intent, nil
}

// post sends an authenticated JSON request and decodes the reply into out
func (c *Client) post(ctx context.Context, method string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &Error{Method: method, Err: err}
	}
	url := c.baseURL + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return &Error{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"method": method,
			"error":  err.Error(),
		}).Error("Gateway request failed")
		return &Error{Method: method, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"method": method,
			"status": resp.StatusCode,
		}).Error("Gateway returned error status")
		return &Error{Method: method, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Method: method, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

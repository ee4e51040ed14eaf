// Package gateway is the boundary to the external payment gateway. The
// relay core only depends on the Adapter interface; the HTTP client in
// this package is one implementation of it.
package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DepositIntent is the gateway's reply to a deposit request. The gateway
// is authoritative for the final terms: Amount and Currency here, not the
// requested figures, are what gets recorded.
type DepositIntent struct {
	Address      string          `json:"address"`      // Where to send the funds
	Amount       decimal.Decimal `json:"amount"`       // Confirmed amount
	Currency     string          `json:"currency"`     // Confirmed currency
	ExternalID   string          `json:"externalId"`   // Gateway correlation id
	Instructions string          `json:"instructions"` // Human-readable payment instructions
}

// Adapter is what the relay service calls to initiate a deposit
type Adapter interface {
	RequestDeposit(ctx context.Context, amount decimal.Decimal, currency string) (*DepositIntent, error)
}

// Error reports a failed, timed-out or malformed gateway exchange. No
// ledger entry is written when one of these is returned.
type Error struct {
	Method     string // Gateway method that was called
	StatusCode int    // HTTP status, 0 when the call never completed
	Err        error  // Underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s failed: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("gateway %s failed with status %d", e.Method, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

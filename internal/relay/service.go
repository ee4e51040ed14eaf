// Package relay orchestrates the deposit flow between the account
// registry, the ledger and the payment gateway.
package relay

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"topup_relay/internal/domain"
	"topup_relay/internal/gateway"
	"topup_relay/internal/ledger"
	"topup_relay/internal/registry"
)

// DepositResult is what the front-end needs to instruct the user
type DepositResult struct {
	EntryID uint                   `json:"entry_id"`
	Intent  *gateway.DepositIntent `json:"intent"`
}

// Service wires the registry, ledger manager and gateway adapter into the
// front-end-facing deposit operations
type Service struct {
	registry *registry.Registry
	ledger   *ledger.Manager
	gateway  gateway.Adapter
}

// New creates the relay service
func New(reg *registry.Registry, led *ledger.Manager, gw gateway.Adapter) *Service {
	return &Service{registry: reg, ledger: led, gateway: gw}
}

// InitiateDeposit ensures the account exists, asks the gateway to open a
// deposit, and records a pending ledger entry with the gateway-confirmed
// amount and currency. A gateway failure aborts before anything is
// written to the ledger.
func (s *Service) InitiateDeposit(ctx context.Context, telegramID int64, profile domain.Profile, amount decimal.Decimal, currency string) (*DepositResult, error) {
	if _, err := s.registry.EnsureAccount(ctx, telegramID, profile); err != nil {
		return nil, err
	}
	intent, err := s.gateway.RequestDeposit(ctx, amount, currency)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"telegram_id": telegramID,
			"amount":      amount.String(),
			"currency":    currency,
			"error":       err.Error(),
		}).Error("Deposit initiation failed at gateway")
		return nil, err
	}
	// The gateway is authoritative for the final terms
	entryID, err := s.ledger.RecordEntry(ctx, telegramID, domain.KindDeposit, intent.Amount, intent.Currency, ledger.RecordOptions{
		ExternalID:  intent.ExternalID,
		Description: fmt.Sprintf("Awaiting deposit of %s %s", intent.Amount.String(), intent.Currency),
	})
	if err != nil {
		return nil, err
	}
	return &DepositResult{EntryID: entryID, Intent: intent}, nil
}

// SettleByExternalID resolves a pending entry by the gateway correlation
// id and transitions it. Used by the gateway callback surface.
func (s *Service) SettleByExternalID(ctx context.Context, externalID, status string) (domain.LedgerEntry, error) {
	entry, err := s.ledger.EntryByExternalID(ctx, externalID)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	if err := s.ledger.TransitionStatus(ctx, entry.ID, status); err != nil {
		return domain.LedgerEntry{}, err
	}
	return s.ledger.EntryByID(ctx, entry.ID)
}

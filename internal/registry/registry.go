// Package registry owns account registration and account-level mutations.
package registry

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"topup_relay/internal/domain"
	"topup_relay/internal/storage"
)

// Registry provides idempotent get-or-create semantics for accounts and
// audited balance/flag mutations
type Registry struct {
	store storage.Store
}

// New creates a Registry over the given store
func New(store storage.Store) *Registry {
	return &Registry{store: store}
}

// EnsureAccount registers the account on first contact and refreshes the
// display fields on every later one. Safe to call on every interaction;
// it never touches balance or the admin flag.
func (r *Registry) EnsureAccount(ctx context.Context, telegramID int64, profile domain.Profile) (domain.Account, error) {
	account, err := r.store.EnsureAccount(ctx, telegramID, profile)
	if err != nil {
		return domain.Account{}, err
	}
	logrus.WithFields(logrus.Fields{
		"telegram_id": telegramID,
		"username":    account.Username,
	}).Info("Account ensured")
	return account, nil
}

// Lookup returns the stored account or domain.ErrAccountNotFound
func (r *Registry) Lookup(ctx context.Context, telegramID int64) (domain.Account, error) {
	return r.store.AccountByTelegramID(ctx, telegramID)
}

// SetAdminFlag overwrites the admin flag for an existing account
func (r *Registry) SetAdminFlag(ctx context.Context, telegramID int64, isAdmin bool) error {
	account, err := r.store.AccountByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	if err := r.store.SetAdminFlag(ctx, telegramID, isAdmin); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"telegram_id": telegramID,
		"old":         account.IsAdmin,
		"new":         isAdmin,
	}).Info("Admin flag changed")
	return nil
}

// SetBalance overwrites the balance with an absolute value. Callers
// computing a delta must read the balance first; the store transaction in
// the ledger manager is the path for credit-on-completion.
func (r *Registry) SetBalance(ctx context.Context, telegramID int64, balance decimal.Decimal) error {
	account, err := r.store.AccountByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	if err := r.store.SetBalance(ctx, telegramID, balance); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"telegram_id": telegramID,
		"old":         account.Balance.String(),
		"new":         balance.String(),
	}).Info("Balance overwritten")
	return nil
}

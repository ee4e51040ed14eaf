// Package ledger owns the append-only transaction ledger and its status
// lifecycle: entries start pending and move exactly once to completed or
// failed. Completing a deposit credits the owning account's balance in the
// same store transaction as the status write.
package ledger

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"topup_relay/internal/domain"
	"topup_relay/internal/storage"
)

// currencyPattern accepts 3-4 character uppercase alphanumeric codes
// ("TON", "RUB", "USDT")
var currencyPattern = regexp.MustCompile(`^[A-Z0-9]{3,4}$`)

// RecordOptions carries the optional fields of a new ledger entry
type RecordOptions struct {
	Status      string // Initial status; defaults to pending
	ExternalID  string // Correlation id assigned by the gateway
	Description string // Free text
}

// Manager creates ledger entries and drives their status lifecycle
type Manager struct {
	store storage.Store
}

// New creates a Manager over the given store
func New(store storage.Store) *Manager {
	return &Manager{store: store}
}

// RecordEntry validates and appends a new ledger entry, returning its
// assigned sequence number. Validation failures write nothing.
func (m *Manager) RecordEntry(ctx context.Context, accountID int64, kind string, amount decimal.Decimal, currency string, opts RecordOptions) (uint, error) {
	if amount.IsZero() {
		return 0, &domain.ValidationError{Field: "amount", Reason: "must be non-zero"}
	}
	if !currencyPattern.MatchString(currency) {
		return 0, &domain.ValidationError{Field: "currency", Reason: "must be a 3-4 character code"}
	}
	if kind == "" {
		return 0, &domain.ValidationError{Field: "kind", Reason: "must not be empty"}
	}
	status := opts.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !domain.KnownStatus(status) {
		return 0, &domain.ValidationError{Field: "status", Reason: "unknown status " + status}
	}
	// Unknown kinds are recorded as-is but flagged for operators
	if !domain.KnownKind(kind) {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"kind":       kind,
		}).Warn("Recording entry of unknown kind")
	}
	if _, err := m.store.AccountByTelegramID(ctx, accountID); err != nil {
		return 0, err
	}
	entry := domain.LedgerEntry{
		AccountID:   accountID,
		Kind:        kind,
		Amount:      amount,
		Currency:    currency,
		Status:      status,
		ExternalID:  opts.ExternalID,
		Description: opts.Description,
	}
	if err := m.store.CreateEntry(ctx, &entry); err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"entry_id":    entry.ID,
		"account_id":  accountID,
		"kind":        kind,
		"amount":      amount.String(),
		"currency":    currency,
		"status":      status,
		"external_id": opts.ExternalID,
	}).Info("Ledger entry recorded")
	return entry.ID, nil
}

// TransitionStatus moves a pending entry to completed or failed. Any
// other request, including a second transition, fails with
// domain.ErrInvalidTransition and changes nothing. Completing a deposit
// applies its amount to the owning account's balance atomically with the
// status write.
func (m *Manager) TransitionStatus(ctx context.Context, entryID uint, newStatus string) error {
	if !domain.TerminalStatus(newStatus) {
		return domain.ErrInvalidTransition
	}
	entry, err := m.store.EntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	// Only deposits move money; kind is immutable so this pre-read is
	// safe, and the store re-checks the pending status under lock.
	credit := newStatus == domain.StatusCompleted && entry.Kind == domain.KindDeposit
	if err := m.store.TransitionEntry(ctx, entryID, newStatus, credit); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"entry_id":   entryID,
		"account_id": entry.AccountID,
		"old":        entry.Status,
		"new":        newStatus,
		"credited":   credit,
	}).Info("Ledger entry transitioned")
	return nil
}

// EntryByID fetches a single entry
func (m *Manager) EntryByID(ctx context.Context, entryID uint) (domain.LedgerEntry, error) {
	return m.store.EntryByID(ctx, entryID)
}

// EntryByExternalID resolves an entry by its gateway correlation id
func (m *Manager) EntryByExternalID(ctx context.Context, externalID string) (domain.LedgerEntry, error) {
	return m.store.EntryByExternalID(ctx, externalID)
}

// ListEntriesForAccount lists an account's entries, most recent first
func (m *Manager) ListEntriesForAccount(ctx context.Context, accountID int64, limit int) ([]domain.LedgerEntry, error) {
	return m.store.EntriesByAccount(ctx, accountID, limit)
}

// ListAllEntries lists entries globally, most recent first (administrative use)
func (m *Manager) ListAllEntries(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	return m.store.Entries(ctx, limit)
}

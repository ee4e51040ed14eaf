// Package storage defines the persistence contract for the relay core.
// Implementations return typed records, never raw rows.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"topup_relay/internal/domain"
)

// Store is the durable state the registry, ledger manager and analytics
// aggregator operate on. Two implementations exist: gormstore (MySQL,
// production) and memory (tests).
type Store interface {
	// EnsureAccount inserts an account for telegramID if none exists,
	// otherwise refreshes the non-empty display fields only. Identity,
	// creation timestamp, balance and admin flag are never touched by an
	// ensure. Returns the stored record either way.
	EnsureAccount(ctx context.Context, telegramID int64, profile domain.Profile) (domain.Account, error)

	// AccountByTelegramID returns domain.ErrAccountNotFound when absent.
	AccountByTelegramID(ctx context.Context, telegramID int64) (domain.Account, error)

	// SetAdminFlag overwrites the admin flag.
	SetAdminFlag(ctx context.Context, telegramID int64, isAdmin bool) error

	// SetBalance overwrites the balance with an absolute value.
	SetBalance(ctx context.Context, telegramID int64, balance decimal.Decimal) error

	// CreateEntry appends a ledger entry and fills in its assigned
	// sequence number and creation timestamp.
	CreateEntry(ctx context.Context, entry *domain.LedgerEntry) error

	// EntryByID returns domain.ErrEntryNotFound when absent.
	EntryByID(ctx context.Context, id uint) (domain.LedgerEntry, error)

	// EntryByExternalID resolves an entry by its gateway correlation id.
	EntryByExternalID(ctx context.Context, externalID string) (domain.LedgerEntry, error)

	// TransitionEntry moves a pending entry to newStatus. When
	// creditBalance is set, the entry amount is added to the owning
	// account's balance in the same transaction; on failure neither
	// write is visible. A non-pending entry yields
	// domain.ErrInvalidTransition.
	TransitionEntry(ctx context.Context, id uint, newStatus string, creditBalance bool) error

	// EntriesByAccount lists an account's entries, most recent first.
	EntriesByAccount(ctx context.Context, telegramID int64, limit int) ([]domain.LedgerEntry, error)

	// Entries lists entries globally, most recent first.
	Entries(ctx context.Context, limit int) ([]domain.LedgerEntry, error)

	// CountAccounts returns the total number of registered accounts.
	CountAccounts(ctx context.Context) (int64, error)

	// CountEntries returns the total number of ledger entries.
	CountEntries(ctx context.Context) (int64, error)

	// SumCompletedAmount sums the amounts of completed entries of the
	// given kind; zero when there are none.
	SumCompletedAmount(ctx context.Context, kind string) (decimal.Decimal, error)
}

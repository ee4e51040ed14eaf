// Package analytics computes point-in-time aggregates over the ledger.
// Everything here is read-only and computed fresh on each call; results
// are never cached.
package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"topup_relay/internal/domain"
	"topup_relay/internal/storage"
)

// Stats is the admin statistics snapshot
type Stats struct {
	TotalAccounts    int64                `json:"total_accounts"`
	TotalEntries     int64                `json:"total_entries"`
	TotalDeposits    decimal.Decimal      `json:"total_completed_deposits"`
	TotalWithdrawals decimal.Decimal      `json:"total_completed_withdrawals"`
	Recent           []domain.LedgerEntry `json:"recent_entries"`
}

// Aggregator reads aggregates from the store
type Aggregator struct {
	store storage.Store
}

// New creates an Aggregator over the given store
func New(store storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// TotalAccounts returns the number of registered accounts
func (a *Aggregator) TotalAccounts(ctx context.Context) (int64, error) {
	return a.store.CountAccounts(ctx)
}

// TotalEntries returns the number of ledger entries
func (a *Aggregator) TotalEntries(ctx context.Context) (int64, error) {
	return a.store.CountEntries(ctx)
}

// TotalCompletedAmount sums completed entries of the given kind; zero
// when none exist
func (a *Aggregator) TotalCompletedAmount(ctx context.Context, kind string) (decimal.Decimal, error) {
	return a.store.SumCompletedAmount(ctx, kind)
}

// RecentEntries lists the latest entries, most recent first
func (a *Aggregator) RecentEntries(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	return a.store.Entries(ctx, limit)
}

// Snapshot assembles the admin stats view in one pass
func (a *Aggregator) Snapshot(ctx context.Context, recentLimit int) (Stats, error) {
	var stats Stats
	var err error
	if stats.TotalAccounts, err = a.store.CountAccounts(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TotalEntries, err = a.store.CountEntries(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TotalDeposits, err = a.store.SumCompletedAmount(ctx, domain.KindDeposit); err != nil {
		return Stats{}, err
	}
	if stats.TotalWithdrawals, err = a.store.SumCompletedAmount(ctx, domain.KindWithdrawal); err != nil {
		return Stats{}, err
	}
	if stats.Recent, err = a.store.Entries(ctx, recentLimit); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

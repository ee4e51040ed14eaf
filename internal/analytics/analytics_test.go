package analytics_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topup_relay/internal/analytics"
	"topup_relay/internal/domain"
	"topup_relay/internal/ledger"
	"topup_relay/internal/storage/memory"
)

func newTestAggregator(t *testing.T) (*analytics.Aggregator, *ledger.Manager, *memory.Store) {
	t.Helper()
	store := memory.New()
	return analytics.New(store), ledger.New(store), store
}

func TestAggregates_EmptyLedger(t *testing.T) {
	agg, _, _ := newTestAggregator(t)
	ctx := context.Background()

	accounts, err := agg.TotalAccounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, accounts)

	entries, err := agg.TotalEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, entries)

	// Sum over nothing is zero, not an error
	total, err := agg.TotalCompletedAmount(ctx, domain.KindDeposit)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	recent, err := agg.RecentEntries(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestTotalCompletedAmount_IgnoresPendingAndOtherKinds(t *testing.T) {
	agg, led, store := newTestAggregator(t)
	ctx := context.Background()
	_, err := store.EnsureAccount(ctx, 42, domain.Profile{})
	require.NoError(t, err)

	// Two completed deposits of 10 and 15
	for _, amount := range []int64{10, 15} {
		id, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(amount), "TON", ledger.RecordOptions{})
		require.NoError(t, err)
		require.NoError(t, led.TransitionStatus(ctx, id, domain.StatusCompleted))
	}
	// A pending deposit and a completed withdrawal must not count
	_, err = led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(100), "TON", ledger.RecordOptions{})
	require.NoError(t, err)
	wid, err := led.RecordEntry(ctx, 42, domain.KindWithdrawal, decimal.NewFromInt(3), "TON", ledger.RecordOptions{})
	require.NoError(t, err)
	require.NoError(t, led.TransitionStatus(ctx, wid, domain.StatusFailed))

	total, err := agg.TotalCompletedAmount(ctx, domain.KindDeposit)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(25)), "got %s", total.String())

	withdrawals, err := agg.TotalCompletedAmount(ctx, domain.KindWithdrawal)
	require.NoError(t, err)
	assert.True(t, withdrawals.IsZero())
}

func TestSnapshot(t *testing.T) {
	agg, led, store := newTestAggregator(t)
	ctx := context.Background()
	_, err := store.EnsureAccount(ctx, 42, domain.Profile{})
	require.NoError(t, err)
	_, err = store.EnsureAccount(ctx, 43, domain.Profile{})
	require.NoError(t, err)

	id, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(10), "TON", ledger.RecordOptions{})
	require.NoError(t, err)
	require.NoError(t, led.TransitionStatus(ctx, id, domain.StatusCompleted))
	_, err = led.RecordEntry(ctx, 43, domain.KindPurchase, decimal.NewFromInt(4), "RUB", ledger.RecordOptions{})
	require.NoError(t, err)

	stats, err := agg.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalAccounts)
	assert.Equal(t, int64(2), stats.TotalEntries)
	assert.True(t, stats.TotalDeposits.Equal(decimal.NewFromInt(10)))
	assert.True(t, stats.TotalWithdrawals.IsZero())
	// Recent listing respects the limit and ordering
	require.Len(t, stats.Recent, 1)
	assert.Equal(t, uint(2), stats.Recent[0].ID)
}

package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topup_relay/internal/domain"
	"topup_relay/internal/ledger"
	"topup_relay/internal/storage/memory"
)

func newTestLedger(t *testing.T) (*ledger.Manager, *memory.Store) {
	t.Helper()
	store := memory.New()
	return ledger.New(store), store
}

func seedAccount(t *testing.T, store *memory.Store, telegramID int64) {
	t.Helper()
	_, err := store.EnsureAccount(context.Background(), telegramID, domain.Profile{})
	require.NoError(t, err)
}

func TestRecordEntry_AssignsSequence(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	id, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(10), "TON", ledger.RecordOptions{})
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	entry, err := led.EntryByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.Equal(t, "TON", entry.Currency)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(10)))
}

func TestRecordEntry_ZeroAmount_Rejected(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	_, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.Zero, "TON", ledger.RecordOptions{})

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	// Nothing was written
	count, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordEntry_BadCurrency_Rejected(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	var validationErr *domain.ValidationError
	for _, currency := range []string{"", "T", "TOOLONG", "ton"} {
		_, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(10), currency, ledger.RecordOptions{})
		assert.ErrorAs(t, err, &validationErr, "currency %q should be rejected", currency)
	}
}

func TestRecordEntry_UnknownStatus_Rejected(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	_, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(10), "TON", ledger.RecordOptions{Status: "settled"})

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRecordEntry_UnknownKind_Accepted(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	// Open enumeration: unknown kinds are recorded, only flagged in logs
	id, err := led.RecordEntry(ctx, 42, "steam_refund", decimal.NewFromInt(5), "RUB", ledger.RecordOptions{})
	require.NoError(t, err)

	entry, err := led.EntryByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "steam_refund", entry.Kind)
}

func TestRecordEntry_UnknownAccount_Rejected(t *testing.T) {
	led, _ := newTestLedger(t)

	_, err := led.RecordEntry(context.Background(), 999, domain.KindDeposit, decimal.NewFromInt(10), "TON", ledger.RecordOptions{})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestTransition_DepositCompletion_CreditsBalance(t *testing.T) {
	// The concrete end-to-end scenario: register account 42, record a
	// 10 TON deposit, complete it, and expect the balance to grow by
	// exactly the entry amount.
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	id, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(10), "TON", ledger.RecordOptions{})
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	require.NoError(t, led.TransitionStatus(ctx, id, domain.StatusCompleted))

	account, err := store.AccountByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(10)))

	entries, err := led.ListEntriesForAccount(ctx, 42, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusCompleted, entries[0].Status)
}

func TestTransition_WithdrawalCompletion_LeavesBalance(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	for _, kind := range []string{domain.KindWithdrawal, domain.KindPurchase, domain.KindBonus} {
		id, err := led.RecordEntry(ctx, 42, kind, decimal.NewFromInt(7), "RUB", ledger.RecordOptions{})
		require.NoError(t, err)
		require.NoError(t, led.TransitionStatus(ctx, id, domain.StatusCompleted))
	}

	// Only deposits credit balance on completion
	account, err := store.AccountByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestTransition_Failed_LeavesBalance(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	id, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(10), "TON", ledger.RecordOptions{})
	require.NoError(t, err)
	require.NoError(t, led.TransitionStatus(ctx, id, domain.StatusFailed))

	account, err := store.AccountByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())

	entry, err := led.EntryByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, entry.Status)
}

func TestTransition_TerminalStateIsFinal(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	id, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(10), "TON", ledger.RecordOptions{})
	require.NoError(t, err)
	require.NoError(t, led.TransitionStatus(ctx, id, domain.StatusCompleted))

	// No transition out of a terminal state, and no double credit
	err = led.TransitionStatus(ctx, id, domain.StatusFailed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = led.TransitionStatus(ctx, id, domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	account, err := store.AccountByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(10)))
}

func TestTransition_ToPending_Rejected(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)

	id, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(10), "TON", ledger.RecordOptions{})
	require.NoError(t, err)

	err = led.TransitionStatus(ctx, id, domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = led.TransitionStatus(ctx, id, "refunded")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_UnknownEntry(t *testing.T) {
	led, _ := newTestLedger(t)

	err := led.TransitionStatus(context.Background(), 999, domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestListEntries_OrderAndLimit(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	seedAccount(t, store, 42)
	seedAccount(t, store, 43)

	for i := 0; i < 3; i++ {
		_, err := led.RecordEntry(ctx, 42, domain.KindDeposit, decimal.NewFromInt(int64(i+1)), "TON", ledger.RecordOptions{})
		require.NoError(t, err)
	}
	_, err := led.RecordEntry(ctx, 43, domain.KindBonus, decimal.NewFromInt(1), "RUB", ledger.RecordOptions{})
	require.NoError(t, err)

	// Per-account listing: most recent first, other accounts excluded
	entries, err := led.ListEntriesForAccount(ctx, 42, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []uint{3, 2, 1}, []uint{entries[0].ID, entries[1].ID, entries[2].ID})

	// Limit bounds the result
	entries, err = led.ListEntriesForAccount(ctx, 42, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(3), entries[0].ID)

	// Global listing sees everything
	all, err := led.ListAllEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, uint(4), all[0].ID)
}

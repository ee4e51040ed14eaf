package registry_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topup_relay/internal/domain"
	"topup_relay/internal/registry"
	"topup_relay/internal/storage/memory"
)

func newTestRegistry(t *testing.T) (*registry.Registry, *memory.Store) {
	t.Helper()
	store := memory.New()
	return registry.New(store), store
}

func TestEnsureAccount_Idempotent(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()

	first, err := reg.EnsureAccount(ctx, 42, domain.Profile{Username: "alice", FirstName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), first.TelegramID)
	assert.True(t, first.Balance.IsZero())

	// Pretend some state accrued between registrations
	require.NoError(t, reg.SetBalance(ctx, 42, decimal.NewFromInt(100)))

	second, err := reg.EnsureAccount(ctx, 42, domain.Profile{Username: "alice_renamed"})
	require.NoError(t, err)

	// Exactly one stored account, identity and timestamp untouched
	count, err := store.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, first.TelegramID, second.TelegramID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	// Display fields refreshed, balance untouched
	assert.Equal(t, "alice_renamed", second.Username)
	assert.True(t, second.Balance.Equal(decimal.NewFromInt(100)))
	// Empty fields are not applied, the earlier first name survives
	assert.Equal(t, "Alice", second.FirstName)
}

func TestLookup_NotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Lookup(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestSetAdminFlag(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.EnsureAccount(ctx, 42, domain.Profile{})
	require.NoError(t, err)

	require.NoError(t, reg.SetAdminFlag(ctx, 42, true))
	account, err := reg.Lookup(ctx, 42)
	require.NoError(t, err)
	assert.True(t, account.IsAdmin)

	require.NoError(t, reg.SetAdminFlag(ctx, 42, false))
	account, err = reg.Lookup(ctx, 42)
	require.NoError(t, err)
	assert.False(t, account.IsAdmin)
}

func TestSetAdminFlag_NotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)

	err := reg.SetAdminFlag(context.Background(), 999, true)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestSetBalance_Overwrites(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.EnsureAccount(ctx, 42, domain.Profile{})
	require.NoError(t, err)

	require.NoError(t, reg.SetBalance(ctx, 42, decimal.NewFromFloat(12.5)))
	require.NoError(t, reg.SetBalance(ctx, 42, decimal.NewFromFloat(3.25)))

	account, err := reg.Lookup(ctx, 42)
	require.NoError(t, err)
	// Absolute overwrite, not a delta
	assert.True(t, account.Balance.Equal(decimal.NewFromFloat(3.25)))
}

func TestSetBalance_NotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)

	err := reg.SetBalance(context.Background(), 999, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

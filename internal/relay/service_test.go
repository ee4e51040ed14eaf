package relay_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topup_relay/internal/domain"
	"topup_relay/internal/gateway"
	"topup_relay/internal/ledger"
	"topup_relay/internal/registry"
	"topup_relay/internal/relay"
	"topup_relay/internal/storage/memory"
)

// stubGateway returns a canned intent or error and remembers what it was
// asked for
type stubGateway struct {
	intent    *gateway.DepositIntent
	err       error
	gotAmount decimal.Decimal
}

func (s *stubGateway) RequestDeposit(ctx context.Context, amount decimal.Decimal, currency string) (*gateway.DepositIntent, error) {
	s.gotAmount = amount
	if s.err != nil {
		return nil, s.err
	}
	return s.intent, nil
}

func newTestService(t *testing.T, gw gateway.Adapter) (*relay.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return relay.New(registry.New(store), ledger.New(store), gw), store
}

func TestInitiateDeposit_RecordsConfirmedTerms(t *testing.T) {
	// The gateway confirms different terms than requested; the pending
	// entry must carry the confirmed ones.
	gw := &stubGateway{intent: &gateway.DepositIntent{
		Address:      "EQabc123",
		Amount:       decimal.NewFromFloat(12.5),
		Currency:     "TON",
		ExternalID:   "pw-777",
		Instructions: "Send the crypto to the address above.",
	}}
	svc, store := newTestService(t, gw)
	ctx := context.Background()

	result, err := svc.InitiateDeposit(ctx, 42, domain.Profile{Username: "alice"}, decimal.NewFromInt(10), "TON")
	require.NoError(t, err)
	assert.True(t, gw.gotAmount.Equal(decimal.NewFromInt(10)))

	entry, err := store.EntryByID(ctx, result.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.KindDeposit, entry.Kind)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.True(t, entry.Amount.Equal(decimal.NewFromFloat(12.5)))
	assert.Equal(t, "TON", entry.Currency)
	assert.Equal(t, "pw-777", entry.ExternalID)

	// The account was registered as part of the flow, balance untouched
	account, err := store.AccountByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.True(t, account.Balance.IsZero())
}

func TestInitiateDeposit_GatewayFailure_LeavesNoEntry(t *testing.T) {
	gw := &stubGateway{err: &gateway.Error{Method: "createDeposit", StatusCode: 503}}
	svc, store := newTestService(t, gw)
	ctx := context.Background()

	_, err := svc.InitiateDeposit(ctx, 42, domain.Profile{}, decimal.NewFromInt(10), "TON")

	var gatewayErr *gateway.Error
	require.ErrorAs(t, err, &gatewayErr)

	// No ledger entry exists and the balance is unchanged
	count, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	account, err := store.AccountByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestSettleByExternalID(t *testing.T) {
	gw := &stubGateway{intent: &gateway.DepositIntent{
		Address:    "EQabc123",
		Amount:     decimal.NewFromInt(10),
		Currency:   "TON",
		ExternalID: "pw-1",
	}}
	svc, store := newTestService(t, gw)
	ctx := context.Background()

	result, err := svc.InitiateDeposit(ctx, 42, domain.Profile{}, decimal.NewFromInt(10), "TON")
	require.NoError(t, err)

	entry, err := svc.SettleByExternalID(ctx, "pw-1", domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, result.EntryID, entry.ID)
	assert.Equal(t, domain.StatusCompleted, entry.Status)

	// Completing the deposit credited the balance
	account, err := store.AccountByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(10)))

	// A second settlement attempt hits the terminal state
	_, err = svc.SettleByExternalID(ctx, "pw-1", domain.StatusFailed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSettleByExternalID_Unknown(t *testing.T) {
	svc, _ := newTestService(t, &stubGateway{})

	_, err := svc.SettleByExternalID(context.Background(), "no-such-id", domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

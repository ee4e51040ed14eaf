package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topup_relay/internal/auth"
	"topup_relay/internal/domain"
	"topup_relay/internal/storage/memory"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := auth.GenerateJWT(42, "secret")
	require.NoError(t, err)

	claims, err := auth.ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.TelegramID)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := auth.GenerateJWT(42, "secret")
	require.NoError(t, err)

	_, err = auth.ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestAuthorizer(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	_, err := store.EnsureAccount(ctx, 1, domain.Profile{})
	require.NoError(t, err)
	_, err = store.EnsureAccount(ctx, 2, domain.Profile{})
	require.NoError(t, err)
	require.NoError(t, store.SetAdminFlag(ctx, 1, true))

	authorizer := auth.NewAuthorizer(store, map[int64]bool{2: true})

	// Stored flag grants access
	isAdmin, err := authorizer.IsAdmin(ctx, 1)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// Allow-list grants access without the flag
	isAdmin, err = authorizer.IsAdmin(ctx, 2)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// Neither flag nor allow-list
	_, err = store.EnsureAccount(ctx, 3, domain.Profile{})
	require.NoError(t, err)
	isAdmin, err = authorizer.IsAdmin(ctx, 3)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	// Unregistered callers are never admins, allow-listed or not
	authorizer = auth.NewAuthorizer(store, map[int64]bool{99: true})
	isAdmin, err = authorizer.IsAdmin(ctx, 99)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

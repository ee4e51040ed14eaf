package auth

import (
	"context"
	"errors"

	"topup_relay/internal/domain"
	"topup_relay/internal/storage"
)

// Authorizer decides administrative access: a registered account is an
// admin if its stored flag is set or its id is on the configured
// allow-list. The allow-list is injected at construction, not read from
// package state, so tests can supply their own.
type Authorizer struct {
	store     storage.Store
	allowList map[int64]bool
}

// NewAuthorizer creates an Authorizer over the store and a static allow-list
func NewAuthorizer(store storage.Store, allowList map[int64]bool) *Authorizer {
	if allowList == nil {
		allowList = make(map[int64]bool)
	}
	return &Authorizer{store: store, allowList: allowList}
}

// IsAdmin reports whether the caller may use administrative operations.
// Unregistered callers are never admins, allow-listed or not.
func (a *Authorizer) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	account, err := a.store.AccountByTelegramID(ctx, telegramID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return account.IsAdmin || a.allowList[telegramID], nil
}

// Package memory provides an in-memory storage.Store used by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"topup_relay/internal/domain"
	"topup_relay/internal/storage"
)

// Store keeps accounts and ledger entries in maps guarded by a single
// mutex, which doubles as the "transaction" for the status+balance write.
type Store struct {
	mu       sync.Mutex
	accounts map[int64]domain.Account
	entries  map[uint]domain.LedgerEntry
	nextID   uint
}

// Compile-time check that Store satisfies the interface
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		accounts: make(map[int64]domain.Account),
		entries:  make(map[uint]domain.LedgerEntry),
		nextID:   1,
	}
}

func (s *Store) EnsureAccount(ctx context.Context, telegramID int64, profile domain.Profile) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[telegramID]
	if !ok {
		account = domain.Account{
			ID:         uint(len(s.accounts) + 1),
			TelegramID: telegramID,
			Balance:    decimal.Zero,
			CreatedAt:  time.Now(),
		}
	}
	// Non-empty display fields refresh on every ensure; everything else is kept
	if profile.Username != "" {
		account.Username = profile.Username
	}
	if profile.FirstName != "" {
		account.FirstName = profile.FirstName
	}
	if profile.LastName != "" {
		account.LastName = profile.LastName
	}
	s.accounts[telegramID] = account
	return account, nil
}

func (s *Store) AccountByTelegramID(ctx context.Context, telegramID int64) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[telegramID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) SetAdminFlag(ctx context.Context, telegramID int64, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[telegramID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.IsAdmin = isAdmin
	s.accounts[telegramID] = account
	return nil
}

func (s *Store) SetBalance(ctx context.Context, telegramID int64, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[telegramID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Balance = balance
	s.accounts[telegramID] = account
	return nil
}

func (s *Store) CreateEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries[entry.ID] = *entry
	return nil
}

func (s *Store) EntryByID(ctx context.Context, id uint) (domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return domain.LedgerEntry{}, domain.ErrEntryNotFound
	}
	return entry, nil
}

func (s *Store) EntryByExternalID(ctx context.Context, externalID string) (domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.ExternalID == externalID {
			return entry, nil
		}
	}
	return domain.LedgerEntry{}, domain.ErrEntryNotFound
}

func (s *Store) TransitionEntry(ctx context.Context, id uint, newStatus string, creditBalance bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	if entry.Status != domain.StatusPending {
		return domain.ErrInvalidTransition
	}
	if creditBalance {
		account, ok := s.accounts[entry.AccountID]
		if !ok {
			return domain.ErrAccountNotFound // Status stays pending
		}
		account.Balance = account.Balance.Add(entry.Amount)
		s.accounts[entry.AccountID] = account
	}
	entry.Status = newStatus
	s.entries[id] = entry
	return nil
}

func (s *Store) EntriesByAccount(ctx context.Context, telegramID int64, limit int) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.LedgerEntry
	for _, entry := range s.entries {
		if entry.AccountID == telegramID {
			result = append(result, entry)
		}
	}
	return trim(result, limit), nil
}

func (s *Store) Entries(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.LedgerEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		result = append(result, entry)
	}
	return trim(result, limit), nil
}

func (s *Store) CountAccounts(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.accounts)), nil
}

func (s *Store) CountEntries(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.entries)), nil
}

func (s *Store) SumCompletedAmount(ctx context.Context, kind string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, entry := range s.entries {
		if entry.Kind == kind && entry.Status == domain.StatusCompleted {
			total = total.Add(entry.Amount)
		}
	}
	return total, nil
}

// trim orders entries most recent first (creation time, then sequence
// number descending) and bounds the result
func trim(entries []domain.LedgerEntry, limit int) []domain.LedgerEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

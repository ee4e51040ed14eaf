// Package gormstore implements storage.Store on MySQL via GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/clause"

	"topup_relay/internal/domain"
	"topup_relay/internal/storage"
)

// Store is the MySQL-backed implementation of storage.Store
type Store struct {
	db *gorm.DB
}

// Compile-time check that Store satisfies the interface
var _ storage.Store = (*Store)(nil)

// Open connects to MySQL and migrates the schema. Migration is
// idempotent, so it is safe to run on every startup.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	store := &Store{db: db}
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// New wraps an existing GORM connection without migrating
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates tables, missing foreign keys, constraints, columns and indexes
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&domain.Account{}, &domain.LedgerEntry{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// EnsureAccount inserts the account or refreshes its display fields.
// Identity, creation timestamp, balance and admin flag are never touched,
// which is what makes repeated registration safe. Empty profile fields
// are not applied, so flows that only need the account to exist don't
// wipe a previously supplied name.
func (s *Store) EnsureAccount(ctx context.Context, telegramID int64, profile domain.Profile) (domain.Account, error) {
	account := domain.Account{
		TelegramID: telegramID,
		Username:   profile.Username,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Balance:    decimal.Zero,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoNothing: true,
	}).Create(&account).Error
	if err != nil {
		return domain.Account{}, fmt.Errorf("ensure account %d: %w", telegramID, err)
	}
	updates := map[string]any{}
	if profile.Username != "" {
		updates["username"] = profile.Username
	}
	if profile.FirstName != "" {
		updates["first_name"] = profile.FirstName
	}
	if profile.LastName != "" {
		updates["last_name"] = profile.LastName
	}
	if len(updates) > 0 {
		err = s.db.WithContext(ctx).Model(&domain.Account{}).
			Where("telegram_id = ?", telegramID).
			Updates(updates).Error
		if err != nil {
			return domain.Account{}, fmt.Errorf("refresh profile for %d: %w", telegramID, err)
		}
	}
	// Re-read so the caller sees the stored record, not the insert struct
	return s.AccountByTelegramID(ctx, telegramID)
}

// AccountByTelegramID fetches an account by its external identity
func (s *Store) AccountByTelegramID(ctx context.Context, telegramID int64) (domain.Account, error) {
	var account domain.Account
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account %d: %w", telegramID, err)
	}
	return account, nil
}

// SetAdminFlag overwrites the admin flag
func (s *Store) SetAdminFlag(ctx context.Context, telegramID int64, isAdmin bool) error {
	if _, err := s.AccountByTelegramID(ctx, telegramID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&domain.Account{}).
		Where("telegram_id = ?", telegramID).
		Update("is_admin", isAdmin).Error
	if err != nil {
		return fmt.Errorf("set admin flag for %d: %w", telegramID, err)
	}
	return nil
}

// SetBalance overwrites the balance with an absolute value
func (s *Store) SetBalance(ctx context.Context, telegramID int64, balance decimal.Decimal) error {
	if _, err := s.AccountByTelegramID(ctx, telegramID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&domain.Account{}).
		Where("telegram_id = ?", telegramID).
		Update("balance", balance).Error
	if err != nil {
		return fmt.Errorf("set balance for %d: %w", telegramID, err)
	}
	return nil
}

// CreateEntry appends a ledger entry
func (s *Store) CreateEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// EntryByID fetches a ledger entry by its sequence number
func (s *Store) EntryByID(ctx context.Context, id uint) (domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := s.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.LedgerEntry{}, domain.ErrEntryNotFound
	}
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("fetch ledger entry %d: %w", id, err)
	}
	return entry, nil
}

// EntryByExternalID fetches a ledger entry by its gateway correlation id
func (s *Store) EntryByExternalID(ctx context.Context, externalID string) (domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.LedgerEntry{}, domain.ErrEntryNotFound
	}
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("fetch ledger entry by external id %q: %w", externalID, err)
	}
	return entry, nil
}

// TransitionEntry moves a pending entry to a terminal status and, when
// requested, credits the owning account in the same database transaction.
// The entry row is locked so a concurrent transition sees the terminal
// status and fails instead of double-crediting.
func (s *Store) TransitionEntry(ctx context.Context, id uint, newStatus string, creditBalance bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry domain.LedgerEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("lock ledger entry %d: %w", id, err)
		}
		if entry.Status != domain.StatusPending {
			return domain.ErrInvalidTransition
		}
		if err := tx.Model(&entry).Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("update status of entry %d: %w", id, err)
		}
		if creditBalance {
			res := tx.Model(&domain.Account{}).
				Where("telegram_id = ?", entry.AccountID).
				Update("balance", gorm.Expr("balance + ?", entry.Amount))
			if res.Error != nil {
				return fmt.Errorf("credit account %d: %w", entry.AccountID, res.Error)
			}
			if res.RowsAffected == 0 {
				return domain.ErrAccountNotFound // Rolls back the status write
			}
		}
		return nil
	})
}

// EntriesByAccount lists an account's entries, most recent first
func (s *Store) EntriesByAccount(ctx context.Context, telegramID int64, limit int) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("account_id = ?", telegramID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list entries for account %d: %w", telegramID, err)
	}
	return entries, nil
}

// Entries lists entries globally, most recent first
func (s *Store) Entries(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// CountAccounts returns the total number of registered accounts
func (s *Store) CountAccounts(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Account{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return total, nil
}

// CountEntries returns the total number of ledger entries
func (s *Store) CountEntries(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.LedgerEntry{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return total, nil
}

// SumCompletedAmount sums completed entries of a kind; zero when none exist
func (s *Store) SumCompletedAmount(ctx context.Context, kind string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := s.db.WithContext(ctx).Model(&domain.LedgerEntry{}).
		Select("SUM(amount)").
		Where("kind = ? AND status = ?", kind, domain.StatusCompleted).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum completed %s amount: %w", kind, err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

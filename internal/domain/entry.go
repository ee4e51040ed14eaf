package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry kinds. The column is an open string, so new kinds can appear
// without a migration; these are the ones the relay itself writes.
const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindPurchase   = "purchase"
	KindBonus      = "bonus"
)

// Entry statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// LedgerEntry Model. Entries are append-only: amount, currency and the
// owning account never change after creation, and a terminal status is
// never left.
type LedgerEntry struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                      // Sequence number, assigned at creation
	AccountID   int64           `gorm:"index;not null" json:"account_id"`          // Foreign key to Account.TelegramID
	Kind        string          `gorm:"not null" json:"kind"`                      // deposit, withdrawal, purchase, bonus, ...
	Amount      decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"amount"` // Signed amount in Currency
	Currency    string          `gorm:"size:4;not null" json:"currency"`           // 3-4 character currency code
	Status      string          `gorm:"default:pending" json:"status"`             // pending, completed, failed
	ExternalID  string          `gorm:"index" json:"external_id"`                  // Correlation id assigned by the gateway
	Description string          `json:"description"`                               // Free text
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`          // Timestamp of creation
}

// KnownKind reports whether kind is one of the fixed enumeration.
func KnownKind(kind string) bool {
	switch kind {
	case KindDeposit, KindWithdrawal, KindPurchase, KindBonus:
		return true
	}
	return false
}

// KnownStatus reports whether status is one of the fixed enumeration.
func KnownStatus(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// TerminalStatus reports whether status permits no further transition.
func TerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account Model
type Account struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                              // Primary key
	TelegramID int64           `gorm:"uniqueIndex;not null" json:"telegram_id"`           // External identity assigned by Telegram
	Username   string          `json:"username"`                                          // Optional display name
	FirstName  string          `json:"first_name"`                                        // Optional display name
	LastName   string          `json:"last_name"`                                         // Optional display name
	IsAdmin    bool            `gorm:"default:false" json:"is_admin"`                     // Administrator flag
	Balance    decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"balance"`        // Wallet balance
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`                  // Timestamp of registration
	Entries    []LedgerEntry   `gorm:"foreignKey:AccountID;references:TelegramID" json:"-"` // Ledger entries owned by this account
}

// Profile carries the mutable display fields supplied on registration
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

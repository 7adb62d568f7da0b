package models

import (
	"time"
)

// WalletTransaction is a single signed ledger entry. Positive amounts are
// credits, negative amounts are debits/withdrawals. TransactionID is the
// idempotency key cross-referencing the originating payment or withdrawal.
type WalletTransaction struct {
	ID              int       `gorm:"primaryKey;autoIncrement" json:"id"`
	WalletID        int       `gorm:"column:wallet_id;not null;index" json:"wallet_id"`
	Amount          float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	TransactionID   string    `gorm:"column:transaction_id;size:64;not null;uniqueIndex" json:"transaction_id"`
	Status          string    `gorm:"column:status;size:32;default:PENDING;index" json:"status"`
	VendorReference string    `gorm:"column:vendor_reference;size:128" json:"vendor_reference"`
	Reversed        bool      `gorm:"column:reversed;default:false" json:"reversed"`
	PayoutAttempts  int       `gorm:"column:payout_attempts;default:0" json:"payout_attempts"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

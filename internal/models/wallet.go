package models

import (
	"time"
)

// Wallet is the internal ledger balance for a landlord. The balance is
// maintained incrementally; every change goes through a WalletTransaction.
type Wallet struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	LandlordID int       `gorm:"column:landlord_id;not null;uniqueIndex" json:"landlord_id"`
	Balance    float64   `gorm:"column:balance;type:decimal(20,2);default:0.00" json:"balance"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

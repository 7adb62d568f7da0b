package models

import (
	"time"
)

type UtilityPayment struct {
	ID                  int       `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID       string    `gorm:"column:transaction_id;size:64;not null;uniqueIndex" json:"transaction_id"`
	VendorTransactionID string    `gorm:"column:vendor_transaction_id;size:128;index" json:"vendor_transaction_id"`
	MeterNumber         string    `gorm:"column:meter_number;size:32;not null;index" json:"meter_number"`
	PhoneNumber         string    `gorm:"column:phone_number;size:20" json:"phone_number"`
	Amount              float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	PaymentMethod       string    `gorm:"column:payment_method;size:20;default:MOMO" json:"payment_method"`
	Status              string    `gorm:"column:status;size:32;default:PENDING;index" json:"status"`
	Message             string    `gorm:"column:message;type:text" json:"message"`
	Token               string    `gorm:"column:token;size:64" json:"token"`
	Units               float64   `gorm:"column:units;type:decimal(12,2);default:0.00" json:"units"`
	IsTokenGenerated    bool      `gorm:"column:is_token_generated;default:false;index" json:"is_token_generated"`
	TokenAttempts       int       `gorm:"column:token_attempts;default:0" json:"token_attempts"`
	VendorReference     string    `gorm:"column:vendor_reference;size:128" json:"vendor_reference"`
	VendorDate          string    `gorm:"column:vendor_date;size:32" json:"vendor_date"`
	Credited            bool      `gorm:"column:credited;default:false;index" json:"credited"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UtilityPayment) TableName() string {
	return "utility_payments"
}

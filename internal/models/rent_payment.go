package models

import (
	"time"
)

type RentPayment struct {
	ID                  int       `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID       string    `gorm:"column:transaction_id;size:64;not null;uniqueIndex" json:"transaction_id"`
	VendorTransactionID string    `gorm:"column:vendor_transaction_id;size:128;index" json:"vendor_transaction_id"`
	TenantID            int       `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	PhoneNumber         string    `gorm:"column:phone_number;size:20" json:"phone_number"`
	Amount              float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	PaymentMethod       string    `gorm:"column:payment_method;size:20;default:MOMO" json:"payment_method"`
	Status              string    `gorm:"column:status;size:32;default:PENDING;index" json:"status"`
	Message             string    `gorm:"column:message;type:text" json:"message"`
	Credited            bool      `gorm:"column:credited;default:false;index" json:"credited"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (RentPayment) TableName() string {
	return "rent_payments"
}

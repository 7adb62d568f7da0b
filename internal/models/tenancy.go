package models

import (
	"time"
)

type Property struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"column:name;size:150;not null" json:"name"`
	LandlordID int       `gorm:"column:landlord_id;not null;index" json:"landlord_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

type Tenant struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;size:150;not null" json:"name"`
	PhoneNumber string    `gorm:"column:phone_number;size:20" json:"phone_number"`
	PropertyID  int       `gorm:"column:property_id;not null;index" json:"property_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// Meter links a prepaid utility meter to the landlord whose wallet receives
// utility payment credits.
type Meter struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	MeterNumber string    `gorm:"column:meter_number;size:32;not null;uniqueIndex" json:"meter_number"`
	LandlordID  int       `gorm:"column:landlord_id;not null;index" json:"landlord_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Meter) TableName() string {
	return "meters"
}

// PayoutAccount holds the payment details used when paying a landlord out:
// phone number for mobile money, bank details for bank transfers.
type PayoutAccount struct {
	ID            int       `gorm:"primaryKey;autoIncrement" json:"id"`
	LandlordID    int       `gorm:"column:landlord_id;not null;index" json:"landlord_id"`
	PhoneNumber   string    `gorm:"column:phone_number;size:20" json:"phone_number"`
	BankName      string    `gorm:"column:bank_name;size:150" json:"bank_name"`
	SwiftCode     string    `gorm:"column:swift_code;size:20" json:"swift_code"`
	AccountNumber string    `gorm:"column:account_number;size:50" json:"account_number"`
	AccountName   string    `gorm:"column:account_name;size:150" json:"account_name"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PayoutAccount) TableName() string {
	return "payout_accounts"
}

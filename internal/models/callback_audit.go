package models

import (
	"time"
)

// CallbackAudit stores a raw inbound gateway webhook payload until the
// callback worker has ingested it.
type CallbackAudit struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Source    string    `gorm:"column:source;size:50" json:"source"`
	Payload   string    `gorm:"column:payload;type:longtext" json:"payload"`
	Processed bool      `gorm:"column:processed;default:false;index" json:"processed"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CallbackAudit) TableName() string {
	return "callback_audits"
}

type ArchivedCallbackAudit struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Source     string    `gorm:"column:source;size:50" json:"source"`
	Payload    string    `gorm:"column:payload;type:longtext" json:"payload"`
	Processed  bool      `gorm:"column:processed;default:true" json:"processed"`
	ReceivedAt time.Time `gorm:"column:received_at" json:"received_at"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ArchivedCallbackAudit) TableName() string {
	return "archived_callback_audits"
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"propertypay-service/internal/models"
)

// AuditStore persists raw inbound gateway callbacks until the callback
// worker has ingested them, and archives old processed audits nightly.
type AuditStore struct {
	DB *gorm.DB
}

func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{DB: db}
}

func (s *AuditStore) CreateAudit(ctx context.Context, source, payload string) error {
	audit := models.CallbackAudit{Source: source, Payload: payload}
	return s.DB.WithContext(ctx).Create(&audit).Error
}

func (s *AuditStore) UnprocessedAudits(ctx context.Context, limit int) ([]models.CallbackAudit, error) {
	var audits []models.CallbackAudit
	err := s.DB.WithContext(ctx).Where("processed = ?", false).
		Order("created_at ASC").Limit(limit).Find(&audits).Error
	return audits, err
}

func (s *AuditStore) MarkProcessed(ctx context.Context, id int) error {
	return s.DB.WithContext(ctx).Model(&models.CallbackAudit{}).
		Where("id = ?", id).UpdateColumn("processed", true).Error
}

// ArchiveProcessed moves processed audits older than the cutoff into the
// archive table.
func (s *AuditStore) ArchiveProcessed(olderThan time.Duration) {
	cutoff := time.Now().Add(-olderThan)

	var audits []models.CallbackAudit
	if err := s.DB.Where("processed = ? AND created_at < ?", true, cutoff).Find(&audits).Error; err != nil {
		log.Printf("Error fetching audits to archive: %v", err)
		return
	}
	if len(audits) == 0 {
		return
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		archived := make([]models.ArchivedCallbackAudit, len(audits))
		ids := make([]int, len(audits))
		for i, a := range audits {
			archived[i] = models.ArchivedCallbackAudit{
				Source:     a.Source,
				Payload:    a.Payload,
				Processed:  a.Processed,
				ReceivedAt: a.CreatedAt,
			}
			ids[i] = a.ID
		}

		if err := tx.Create(&archived).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CallbackAudit{}, ids).Error
	})

	if err != nil {
		log.Printf("Error during callback audit archiving: %v", err)
	} else {
		log.Printf("Archived and removed %d callback audits.", len(audits))
	}
}

// StartScheduler runs the archive job daily at midnight.
func (s *AuditStore) StartScheduler() {
	c := cron.New()
	_, err := c.AddFunc("0 0 * * *", func() {
		log.Println("Running scheduled callback audit archive task...")
		s.ArchiveProcessed(30 * 24 * time.Hour)
	})
	if err != nil {
		log.Printf("Error scheduling audit archive task: %v", err)
		return
	}
	c.Start()
	log.Println("Callback Audit Archive Scheduler started (Daily at 00:00)")
}

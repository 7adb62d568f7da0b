package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"propertypay-service/internal/models"
	"propertypay-service/internal/reconcile"
)

// PaymentStore is the gorm-backed payment repository. Status updates are
// conditional on the current status so a stage that already finished with
// a record can never be overwritten by a slower sibling instance.
type PaymentStore struct {
	DB *gorm.DB
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{DB: db}
}

func (s *PaymentStore) RentPaymentsByStatus(ctx context.Context, status, method string, limit int) ([]models.RentPayment, error) {
	var payments []models.RentPayment
	query := s.DB.WithContext(ctx).Where("status = ?", status)
	if method != "" {
		query = query.Where("payment_method = ?", method)
	}
	err := query.Order("created_at ASC").Limit(limit).Find(&payments).Error
	return payments, err
}

func (s *PaymentStore) UtilityPaymentsByStatus(ctx context.Context, status string, limit int) ([]models.UtilityPayment, error) {
	var payments []models.UtilityPayment
	err := s.DB.WithContext(ctx).Where("status = ?", status).
		Order("created_at ASC").Limit(limit).Find(&payments).Error
	return payments, err
}

func (s *PaymentStore) UncreditedRentPayments(ctx context.Context, limit int) ([]models.RentPayment, error) {
	var payments []models.RentPayment
	err := s.DB.WithContext(ctx).
		Where("status = ? AND credited = ?", models.PaymentSuccessful, false).
		Order("created_at ASC").Limit(limit).Find(&payments).Error
	return payments, err
}

func (s *PaymentStore) UncreditedUtilityPayments(ctx context.Context, limit int) ([]models.UtilityPayment, error) {
	var payments []models.UtilityPayment
	err := s.DB.WithContext(ctx).
		Where("status IN ? AND credited = ?", []string{models.PaymentSuccessful, models.PaymentPendingTokenGeneration}, false).
		Order("created_at ASC").Limit(limit).Find(&payments).Error
	return payments, err
}

func (s *PaymentStore) UtilityPaymentsAwaitingToken(ctx context.Context, limit, maxAttempts int) ([]models.UtilityPayment, error) {
	var payments []models.UtilityPayment
	err := s.DB.WithContext(ctx).
		Where("is_token_generated = ? AND token_attempts < ? AND status IN ?",
			false, maxAttempts, []string{models.PaymentSuccessful, models.PaymentPendingTokenGeneration}).
		Order("created_at ASC").Limit(limit).Find(&payments).Error
	return payments, err
}

func (s *PaymentStore) UpdateRentPaymentStatus(ctx context.Context, u reconcile.StatusUpdate) error {
	return s.updateStatus(ctx, &models.RentPayment{}, u)
}

func (s *PaymentStore) UpdateUtilityPaymentStatus(ctx context.Context, u reconcile.StatusUpdate) error {
	return s.updateStatus(ctx, &models.UtilityPayment{}, u)
}

func (s *PaymentStore) updateStatus(ctx context.Context, model interface{}, u reconcile.StatusUpdate) error {
	if !models.CanTransition(u.From, u.To) {
		return fmt.Errorf("illegal status transition %s -> %s", u.From, u.To)
	}

	updates := map[string]interface{}{
		"status":  u.To,
		"message": u.Message,
	}
	// A vendor transaction id, once set, is never cleared.
	if u.VendorRef != "" {
		updates["vendor_transaction_id"] = u.VendorRef
	}

	tx := s.DB.WithContext(ctx).Model(model).
		Where("transaction_id = ? AND status = ?", u.TransactionID, u.From).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return reconcile.ErrNoTransition
	}
	return nil
}

func (s *PaymentStore) MarkRentPaymentCredited(ctx context.Context, transactionID string) error {
	return s.DB.WithContext(ctx).Model(&models.RentPayment{}).
		Where("transaction_id = ?", transactionID).
		UpdateColumn("credited", true).Error
}

func (s *PaymentStore) MarkUtilityPaymentCredited(ctx context.Context, transactionID string) error {
	return s.DB.WithContext(ctx).Model(&models.UtilityPayment{}).
		Where("transaction_id = ?", transactionID).
		UpdateColumn("credited", true).Error
}

func (s *PaymentStore) StoreUtilityToken(ctx context.Context, transactionID, token string, units float64) error {
	return s.DB.WithContext(ctx).Model(&models.UtilityPayment{}).
		Where("transaction_id = ?", transactionID).
		Updates(map[string]interface{}{
			"token":              token,
			"units":              units,
			"is_token_generated": true,
		}).Error
}

func (s *PaymentStore) BumpTokenAttempts(ctx context.Context, transactionID string) error {
	return s.DB.WithContext(ctx).Model(&models.UtilityPayment{}).
		Where("transaction_id = ?", transactionID).
		UpdateColumn("token_attempts", gorm.Expr("token_attempts + 1")).Error
}

func (s *PaymentStore) RentPaymentByVendorRef(ctx context.Context, vendorRef string) (*models.RentPayment, error) {
	var payment models.RentPayment
	err := s.DB.WithContext(ctx).Where("vendor_transaction_id = ?", vendorRef).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconcile.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentStore) UtilityPaymentByVendorRef(ctx context.Context, vendorRef string) (*models.UtilityPayment, error) {
	var payment models.UtilityPayment
	err := s.DB.WithContext(ctx).Where("vendor_transaction_id = ?", vendorRef).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconcile.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentStore) AttachUtilityVendorDetails(ctx context.Context, transactionID, vendorRef, vendorDate string) error {
	return s.DB.WithContext(ctx).Model(&models.UtilityPayment{}).
		Where("transaction_id = ?", transactionID).
		Updates(map[string]interface{}{
			"vendor_reference": vendorRef,
			"vendor_date":      vendorDate,
		}).Error
}

package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"propertypay-service/internal/models"
	"propertypay-service/internal/reconcile"
)

// LedgerService owns wallet balances. Every balance change goes through
// AddTransaction so the transaction history always explains the balance.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

func (s *LedgerService) WalletByLandlord(ctx context.Context, landlordID int) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.DB.WithContext(ctx).Where("landlord_id = ?", landlordID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconcile.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// WalletForTenant resolves tenant -> property -> landlord, creating a
// zero-balance wallet when the landlord has none yet.
func (s *LedgerService) WalletForTenant(ctx context.Context, tenantID int) (*models.Wallet, error) {
	var tenant models.Tenant
	if err := s.DB.WithContext(ctx).First(&tenant, tenantID).Error; err != nil {
		return nil, fmt.Errorf("tenant %d: %w", tenantID, err)
	}

	var property models.Property
	if err := s.DB.WithContext(ctx).First(&property, tenant.PropertyID).Error; err != nil {
		return nil, fmt.Errorf("property %d: %w", tenant.PropertyID, err)
	}

	wallet, err := s.WalletByLandlord(ctx, property.LandlordID)
	if errors.Is(err, reconcile.ErrWalletNotFound) {
		return s.CreateWallet(ctx, property.LandlordID)
	}
	return wallet, err
}

// WalletByMeter resolves a meter number to its landlord's wallet. Utility
// payments never create wallets, so a missing wallet is an error here.
func (s *LedgerService) WalletByMeter(ctx context.Context, meterNumber string) (*models.Wallet, error) {
	var meter models.Meter
	err := s.DB.WithContext(ctx).Where("meter_number = ?", meterNumber).First(&meter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconcile.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.WalletByLandlord(ctx, meter.LandlordID)
}

func (s *LedgerService) CreateWallet(ctx context.Context, landlordID int) (*models.Wallet, error) {
	wallet := models.Wallet{LandlordID: landlordID, Balance: 0.00}
	if err := s.DB.WithContext(ctx).Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// AddTransaction inserts the ledger entry and applies its signed amount to
// the wallet balance, atomically. Idempotent per transaction id.
func (s *LedgerService) AddTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WalletTransaction{}).
			Where("transaction_id = ?", txn.TransactionID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return reconcile.ErrDuplicateTransaction
		}

		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		return tx.Model(&models.Wallet{}).Where("id = ?", txn.WalletID).
			UpdateColumn("balance", gorm.Expr("balance + ?", txn.Amount)).Error
	})
}

func (s *LedgerService) TransactionsByStatus(ctx context.Context, status string, limit int) ([]models.WalletTransaction, error) {
	var txns []models.WalletTransaction
	err := s.DB.WithContext(ctx).Where("status = ?", status).
		Order("created_at ASC").Limit(limit).Find(&txns).Error
	return txns, err
}

func (s *LedgerService) TransactionExists(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.WalletTransaction{}).
		Where("transaction_id = ?", transactionID).Count(&count).Error
	return count > 0, err
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return s.DB.WithContext(ctx).Model(txn).Updates(map[string]interface{}{
		"status":           txn.Status,
		"description":      txn.Description,
		"vendor_reference": txn.VendorReference,
	}).Error
}

// ReverseTransaction writes a compensating entry that restores the debited
// balance. The reversed flag is flipped with a conditional write so the
// same transaction can never be reversed twice.
func (s *LedgerService) ReverseTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.WalletTransaction{}).
			Where("id = ? AND reversed = ?", txn.ID, false).
			UpdateColumn("reversed", true)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return reconcile.ErrAlreadyReversed
		}

		reversal := models.WalletTransaction{
			WalletID:      txn.WalletID,
			Amount:        -txn.Amount,
			Description:   fmt.Sprintf("Reversal of %s", txn.TransactionID),
			TransactionID: txn.TransactionID + "-REV",
			Status:        models.TxnSuccessful,
		}
		if err := tx.Create(&reversal).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Wallet{}).Where("id = ?", txn.WalletID).
			UpdateColumn("balance", gorm.Expr("balance + ?", reversal.Amount)).Error; err != nil {
			return err
		}

		txn.Reversed = true
		return nil
	})
}

func (s *LedgerService) BumpPayoutAttempts(ctx context.Context, id int) error {
	return s.DB.WithContext(ctx).Model(&models.WalletTransaction{}).
		Where("id = ?", id).
		UpdateColumn("payout_attempts", gorm.Expr("payout_attempts + 1")).Error
}

func (s *LedgerService) PayoutAccountByWallet(ctx context.Context, walletID int) (*models.PayoutAccount, error) {
	var wallet models.Wallet
	if err := s.DB.WithContext(ctx).First(&wallet, walletID).Error; err != nil {
		return nil, err
	}

	var account models.PayoutAccount
	err := s.DB.WithContext(ctx).Where("landlord_id = ?", wallet.LandlordID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconcile.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// TransactionsForLandlord returns a page of a landlord's ledger history,
// newest first, with the total count for pagination.
func (s *LedgerService) TransactionsForLandlord(ctx context.Context, landlordID, page, limit int) ([]models.WalletTransaction, int64, error) {
	wallet, err := s.WalletByLandlord(ctx, landlordID)
	if err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}

	query := s.DB.WithContext(ctx).Model(&models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.WalletTransaction
	err = query.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&txns).Error
	return txns, total, err
}

package consumers

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"propertypay-service/internal/models"
	"propertypay-service/internal/reconcile"
)

// WithdrawalJob is the payload of a queued landlord withdrawal request.
type WithdrawalJob struct {
	LandlordID int     `json:"landlordId"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
	Code       string  `json:"code"`
}

// LedgerStore is the slice of the ledger the processor needs.
type LedgerStore interface {
	WalletByLandlord(ctx context.Context, landlordID int) (*models.Wallet, error)
	AddTransaction(ctx context.Context, txn *models.WalletTransaction) error
}

// WithdrawalProcessor debits the wallet and records the pending payout
// entry the payout worker later settles against the gateway.
type WithdrawalProcessor struct {
	Ledger LedgerStore
	Log    *logrus.Entry
}

func NewWithdrawalProcessor(ledger LedgerStore, log *logrus.Entry) *WithdrawalProcessor {
	return &WithdrawalProcessor{Ledger: ledger, Log: log}
}

func (p *WithdrawalProcessor) ProcessWithdrawal(ctx context.Context, job WithdrawalJob) error {
	log := p.Log.WithField("code", job.Code)

	wallet, err := p.Ledger.WalletByLandlord(ctx, job.LandlordID)
	if err != nil {
		return err
	}

	// The handler checked the balance, but it may have moved since.
	if wallet.Balance < job.Amount {
		log.WithField("landlordId", job.LandlordID).Warn("insufficient balance at processing time, dropping withdrawal")
		return nil
	}

	status := models.TxnPending
	if job.Method == models.MethodBank {
		status = models.TxnPendingBankPayout
	}

	txn := &models.WalletTransaction{
		WalletID:      wallet.ID,
		Amount:        -job.Amount,
		Description:   "Withdrawal request",
		TransactionID: job.Code,
		Status:        status,
	}
	if err := p.Ledger.AddTransaction(ctx, txn); err != nil {
		if errors.Is(err, reconcile.ErrDuplicateTransaction) {
			log.Warn("withdrawal already queued, skipping")
			return nil
		}
		return err
	}

	log.WithField("amount", job.Amount).Info("withdrawal queued for payout")
	return nil
}

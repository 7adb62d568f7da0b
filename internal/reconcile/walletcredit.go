package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"propertypay-service/internal/models"
)

// WalletCreditWorker credits successful payments to landlord wallets,
// exactly once per payment. Uncredited records are selected via the
// explicit credited marker, never via the status field alone.
type WalletCreditWorker struct {
	Payments PaymentStore
	Ledger   Ledger
	Cfg      Config
	Log      *logrus.Entry
}

func (w *WalletCreditWorker) Name() string { return "wallet-credit" }

func (w *WalletCreditWorker) RunOnce(ctx context.Context) {
	rents, err := w.Payments.UncreditedRentPayments(ctx, w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching uncredited rent payments failed")
	}
	for _, p := range rents {
		w.creditRent(ctx, p)
	}

	utilities, err := w.Payments.UncreditedUtilityPayments(ctx, w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching uncredited utility payments failed")
	}
	for _, p := range utilities {
		w.creditUtility(ctx, p)
	}
}

func (w *WalletCreditWorker) creditRent(ctx context.Context, p models.RentPayment) {
	log := w.Log.WithField("transactionId", p.TransactionID)

	wallet, err := w.Ledger.WalletForTenant(ctx, p.TenantID)
	if err != nil {
		log.WithError(err).Error("resolving wallet for tenant failed")
		return
	}

	txn := &models.WalletTransaction{
		WalletID:      wallet.ID,
		Amount:        p.Amount,
		Description:   fmt.Sprintf("Rent payment %s from tenant %d", p.TransactionID, p.TenantID),
		TransactionID: p.TransactionID,
		Status:        models.TxnSuccessful,
	}
	if err := w.Ledger.AddTransaction(ctx, txn); err != nil && !errors.Is(err, ErrDuplicateTransaction) {
		log.WithError(err).Error("crediting rent payment failed")
		return
	}

	if err := w.Payments.MarkRentPaymentCredited(ctx, p.TransactionID); err != nil {
		log.WithError(err).Error("marking rent payment credited failed")
	}
}

func (w *WalletCreditWorker) creditUtility(ctx context.Context, p models.UtilityPayment) {
	log := w.Log.WithField("transactionId", p.TransactionID)

	wallet, err := w.Ledger.WalletByMeter(ctx, p.MeterNumber)
	if errors.Is(err, ErrWalletNotFound) {
		// Utility payments never create wallets. The record stays
		// uncredited and is re-examined next cycle in case a wallet
		// shows up later.
		log.WithField("meterNumber", p.MeterNumber).Warn("no wallet for meter, skipping credit")
		return
	}
	if err != nil {
		log.WithError(err).Error("resolving wallet for meter failed")
		return
	}

	txn := &models.WalletTransaction{
		WalletID:      wallet.ID,
		Amount:        p.Amount,
		Description:   fmt.Sprintf("Utility payment %s for meter %s", p.TransactionID, p.MeterNumber),
		TransactionID: p.TransactionID,
		Status:        models.TxnSuccessful,
	}
	if err := w.Ledger.AddTransaction(ctx, txn); err != nil && !errors.Is(err, ErrDuplicateTransaction) {
		log.WithError(err).Error("crediting utility payment failed")
		return
	}

	if err := w.Payments.MarkUtilityPaymentCredited(ctx, p.TransactionID); err != nil {
		log.WithError(err).Error("marking utility payment credited failed")
	}
}

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"propertypay-service/internal/gateway"
	"propertypay-service/internal/models"
)

// PayoutWorker settles landlord withdrawal requests: PENDING transactions
// go out as mobile-money payouts, PENDING_BANK_PAYOUT as bank payouts.
// A rejected payout is failed AND reversed, always together.
type PayoutWorker struct {
	Ledger  Ledger
	Gateway GatewayClient
	Cfg     Config
	Log     *logrus.Entry
}

func (w *PayoutWorker) Name() string { return "payout" }

func (w *PayoutWorker) RunOnce(ctx context.Context) {
	momo, err := w.Ledger.TransactionsByStatus(ctx, models.TxnPending, w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching pending mobile payouts failed")
	}
	for _, txn := range momo {
		w.payout(ctx, txn, false)
	}

	bank, err := w.Ledger.TransactionsByStatus(ctx, models.TxnPendingBankPayout, w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching pending bank payouts failed")
	}
	for _, txn := range bank {
		w.payout(ctx, txn, true)
	}
}

func (w *PayoutWorker) payout(ctx context.Context, txn models.WalletTransaction, bank bool) {
	log := w.Log.WithField("transactionId", txn.TransactionID)

	// Withdrawal entries are stored as negative amounts.
	amount := math.Abs(txn.Amount)

	account, err := w.Ledger.PayoutAccountByWallet(ctx, txn.WalletID)
	if err != nil {
		log.WithError(err).Error("resolving payout account failed")
		return
	}

	var raw string
	if bank {
		raw, err = w.Gateway.InitiateBankPayout(ctx, gateway.BankPayoutRequest{
			BankName:      account.BankName,
			SwiftCode:     account.SwiftCode,
			AccountNumber: account.AccountNumber,
			AccountName:   account.AccountName,
			Amount:        amount,
			Reference:     txn.TransactionID,
		})
	} else {
		raw, err = w.Gateway.InitiatePayout(ctx, gateway.PayoutRequest{
			PhoneNumber: account.PhoneNumber,
			Amount:      amount,
			Reference:   txn.TransactionID,
		})
	}
	if err != nil {
		log.WithError(err).Error("payout call failed")
		return
	}

	resp, outcome := gateway.ParsePayout(raw)
	if outcome != gateway.OutcomeParsed {
		// No usable answer; retry next cycle, bounded.
		if txn.PayoutAttempts+1 >= w.Cfg.MaxPayoutAttempts {
			w.fail(ctx, txn, fmt.Sprintf("No payout response from Collecto after %d attempts", txn.PayoutAttempts+1))
			return
		}
		if err := w.Ledger.BumpPayoutAttempts(ctx, txn.ID); err != nil {
			log.WithError(err).Error("bumping payout attempts failed")
		}
		return
	}

	if !resp.Payout {
		w.fail(ctx, txn, resp.Message)
		return
	}

	if bank {
		txn.Status = models.TxnPendingAtTheBank
	} else {
		txn.Status = models.TxnPendingAtTelecom
	}
	txn.VendorReference = resp.TransactionID
	if err := w.Ledger.UpdateTransaction(ctx, &txn); err != nil {
		log.WithError(err).Error("updating payout transaction failed")
	}
}

// fail reverses the transaction and marks it FAILED. The reversal comes
// first: a FAILED transaction is never re-selected, so marking it before
// the reversal lands would strand an unreversed debit if the reversal
// errors. Left PENDING, the transaction re-enters here next cycle and the
// idempotent reversal converges the pair.
func (w *PayoutWorker) fail(ctx context.Context, txn models.WalletTransaction, message string) {
	log := w.Log.WithField("transactionId", txn.TransactionID)

	if err := w.Ledger.ReverseTransaction(ctx, &txn); err != nil && !errors.Is(err, ErrAlreadyReversed) {
		log.WithError(err).Error("reversing payout transaction failed")
		return
	}

	txn.Status = models.TxnFailed
	txn.Description = message
	if err := w.Ledger.UpdateTransaction(ctx, &txn); err != nil {
		log.WithError(err).Error("marking payout failed failed")
	}
}

package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"propertypay-service/internal/gateway"
	"propertypay-service/internal/models"
)

// CallbackWorker drains the inbound webhook audit queue, oldest first.
// Unmatched payloads are marked processed (and logged loudly) so one bad
// callback can never wedge the queue; a store failure on a specific audit
// leaves it unprocessed and it is retried next cycle.
type CallbackWorker struct {
	Audits   AuditStore
	Payments PaymentStore
	Ledger   Ledger
	Cfg      Config
	Log      *logrus.Entry
}

func (w *CallbackWorker) Name() string { return "callback-ingestion" }

func (w *CallbackWorker) RunOnce(ctx context.Context) {
	audits, err := w.Audits.UnprocessedAudits(ctx, w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching unprocessed audits failed")
		return
	}

	for _, audit := range audits {
		if err := w.ingest(ctx, audit); err != nil {
			w.Log.WithError(err).WithField("auditId", audit.ID).Error("audit ingestion failed, leaving for retry")
			continue
		}
		if err := w.Audits.MarkProcessed(ctx, audit.ID); err != nil {
			w.Log.WithError(err).WithField("auditId", audit.ID).Error("marking audit processed failed")
		}
	}
}

func (w *CallbackWorker) ingest(ctx context.Context, audit models.CallbackAudit) error {
	var cb gateway.CollectoCallback
	if err := json.Unmarshal([]byte(audit.Payload), &cb); err != nil || cb.ThirdPartyTransID == "" {
		w.Log.WithFields(logrus.Fields{
			"auditId": audit.ID,
			"payload": audit.Payload,
		}).Error("unmatched callback payload, dropping")
		return nil
	}

	utility, err := w.Payments.UtilityPaymentByVendorRef(ctx, cb.ThirdPartyTransID)
	if err == nil {
		return w.ingestUtility(ctx, utility, cb)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	rent, err := w.Payments.RentPaymentByVendorRef(ctx, cb.ThirdPartyTransID)
	if err == nil {
		return w.ingestRent(ctx, rent)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	w.Log.WithFields(logrus.Fields{
		"auditId":           audit.ID,
		"thirdPartyTransId": cb.ThirdPartyTransID,
	}).Error("callback matches no known payment, dropping")
	return nil
}

func (w *CallbackWorker) ingestUtility(ctx context.Context, p *models.UtilityPayment, cb gateway.CollectoCallback) error {
	err := w.Payments.UpdateUtilityPaymentStatus(ctx, StatusUpdate{
		TransactionID: p.TransactionID,
		From:          models.PaymentPendingAtGateway,
		To:            models.PaymentSuccessful,
		Message:       "Confirmed via gateway callback",
	})
	if err != nil && !errors.Is(err, ErrNoTransition) {
		return err
	}

	if err := w.Payments.AttachUtilityVendorDetails(ctx, p.TransactionID, cb.TransID, cb.TransTime); err != nil {
		return err
	}

	// Best-effort credit; failure here must not block the audit.
	w.creditUtility(ctx, p)
	return nil
}

func (w *CallbackWorker) creditUtility(ctx context.Context, p *models.UtilityPayment) {
	log := w.Log.WithField("transactionId", p.TransactionID)

	wallet, err := w.Ledger.WalletByMeter(ctx, p.MeterNumber)
	if err != nil {
		log.WithError(err).Warn("callback credit skipped")
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
		log.WithError(err).Error("callback credit failed")
		return
	}
	if err := w.Payments.MarkUtilityPaymentCredited(ctx, p.TransactionID); err != nil {
		log.WithError(err).Error("marking utility payment credited failed")
	}
}

func (w *CallbackWorker) ingestRent(ctx context.Context, p *models.RentPayment) error {
	err := w.Payments.UpdateRentPaymentStatus(ctx, StatusUpdate{
		TransactionID: p.TransactionID,
		From:          models.PaymentPendingAtGateway,
		To:            models.PaymentSuccessful,
		Message:       "Confirmed via gateway callback",
	})
	if err != nil && !errors.Is(err, ErrNoTransition) {
		return err
	}
	return nil
}

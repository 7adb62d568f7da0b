package reconcile

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"propertypay-service/internal/gateway"
	"propertypay-service/internal/models"
)

// StatusPollWorker asks Collecto what happened to payments it accepted.
// A vendor status of PENDING leaves the record for the next cycle;
// anything else resolves it to SUCCESSFUL or FAILED.
type StatusPollWorker struct {
	Payments PaymentStore
	Gateway  GatewayClient
	Cfg      Config
	Log      *logrus.Entry
}

func (w *StatusPollWorker) Name() string { return "status-poll" }

func (w *StatusPollWorker) RunOnce(ctx context.Context) {
	var refs []paymentRef

	rents, err := w.Payments.RentPaymentsByStatus(ctx, models.PaymentPendingAtGateway, "", w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching rent payments pending at gateway failed")
	}
	for _, p := range rents {
		refs = append(refs, paymentRef{
			Kind:                kindRent,
			TransactionID:       p.TransactionID,
			VendorTransactionID: p.VendorTransactionID,
		})
	}

	utilities, err := w.Payments.UtilityPaymentsByStatus(ctx, models.PaymentPendingAtGateway, w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching utility payments pending at gateway failed")
	}
	for _, p := range utilities {
		refs = append(refs, paymentRef{
			Kind:                kindUtility,
			TransactionID:       p.TransactionID,
			VendorTransactionID: p.VendorTransactionID,
		})
	}

	fanOut(ctx, w.Cfg.StatusPool, refs, w.poll)
}

func (w *StatusPollWorker) poll(ctx context.Context, ref paymentRef) {
	log := w.Log.WithField("transactionId", ref.TransactionID)

	raw, err := w.Gateway.GetRequestToPayStatus(ctx, ref.VendorTransactionID)
	if err != nil {
		log.WithError(err).Error("status check failed")
		return
	}

	resp, outcome := gateway.ParseStatus(raw)
	switch {
	case outcome != gateway.OutcomeParsed:
		w.updateStatus(ctx, ref, StatusUpdate{
			From:    models.PaymentPendingAtGateway,
			To:      models.PaymentFailed,
			Message: "No response from Collecto",
		})
	case !resp.Success:
		w.updateStatus(ctx, ref, StatusUpdate{
			From:    models.PaymentPendingAtGateway,
			To:      models.PaymentFailed,
			Message: resp.Message,
		})
	case strings.EqualFold(resp.Status, models.PaymentPending):
		// Still processing at the gateway; poll again next cycle.
	case strings.EqualFold(resp.Status, models.PaymentSuccessful):
		w.updateStatus(ctx, ref, StatusUpdate{
			From:      models.PaymentPendingAtGateway,
			To:        models.PaymentSuccessful,
			Message:   resp.Message,
			VendorRef: resp.TransactionID,
		})
	default:
		w.updateStatus(ctx, ref, StatusUpdate{
			From:      models.PaymentPendingAtGateway,
			To:        models.PaymentFailed,
			Message:   resp.Message,
			VendorRef: resp.TransactionID,
		})
	}
}

func (w *StatusPollWorker) updateStatus(ctx context.Context, ref paymentRef, u StatusUpdate) {
	u.TransactionID = ref.TransactionID
	if err := applyStatusUpdate(ctx, w.Payments, ref.Kind, u); err != nil {
		w.Log.WithError(err).WithField("transactionId", ref.TransactionID).Error("status update failed")
	}
}

package reconcile

import (
	"context"

	"github.com/sirupsen/logrus"

	"propertypay-service/internal/gateway"
	"propertypay-service/internal/models"
)

const (
	kindRent    = "rent"
	kindUtility = "utility"
)

// paymentRef carries the fields the gateway-facing workers need from either
// payment kind.
type paymentRef struct {
	Kind                string
	TransactionID       string
	VendorTransactionID string
	PhoneNumber         string
	Amount              float64
}

// InitiationWorker picks up freshly created PENDING payments and sends the
// request-to-pay to Collecto. Only MOMO rent payments are gateway-driven;
// utility payments always are.
type InitiationWorker struct {
	Payments PaymentStore
	Gateway  GatewayClient
	Cfg      Config
	Log      *logrus.Entry
}

func (w *InitiationWorker) Name() string { return "payment-initiation" }

func (w *InitiationWorker) RunOnce(ctx context.Context) {
	var refs []paymentRef

	rents, err := w.Payments.RentPaymentsByStatus(ctx, models.PaymentPending, models.MethodMomo, w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching pending rent payments failed")
	}
	for _, p := range rents {
		refs = append(refs, paymentRef{
			Kind:          kindRent,
			TransactionID: p.TransactionID,
			PhoneNumber:   p.PhoneNumber,
			Amount:        p.Amount,
		})
	}

	utilities, err := w.Payments.UtilityPaymentsByStatus(ctx, models.PaymentPending, w.Cfg.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("fetching pending utility payments failed")
	}
	for _, p := range utilities {
		refs = append(refs, paymentRef{
			Kind:          kindUtility,
			TransactionID: p.TransactionID,
			PhoneNumber:   p.PhoneNumber,
			Amount:        p.Amount,
		})
	}

	fanOut(ctx, w.Cfg.InitiationPool, refs, w.initiate)
}

func (w *InitiationWorker) initiate(ctx context.Context, ref paymentRef) {
	log := w.Log.WithField("transactionId", ref.TransactionID)

	raw, err := w.Gateway.RequestToPay(ctx, gateway.RequestToPayRequest{
		PhoneNumber: ref.PhoneNumber,
		Amount:      ref.Amount,
		Reference:   ref.TransactionID,
	})
	if err != nil {
		// Transport failure: leave the record PENDING for the next cycle.
		log.WithError(err).Error("request to pay failed")
		return
	}

	resp, outcome := gateway.ParseRequestToPay(raw)
	switch {
	case outcome != gateway.OutcomeParsed:
		w.updateStatus(ctx, ref, StatusUpdate{
			From:    models.PaymentPending,
			To:      models.PaymentFailed,
			Message: "Empty response from Collecto",
		})
	case resp.Status:
		w.updateStatus(ctx, ref, StatusUpdate{
			From:      models.PaymentPending,
			To:        models.PaymentPendingAtGateway,
			Message:   resp.Message,
			VendorRef: resp.TransactionID,
		})
	default:
		msg := resp.Message
		if msg == "" {
			msg = "Unknown error"
		}
		w.updateStatus(ctx, ref, StatusUpdate{
			From:    models.PaymentPending,
			To:      models.PaymentFailed,
			Message: msg,
		})
	}
}

func (w *InitiationWorker) updateStatus(ctx context.Context, ref paymentRef, u StatusUpdate) {
	u.TransactionID = ref.TransactionID
	if err := applyStatusUpdate(ctx, w.Payments, ref.Kind, u); err != nil {
		w.Log.WithError(err).WithField("transactionId", ref.TransactionID).Error("status update failed")
	}
}

func applyStatusUpdate(ctx context.Context, store PaymentStore, kind string, u StatusUpdate) error {
	if kind == kindUtility {
		return store.UpdateUtilityPaymentStatus(ctx, u)
	}
	return store.UpdateRentPaymentStatus(ctx, u)
}

package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertypay-service/internal/models"
)

func pendingWithdrawal(ledger *fakeLedger, transactionID string, amount float64, status string) *models.Wallet {
	wallet := ledger.addWallet(1, 100000)
	ledger.accounts[wallet.ID] = &models.PayoutAccount{
		LandlordID:    wallet.LandlordID,
		PhoneNumber:   "256700000001",
		BankName:      "Stanbic",
		SwiftCode:     "SBICUGKX",
		AccountNumber: "9030001234567",
		AccountName:   "J. Okello",
	}
	txn := &models.WalletTransaction{
		WalletID:      wallet.ID,
		Amount:        -amount,
		Description:   "Withdrawal request",
		TransactionID: transactionID,
		Status:        status,
	}
	if err := ledger.AddTransaction(context.Background(), txn); err != nil {
		panic(err)
	}
	return wallet
}

func TestPayoutMobileMoneyAccepted(t *testing.T) {
	ledger := newFakeLedger()
	pendingWithdrawal(ledger, "WD1", 40000, models.TxnPending)

	gw := &fakeGateway{
		payoutBody: `{"payout":true,"message":"Payout accepted","transactionId":"COLL-P1"}`,
	}

	w := &PayoutWorker{Ledger: ledger, Gateway: gw, Cfg: DefaultConfig(), Log: testLog()}
	w.RunOnce(context.Background())

	txn := ledger.txn("WD1")
	assert.Equal(t, models.TxnPendingAtTelecom, txn.Status)
	assert.Equal(t, "COLL-P1", txn.VendorReference)
	require.Len(t, gw.payoutCalls, 1)
	assert.Equal(t, 40000.0, gw.payoutCalls[0].Amount)
	assert.Equal(t, "256700000001", gw.payoutCalls[0].PhoneNumber)
}

func TestPayoutBankAccepted(t *testing.T) {
	ledger := newFakeLedger()
	pendingWithdrawal(ledger, "WD2", 75000, models.TxnPendingBankPayout)

	gw := &fakeGateway{
		bankPayoutBody: `{"payout":true,"message":"Queued","transactionId":"COLL-B1"}`,
	}

	w := &PayoutWorker{Ledger: ledger, Gateway: gw, Cfg: DefaultConfig(), Log: testLog()}
	w.RunOnce(context.Background())

	txn := ledger.txn("WD2")
	assert.Equal(t, models.TxnPendingAtTheBank, txn.Status)
	assert.Equal(t, "COLL-B1", txn.VendorReference)
	require.Len(t, gw.bankPayoutCalls, 1)
	assert.Equal(t, "SBICUGKX", gw.bankPayoutCalls[0].SwiftCode)
	assert.Equal(t, 75000.0, gw.bankPayoutCalls[0].Amount)
}

func TestPayoutRejectionFailsAndReverses(t *testing.T) {
	ledger := newFakeLedger()
	wallet := pendingWithdrawal(ledger, "WD3", 30000, models.TxnPending)
	balanceAfterDebit := ledger.wallet(wallet.ID).Balance

	gw := &fakeGateway{
		payoutBody: `{"payout":false,"message":"Recipient barred"}`,
	}

	w := &PayoutWorker{Ledger: ledger, Gateway: gw, Cfg: DefaultConfig(), Log: testLog()}
	w.RunOnce(context.Background())

	txn := ledger.txn("WD3")
	assert.Equal(t, models.TxnFailed, txn.Status)
	assert.Equal(t, "Recipient barred", txn.Description)
	assert.True(t, txn.Reversed)

	rev := ledger.txn("WD3-REV")
	require.NotNil(t, rev, "reversal entry must exist")
	assert.Equal(t, 30000.0, rev.Amount)
	assert.Equal(t, balanceAfterDebit+30000, ledger.wallet(wallet.ID).Balance)
}

func TestPayoutReversalIsIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	wallet := pendingWithdrawal(ledger, "WD4", 20000, models.TxnPending)

	gw := &fakeGateway{payoutBody: `{"payout":false,"message":"Rejected"}`}

	w := &PayoutWorker{Ledger: ledger, Gateway: gw, Cfg: DefaultConfig(), Log: testLog()}
	w.RunOnce(context.Background())
	balance := ledger.wallet(wallet.ID).Balance

	// Force a second failure pass over the same transaction.
	txn := ledger.txn("WD4")
	w.fail(context.Background(), *txn, "Rejected")

	assert.Equal(t, balance, ledger.wallet(wallet.ID).Balance)
	rev := ledger.txn("WD4-REV")
	require.NotNil(t, rev)
}

func TestPayoutNoResponseRetriesBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPayoutAttempts = 2

	ledger := newFakeLedger()
	wallet := pendingWithdrawal(ledger, "WD5", 10000, models.TxnPending)

	gw := &fakeGateway{payoutBody: ""}

	w := &PayoutWorker{Ledger: ledger, Gateway: gw, Cfg: cfg, Log: testLog()}

	w.RunOnce(context.Background())
	txn := ledger.txn("WD5")
	assert.Equal(t, models.TxnPending, txn.Status)
	assert.Equal(t, 1, txn.PayoutAttempts)

	// Second empty response exhausts the budget: fail and reverse.
	w.RunOnce(context.Background())
	txn = ledger.txn("WD5")
	assert.Equal(t, models.TxnFailed, txn.Status)
	assert.True(t, txn.Reversed)
	assert.Equal(t, 100000.0, ledger.wallet(wallet.ID).Balance)
}

// flakyReversalLedger fails a set number of reversal attempts before
// letting them through.
type flakyReversalLedger struct {
	*fakeLedger
	reverseFailures int
}

func (f *flakyReversalLedger) ReverseTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	if f.reverseFailures > 0 {
		f.reverseFailures--
		return assert.AnError
	}
	return f.fakeLedger.ReverseTransaction(ctx, txn)
}

func TestPayoutReversalErrorLeavesPendingUntilReversed(t *testing.T) {
	inner := newFakeLedger()
	wallet := pendingWithdrawal(inner, "WD7", 30000, models.TxnPending)
	ledger := &flakyReversalLedger{fakeLedger: inner, reverseFailures: 1}

	gw := &fakeGateway{payoutBody: `{"payout":false,"message":"Recipient barred"}`}

	w := &PayoutWorker{Ledger: ledger, Gateway: gw, Cfg: DefaultConfig(), Log: testLog()}

	// First pass: the reversal errors, so the transaction must stay
	// PENDING rather than land FAILED with the debit still applied.
	w.RunOnce(context.Background())
	txn := inner.txn("WD7")
	assert.Equal(t, models.TxnPending, txn.Status)
	assert.False(t, txn.Reversed)
	assert.Nil(t, inner.txn("WD7-REV"))
	assert.Equal(t, 70000.0, inner.wallet(wallet.ID).Balance)

	// Second pass re-selects it, the reversal now lands, and the pair
	// converges: FAILED with the compensating entry and balance restored.
	w.RunOnce(context.Background())
	txn = inner.txn("WD7")
	assert.Equal(t, models.TxnFailed, txn.Status)
	assert.True(t, txn.Reversed)
	require.NotNil(t, inner.txn("WD7-REV"))
	assert.Equal(t, 100000.0, inner.wallet(wallet.ID).Balance)
}

func TestPayoutTransportErrorLeavesPending(t *testing.T) {
	ledger := newFakeLedger()
	pendingWithdrawal(ledger, "WD6", 5000, models.TxnPending)

	gw := &fakeGateway{
		errByReference: map[string]error{"WD6": assert.AnError},
	}

	w := &PayoutWorker{Ledger: ledger, Gateway: gw, Cfg: DefaultConfig(), Log: testLog()}
	w.RunOnce(context.Background())

	txn := ledger.txn("WD6")
	assert.Equal(t, models.TxnPending, txn.Status)
	assert.Equal(t, 0, txn.PayoutAttempts)
	assert.False(t, txn.Reversed)
}

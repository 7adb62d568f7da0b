package reconcile

import (
	"context"
	"errors"

	"propertypay-service/internal/gateway"
	"propertypay-service/internal/models"
)

var (
	// ErrWalletNotFound means no wallet exists for the requested owner.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrDuplicateTransaction means a ledger entry with the same
	// transaction id already exists; the caller's credit was a no-op.
	ErrDuplicateTransaction = errors.New("duplicate wallet transaction")
	// ErrAlreadyReversed means the transaction has already been reversed.
	ErrAlreadyReversed = errors.New("transaction already reversed")
	// ErrNoTransition means a conditional status update matched no row:
	// either the record is gone or another worker moved it first.
	ErrNoTransition = errors.New("no matching record for status transition")
	// ErrNotFound is the generic missing-record error.
	ErrNotFound = errors.New("record not found")
)

// StatusUpdate is a conditional payment status change: the write only
// applies while the record still holds the From status, so a record each
// stage has finished with can never move backwards.
type StatusUpdate struct {
	TransactionID string
	From          string
	To            string
	Message       string
	VendorRef     string
}

// PaymentStore is the payment repository as seen by the workers.
type PaymentStore interface {
	RentPaymentsByStatus(ctx context.Context, status, method string, limit int) ([]models.RentPayment, error)
	UtilityPaymentsByStatus(ctx context.Context, status string, limit int) ([]models.UtilityPayment, error)
	UncreditedRentPayments(ctx context.Context, limit int) ([]models.RentPayment, error)
	UncreditedUtilityPayments(ctx context.Context, limit int) ([]models.UtilityPayment, error)
	UtilityPaymentsAwaitingToken(ctx context.Context, limit, maxAttempts int) ([]models.UtilityPayment, error)
	UpdateRentPaymentStatus(ctx context.Context, u StatusUpdate) error
	UpdateUtilityPaymentStatus(ctx context.Context, u StatusUpdate) error
	MarkRentPaymentCredited(ctx context.Context, transactionID string) error
	MarkUtilityPaymentCredited(ctx context.Context, transactionID string) error
	StoreUtilityToken(ctx context.Context, transactionID, token string, units float64) error
	BumpTokenAttempts(ctx context.Context, transactionID string) error
	RentPaymentByVendorRef(ctx context.Context, vendorRef string) (*models.RentPayment, error)
	UtilityPaymentByVendorRef(ctx context.Context, vendorRef string) (*models.UtilityPayment, error)
	AttachUtilityVendorDetails(ctx context.Context, transactionID, vendorRef, vendorDate string) error
}

// Ledger applies credits, debits and reversals to wallet balances.
type Ledger interface {
	// WalletForTenant resolves tenant -> property -> landlord and creates
	// a zero-balance wallet when the landlord has none yet.
	WalletForTenant(ctx context.Context, tenantID int) (*models.Wallet, error)
	WalletByMeter(ctx context.Context, meterNumber string) (*models.Wallet, error)
	// AddTransaction inserts the entry and applies its signed amount to
	// the wallet balance. Returns ErrDuplicateTransaction when an entry
	// with the same transaction id already exists.
	AddTransaction(ctx context.Context, txn *models.WalletTransaction) error
	TransactionsByStatus(ctx context.Context, status string, limit int) ([]models.WalletTransaction, error)
	UpdateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	// ReverseTransaction writes a compensating entry restoring the debited
	// balance. Returns ErrAlreadyReversed on a second attempt.
	ReverseTransaction(ctx context.Context, txn *models.WalletTransaction) error
	BumpPayoutAttempts(ctx context.Context, id int) error
	PayoutAccountByWallet(ctx context.Context, walletID int) (*models.PayoutAccount, error)
}

// AuditStore reads the inbound callback audit queue.
type AuditStore interface {
	UnprocessedAudits(ctx context.Context, limit int) ([]models.CallbackAudit, error)
	MarkProcessed(ctx context.Context, id int) error
}

// GatewayClient is the Collecto adapter as seen by the workers.
type GatewayClient interface {
	RequestToPay(ctx context.Context, req gateway.RequestToPayRequest) (string, error)
	GetRequestToPayStatus(ctx context.Context, vendorTransactionID string) (string, error)
	InitiatePayout(ctx context.Context, req gateway.PayoutRequest) (string, error)
	InitiateBankPayout(ctx context.Context, req gateway.BankPayoutRequest) (string, error)
}

// TokenVendor is the prepaid-token vendor adapter as seen by the workers.
type TokenVendor interface {
	Purchase(ctx context.Context, meterNumber string, amount float64) (*gateway.VendResponse, error)
}

package models

// Payment record statuses. Transitions are monotonic: once a record
// reaches SUCCESSFUL or FAILED the status field never moves backwards.
const (
	PaymentPending          = "PENDING"
	PaymentPendingAtGateway = "PENDING_AT_GATEWAY"
	PaymentSuccessful       = "SUCCESSFUL"
	PaymentFailed           = "FAILED"
	// Utility payments only: successful payment awaiting a prepaid token.
	PaymentPendingTokenGeneration = "PENDING_TOKEN_GENERATION"
)

// Wallet transaction statuses.
const (
	TxnPending           = "PENDING"
	TxnPendingBankPayout = "PENDING_BANK_PAYOUT"
	TxnPendingAtTelecom  = "PENDING_AT_TELECOM"
	TxnPendingAtTheBank  = "PENDING_AT_THE_BANK"
	TxnSuccessful        = "SUCCESSFUL"
	TxnFailed            = "FAILED"
)

// Payment methods. Only MOMO payments are gateway-driven.
const (
	MethodMomo = "MOMO"
	MethodCash = "CASH"
	MethodBank = "BANK"
)

var paymentTransitions = map[string][]string{
	PaymentPending:          {PaymentPendingAtGateway, PaymentFailed},
	PaymentPendingAtGateway: {PaymentSuccessful, PaymentFailed},
	PaymentSuccessful:       {PaymentPendingTokenGeneration},
}

// CanTransition reports whether a payment status move is allowed.
func CanTransition(from, to string) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

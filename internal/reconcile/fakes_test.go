package reconcile

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"propertypay-service/internal/gateway"
	"propertypay-service/internal/models"
)

// The fakes must keep satisfying the worker-facing contracts.
var (
	_ PaymentStore  = (*fakePayments)(nil)
	_ Ledger        = (*fakeLedger)(nil)
	_ AuditStore    = (*fakeAudits)(nil)
	_ GatewayClient = (*fakeGateway)(nil)
	_ TokenVendor   = (*fakeVendor)(nil)
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("service", "test")
}

// fakePayments is an in-memory PaymentStore mirroring the conditional
// status-write semantics of the real one.
type fakePayments struct {
	mu        sync.Mutex
	rents     map[string]*models.RentPayment
	utilities map[string]*models.UtilityPayment
}

func newFakePayments() *fakePayments {
	return &fakePayments{
		rents:     make(map[string]*models.RentPayment),
		utilities: make(map[string]*models.UtilityPayment),
	}
}

func (f *fakePayments) addRent(p models.RentPayment) {
	f.rents[p.TransactionID] = &p
}

func (f *fakePayments) addUtility(p models.UtilityPayment) {
	f.utilities[p.TransactionID] = &p
}

func (f *fakePayments) rent(id string) models.RentPayment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.rents[id]
}

func (f *fakePayments) utility(id string) models.UtilityPayment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.utilities[id]
}

func (f *fakePayments) RentPaymentsByStatus(ctx context.Context, status, method string, limit int) ([]models.RentPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RentPayment
	for _, p := range f.rents {
		if p.Status == status && (method == "" || p.PaymentMethod == method) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) UtilityPaymentsByStatus(ctx context.Context, status string, limit int) ([]models.UtilityPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UtilityPayment
	for _, p := range f.utilities {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) UncreditedRentPayments(ctx context.Context, limit int) ([]models.RentPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RentPayment
	for _, p := range f.rents {
		if p.Status == models.PaymentSuccessful && !p.Credited {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) UncreditedUtilityPayments(ctx context.Context, limit int) ([]models.UtilityPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UtilityPayment
	for _, p := range f.utilities {
		if (p.Status == models.PaymentSuccessful || p.Status == models.PaymentPendingTokenGeneration) && !p.Credited {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) UtilityPaymentsAwaitingToken(ctx context.Context, limit, maxAttempts int) ([]models.UtilityPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UtilityPayment
	for _, p := range f.utilities {
		awaiting := p.Status == models.PaymentSuccessful || p.Status == models.PaymentPendingTokenGeneration
		if awaiting && !p.IsTokenGenerated && p.TokenAttempts < maxAttempts {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) UpdateRentPaymentStatus(ctx context.Context, u StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rents[u.TransactionID]
	if !ok || p.Status != u.From || !models.CanTransition(u.From, u.To) {
		return ErrNoTransition
	}
	p.Status = u.To
	p.Message = u.Message
	if u.VendorRef != "" {
		p.VendorTransactionID = u.VendorRef
	}
	return nil
}

func (f *fakePayments) UpdateUtilityPaymentStatus(ctx context.Context, u StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.utilities[u.TransactionID]
	if !ok || p.Status != u.From || !models.CanTransition(u.From, u.To) {
		return ErrNoTransition
	}
	p.Status = u.To
	p.Message = u.Message
	if u.VendorRef != "" {
		p.VendorTransactionID = u.VendorRef
	}
	return nil
}

func (f *fakePayments) MarkRentPaymentCredited(ctx context.Context, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rents[transactionID]
	if !ok {
		return ErrNotFound
	}
	p.Credited = true
	return nil
}

func (f *fakePayments) MarkUtilityPaymentCredited(ctx context.Context, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.utilities[transactionID]
	if !ok {
		return ErrNotFound
	}
	p.Credited = true
	return nil
}

func (f *fakePayments) StoreUtilityToken(ctx context.Context, transactionID, token string, units float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.utilities[transactionID]
	if !ok {
		return ErrNotFound
	}
	p.Token = token
	p.Units = units
	p.IsTokenGenerated = true
	return nil
}

func (f *fakePayments) BumpTokenAttempts(ctx context.Context, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.utilities[transactionID]
	if !ok {
		return ErrNotFound
	}
	p.TokenAttempts++
	return nil
}

func (f *fakePayments) RentPaymentByVendorRef(ctx context.Context, vendorRef string) (*models.RentPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rents {
		if p.VendorTransactionID == vendorRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakePayments) UtilityPaymentByVendorRef(ctx context.Context, vendorRef string) (*models.UtilityPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.utilities {
		if p.VendorTransactionID == vendorRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakePayments) AttachUtilityVendorDetails(ctx context.Context, transactionID, vendorRef, vendorDate string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.utilities[transactionID]
	if !ok {
		return ErrNotFound
	}
	p.VendorReference = vendorRef
	p.VendorDate = vendorDate
	return nil
}

// fakeLedger is an in-memory Ledger with the same duplicate and reversal
// guarantees as the real one.
type fakeLedger struct {
	mu         sync.Mutex
	wallets    map[int]*models.Wallet
	byLandlord map[int]int
	byMeter    map[string]int
	tenants    map[int]int
	accounts   map[int]*models.PayoutAccount
	txns       map[string]*models.WalletTransaction
	nextID     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		wallets:    make(map[int]*models.Wallet),
		byLandlord: make(map[int]int),
		byMeter:    make(map[string]int),
		tenants:    make(map[int]int),
		accounts:   make(map[int]*models.PayoutAccount),
		txns:       make(map[string]*models.WalletTransaction),
	}
}

func (f *fakeLedger) addWallet(landlordID int, balance float64) *models.Wallet {
	f.nextID++
	w := &models.Wallet{ID: f.nextID, LandlordID: landlordID, Balance: balance}
	f.wallets[w.ID] = w
	f.byLandlord[landlordID] = w.ID
	return w
}

func (f *fakeLedger) wallet(id int) models.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.wallets[id]
}

func (f *fakeLedger) txn(transactionID string) *models.WalletTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txns[transactionID]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

func (f *fakeLedger) txnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.txns)
}

func (f *fakeLedger) WalletByLandlord(ctx context.Context, landlordID int) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byLandlord[landlordID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	cp := *f.wallets[id]
	return &cp, nil
}

func (f *fakeLedger) WalletForTenant(ctx context.Context, tenantID int) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	landlordID, ok := f.tenants[tenantID]
	if !ok {
		return nil, ErrNotFound
	}
	if id, ok := f.byLandlord[landlordID]; ok {
		cp := *f.wallets[id]
		return &cp, nil
	}
	w := f.addWallet(landlordID, 0)
	cp := *w
	return &cp, nil
}

func (f *fakeLedger) WalletByMeter(ctx context.Context, meterNumber string) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byMeter[meterNumber]
	if !ok {
		return nil, ErrWalletNotFound
	}
	cp := *f.wallets[id]
	return &cp, nil
}

func (f *fakeLedger) AddTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.txns[txn.TransactionID]; exists {
		return ErrDuplicateTransaction
	}
	f.nextID++
	txn.ID = f.nextID
	cp := *txn
	f.txns[txn.TransactionID] = &cp
	f.wallets[txn.WalletID].Balance += txn.Amount
	return nil
}

func (f *fakeLedger) TransactionsByStatus(ctx context.Context, status string, limit int) ([]models.WalletTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WalletTransaction
	for _, t := range f.txns {
		if t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeLedger) UpdateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.txns[txn.TransactionID]
	if !ok {
		return ErrNotFound
	}
	*stored = *txn
	return nil
}

func (f *fakeLedger) ReverseTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.txns[txn.TransactionID]
	if !ok {
		return ErrNotFound
	}
	if stored.Reversed {
		return ErrAlreadyReversed
	}
	stored.Reversed = true
	f.nextID++
	rev := &models.WalletTransaction{
		ID:            f.nextID,
		WalletID:      stored.WalletID,
		Amount:        -stored.Amount,
		Description:   fmt.Sprintf("Reversal of %s", stored.TransactionID),
		TransactionID: stored.TransactionID + "-REV",
		Status:        models.TxnSuccessful,
	}
	f.txns[rev.TransactionID] = rev
	f.wallets[rev.WalletID].Balance += rev.Amount
	txn.Reversed = true
	return nil
}

func (f *fakeLedger) BumpPayoutAttempts(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txns {
		if t.ID == id {
			t.PayoutAttempts++
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeLedger) PayoutAccountByWallet(ctx context.Context, walletID int) (*models.PayoutAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[walletID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// fakeAudits is an in-memory AuditStore.
type fakeAudits struct {
	mu     sync.Mutex
	audits []*models.CallbackAudit
}

func (f *fakeAudits) add(id int, payload string) {
	f.audits = append(f.audits, &models.CallbackAudit{ID: id, Source: "collecto", Payload: payload})
}

func (f *fakeAudits) processed(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.audits {
		if a.ID == id {
			return a.Processed
		}
	}
	return false
}

func (f *fakeAudits) UnprocessedAudits(ctx context.Context, limit int) ([]models.CallbackAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CallbackAudit
	for _, a := range f.audits {
		if !a.Processed {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAudits) MarkProcessed(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.audits {
		if a.ID == id {
			a.Processed = true
			return nil
		}
	}
	return ErrNotFound
}

// fakeGateway serves canned raw bodies, with per-reference overrides and
// errors for fault injection.
type fakeGateway struct {
	mu sync.Mutex

	requestToPayBody string
	statusBody       string
	payoutBody       string
	bankPayoutBody   string

	bodyByReference map[string]string
	errByReference  map[string]error

	requestToPayCalls []gateway.RequestToPayRequest
	statusCalls       []string
	payoutCalls       []gateway.PayoutRequest
	bankPayoutCalls   []gateway.BankPayoutRequest
}

func (f *fakeGateway) RequestToPay(ctx context.Context, req gateway.RequestToPayRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestToPayCalls = append(f.requestToPayCalls, req)
	if err, ok := f.errByReference[req.Reference]; ok {
		return "", err
	}
	if body, ok := f.bodyByReference[req.Reference]; ok {
		return body, nil
	}
	return f.requestToPayBody, nil
}

func (f *fakeGateway) GetRequestToPayStatus(ctx context.Context, vendorTransactionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, vendorTransactionID)
	if err, ok := f.errByReference[vendorTransactionID]; ok {
		return "", err
	}
	if body, ok := f.bodyByReference[vendorTransactionID]; ok {
		return body, nil
	}
	return f.statusBody, nil
}

func (f *fakeGateway) InitiatePayout(ctx context.Context, req gateway.PayoutRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payoutCalls = append(f.payoutCalls, req)
	if err, ok := f.errByReference[req.Reference]; ok {
		return "", err
	}
	if body, ok := f.bodyByReference[req.Reference]; ok {
		return body, nil
	}
	return f.payoutBody, nil
}

func (f *fakeGateway) InitiateBankPayout(ctx context.Context, req gateway.BankPayoutRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bankPayoutCalls = append(f.bankPayoutCalls, req)
	if err, ok := f.errByReference[req.Reference]; ok {
		return "", err
	}
	if body, ok := f.bodyByReference[req.Reference]; ok {
		return body, nil
	}
	return f.bankPayoutBody, nil
}

// fakeVendor serves a canned token vend response.
type fakeVendor struct {
	mu    sync.Mutex
	resp  *gateway.VendResponse
	err   error
	calls int
}

func (f *fakeVendor) Purchase(ctx context.Context, meterNumber string, amount float64) (*gateway.VendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

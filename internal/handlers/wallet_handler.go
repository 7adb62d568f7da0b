package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"propertypay-service/internal/consumers"
	"propertypay-service/internal/models"
	"propertypay-service/internal/worker"
	"propertypay-service/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// WalletLedger is the slice of the ledger service the wallet endpoints use.
type WalletLedger interface {
	WalletByLandlord(ctx context.Context, landlordID int) (*models.Wallet, error)
	TransactionsForLandlord(ctx context.Context, landlordID, page, limit int) ([]models.WalletTransaction, int64, error)
	TransactionExists(ctx context.Context, transactionID string) (bool, error)
}

// TaskQueue enqueues background jobs. *asynq.Client satisfies it.
type TaskQueue interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type WalletHandler struct {
	Ledger WalletLedger
	Queue  TaskQueue
}

func NewWalletHandler(ledger WalletLedger, queue TaskQueue) *WalletHandler {
	return &WalletHandler{Ledger: ledger, Queue: queue}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	landlordId, err := strconv.Atoi(c.Query("landlord_id"))
	if err != nil {
		resp := common.NewErrorResponse("Invalid landlord_id", nil, http.StatusBadRequest)
		c.JSON(resp.Status, resp)
		return
	}

	wallet, err := h.Ledger.WalletByLandlord(c.Request.Context(), landlordId)
	if err != nil {
		resp := common.NewErrorResponse("Wallet not found", nil, http.StatusNotFound)
		c.JSON(resp.Status, resp)
		return
	}

	resp := common.NewSuccessResponse(gin.H{"balance": wallet.Balance}, "Balance fetched")
	c.JSON(resp.Status, resp)
}

func (h *WalletHandler) ListTransactions(c *gin.Context) {
	landlordId, err := strconv.Atoi(c.Query("landlord_id"))
	if err != nil {
		resp := common.NewErrorResponse("Invalid landlord_id", nil, http.StatusBadRequest)
		c.JSON(resp.Status, resp)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	txns, total, err := h.Ledger.TransactionsForLandlord(c.Request.Context(), landlordId, page, limit)
	if err != nil {
		resp := common.NewErrorResponse("Failed to fetch transactions", nil, http.StatusInternalServerError)
		c.JSON(resp.Status, resp)
		return
	}

	c.JSON(http.StatusOK, common.PaginateResponse(txns, total, page, limit, ""))
}

type WithdrawalRequest struct {
	LandlordId int     `json:"landlord_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
	Method     string  `json:"method"`
}

func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest)
		c.JSON(resp.Status, resp)
		return
	}

	method := req.Method
	if method == "" {
		method = models.MethodMomo
	}

	wallet, err := h.Ledger.WalletByLandlord(c.Request.Context(), req.LandlordId)
	if err != nil {
		resp := common.NewErrorResponse("Wallet not found", nil, http.StatusNotFound)
		c.JSON(resp.Status, resp)
		return
	}

	if wallet.Balance < req.Amount {
		resp := common.NewErrorResponse("You have insufficient funds to cover the withdrawal request.", nil, http.StatusBadRequest)
		c.JSON(resp.Status, resp)
		return
	}

	code, err := h.withdrawalCode(c.Request.Context())
	if err != nil {
		resp := common.NewErrorResponse("Failed to queue withdrawal", nil, http.StatusInternalServerError)
		c.JSON(resp.Status, resp)
		return
	}

	task, err := worker.NewWithdrawalRequestTask(consumers.WithdrawalJob{
		LandlordID: req.LandlordId,
		Amount:     req.Amount,
		Method:     method,
		Code:       code,
	})
	if err != nil {
		resp := common.NewErrorResponse("Failed to queue withdrawal", nil, http.StatusInternalServerError)
		c.JSON(resp.Status, resp)
		return
	}
	if _, err := h.Queue.Enqueue(task); err != nil {
		resp := common.NewErrorResponse("Failed to queue withdrawal", nil, http.StatusInternalServerError)
		c.JSON(resp.Status, resp)
		return
	}

	resp := common.NewSuccessResponse(gin.H{"code": code}, "Withdrawal request received")
	c.JSON(resp.Status, resp)
}

// withdrawalCode draws codes until one is unused as a ledger transaction id.
// A code that collides with an existing entry would make the queued
// withdrawal a duplicate no-op.
func (h *WalletHandler) withdrawalCode(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		code := common.GenerateTrxNo()
		exists, err := h.Ledger.TransactionExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate an unused withdrawal code")
}

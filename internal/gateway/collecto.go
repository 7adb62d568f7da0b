package gateway

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"propertypay-service/pkg/common"
)

// CollectoClient wraps the Collecto mobile-money aggregator API. Every call
// returns the raw JSON body; an empty body is a valid, expected response
// that callers must handle, not an error.
type CollectoClient struct {
	BaseURL string
	APIKey  string
}

func NewCollectoClient() *CollectoClient {
	return &CollectoClient{
		BaseURL: os.Getenv("COLLECTO_BASE_URL"),
		APIKey:  os.Getenv("COLLECTO_API_KEY"),
	}
}

type RequestToPayRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference"`
}

type PayoutRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference"`
}

type BankPayoutRequest struct {
	BankName      string  `json:"bankName"`
	SwiftCode     string  `json:"swiftCode"`
	AccountNumber string  `json:"accountNumber"`
	AccountName   string  `json:"accountName"`
	Amount        float64 `json:"amount"`
	Reference     string  `json:"reference"`
}

func (c *CollectoClient) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.APIKey,
		"Accept":        "application/json",
		"X-Request-Id":  uuid.NewString(),
	}
}

func (c *CollectoClient) RequestToPay(ctx context.Context, req RequestToPayRequest) (string, error) {
	return common.Post(ctx, fmt.Sprintf("%s/v1/request-to-pay", c.BaseURL), req, c.headers())
}

func (c *CollectoClient) GetRequestToPayStatus(ctx context.Context, vendorTransactionID string) (string, error) {
	return common.Get(ctx, fmt.Sprintf("%s/v1/request-to-pay/%s/status", c.BaseURL, vendorTransactionID), c.headers())
}

func (c *CollectoClient) InitiatePayout(ctx context.Context, req PayoutRequest) (string, error) {
	return common.Post(ctx, fmt.Sprintf("%s/v1/payouts", c.BaseURL), req, c.headers())
}

func (c *CollectoClient) InitiateBankPayout(ctx context.Context, req BankPayoutRequest) (string, error) {
	return common.Post(ctx, fmt.Sprintf("%s/v1/payouts/bank", c.BaseURL), req, c.headers())
}

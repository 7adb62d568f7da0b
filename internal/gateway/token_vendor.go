package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"propertypay-service/pkg/common"
)

// VendResponse is the prepaid-token vendor's answer to a purchase call.
// ResultCode 0 means the vend succeeded.
type VendResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	Result     struct {
		Token     string  `json:"token"`
		TotalUnit float64 `json:"totalUnit"`
	} `json:"result"`
}

// PrepaidClient wraps the prepaid-electricity token vendor API.
type PrepaidClient struct {
	BaseURL  string
	Username string
	Password string
}

func NewPrepaidClient() *PrepaidClient {
	return &PrepaidClient{
		BaseURL:  os.Getenv("PREPAID_BASE_URL"),
		Username: os.Getenv("PREPAID_USERNAME"),
		Password: os.Getenv("PREPAID_PASSWORD"),
	}
}

func (c *PrepaidClient) Purchase(ctx context.Context, meterNumber string, amount float64) (*VendResponse, error) {
	payload := map[string]interface{}{
		"meterNumber": meterNumber,
		"amount":      amount,
		"username":    c.Username,
		"password":    c.Password,
	}

	raw, err := common.Post(ctx, fmt.Sprintf("%s/v1/vend", c.BaseURL), payload, nil)
	if err != nil {
		return nil, err
	}

	var resp VendResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("unparseable vend response: %w", err)
	}
	return &resp, nil
}

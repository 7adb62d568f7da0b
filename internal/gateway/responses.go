package gateway

import (
	"encoding/json"
	"strings"
)

// Outcome classifies a raw vendor response once, at the adapter boundary.
// Workers branch on the outcome instead of re-parsing vendor JSON.
type Outcome int

const (
	OutcomeEmpty Outcome = iota
	OutcomeUnparseable
	OutcomeParsed
)

// RequestToPayResponse is Collecto's answer to a request-to-pay call.
// Status true means the request was accepted for processing.
type RequestToPayResponse struct {
	Status        bool   `json:"status"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId"`
}

// StatusResponse is Collecto's answer to a status check. Success refers to
// the check itself; Status carries the payment state (PENDING, SUCCESSFUL,
// FAILED ...).
type StatusResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId"`
}

// PayoutResponse is Collecto's answer to a payout call.
type PayoutResponse struct {
	Payout        bool   `json:"payout"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId"`
}

// CollectoCallback is the shape of an inbound webhook payload.
type CollectoCallback struct {
	TransID           string  `json:"TransID"`
	ThirdPartyTransID string  `json:"ThirdPartyTransID"`
	FirstName         string  `json:"FirstName"`
	TransTime         string  `json:"TransTime"`
	TransAmount       float64 `json:"TransAmount"`
}

func ParseRequestToPay(raw string) (RequestToPayResponse, Outcome) {
	var resp RequestToPayResponse
	if strings.TrimSpace(raw) == "" {
		return resp, OutcomeEmpty
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return resp, OutcomeUnparseable
	}
	return resp, OutcomeParsed
}

func ParseStatus(raw string) (StatusResponse, Outcome) {
	var resp StatusResponse
	if strings.TrimSpace(raw) == "" {
		return resp, OutcomeEmpty
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return resp, OutcomeUnparseable
	}
	return resp, OutcomeParsed
}

func ParsePayout(raw string) (PayoutResponse, Outcome) {
	var resp PayoutResponse
	if strings.TrimSpace(raw) == "" {
		return resp, OutcomeEmpty
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return resp, OutcomeUnparseable
	}
	return resp, OutcomeParsed
}

package worker

import (
	"encoding/json"

	"propertypay-service/internal/consumers"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TypeWithdrawalRequest = "withdrawal-request"
)

// Task Creators

func NewWithdrawalRequestTask(payload consumers.WithdrawalJob) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWithdrawalRequest, data), nil
}

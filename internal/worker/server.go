package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"propertypay-service/internal/consumers"

	"github.com/hibiken/asynq"
)

type Worker struct {
	Processor *consumers.WithdrawalProcessor
}

func NewWorker(processor *consumers.WithdrawalProcessor) *Worker {
	return &Worker{
		Processor: processor,
	}
}

func (w *Worker) HandleWithdrawalRequest(ctx context.Context, t *asynq.Task) error {
	var p consumers.WithdrawalJob
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessWithdrawal(ctx, p)
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.WithdrawalProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			// Specify how many concurrent workers to use
			Concurrency: 10,
			// Optionally specify multiple queues with different priority.
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()

	mux.HandleFunc(TypeWithdrawalRequest, worker.HandleWithdrawalRequest)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}

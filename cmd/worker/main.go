package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"propertypay-service/internal/consumers"
	"propertypay-service/internal/database"
	"propertypay-service/internal/gateway"
	"propertypay-service/internal/reconcile"
	"propertypay-service/internal/services"
	"propertypay-service/internal/worker"
	"propertypay-service/pkg/logging"
)

func main() {
	// Load env
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found in ../../.env, trying .env")
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using system env")
		}
	}

	// Connect DB
	database.Connect()
	db := database.DB

	// Stores and clients
	payments := services.NewPaymentStore(db)
	ledger := services.NewLedgerService(db)
	audits := services.NewAuditStore(db)
	collecto := gateway.NewCollectoClient()
	prepaid := gateway.NewPrepaidClient()

	cfg := reconcile.ConfigFromEnv()
	logger := logging.NewLoggerWithService("reconciler")

	runner := reconcile.NewRunner(logger)
	runner.Add(&reconcile.InitiationWorker{Payments: payments, Gateway: collecto, Cfg: cfg, Log: logger}, cfg.Interval)
	runner.Add(&reconcile.StatusPollWorker{Payments: payments, Gateway: collecto, Cfg: cfg, Log: logger}, cfg.Interval)
	runner.Add(&reconcile.WalletCreditWorker{Payments: payments, Ledger: ledger, Cfg: cfg, Log: logger}, cfg.Interval)
	runner.Add(&reconcile.TokenGenerationWorker{Payments: payments, Vendor: prepaid, Cfg: cfg, Log: logger}, cfg.Interval)
	runner.Add(&reconcile.PayoutWorker{Ledger: ledger, Gateway: collecto, Cfg: cfg, Log: logger}, cfg.Interval)
	runner.Add(&reconcile.CallbackWorker{Audits: audits, Payments: payments, Ledger: ledger, Cfg: cfg, Log: logger}, cfg.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go runner.Start(ctx)

	// Processor
	processor := consumers.NewWithdrawalProcessor(ledger, logging.NewLoggerWithService("withdrawals"))

	// Redis
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	log.Println("Starting Asynq Worker...")
	worker.StartWorker(redisOpt, processor)
}

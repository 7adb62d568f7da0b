package main

import (
	"log"
	"os"

	"propertypay-service/internal/database"
	"propertypay-service/internal/handlers"
	"propertypay-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Init Services
	ledgerService := services.NewLedgerService(db)
	auditStore := services.NewAuditStore(db)

	// Redis/Asynq Client
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	walletHandler := handlers.NewWalletHandler(ledgerService, asynqClient)
	webhookHandler := handlers.NewWebhookHandler(auditStore)

	// Initialize Gin
	r := gin.Default()

	// Ping endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome To PropertyPay service",
		})
	})

	r.POST("/webhook/collecto/callback", webhookHandler.CollectoCallback)
	r.GET("/wallets/balance", walletHandler.GetBalance)
	r.GET("/wallets/transactions", walletHandler.ListTransactions)
	r.POST("/wallets/withdraw", walletHandler.RequestWithdrawal)

	// Start Cron Schedulers
	auditStore.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

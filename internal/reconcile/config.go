package reconcile

import (
	"os"
	"strconv"
	"time"
)

// Config carries the tuning knobs shared by all reconciliation workers.
// Pool sizes used to be scattered semaphore literals per worker; they are
// unified here and overridable from the environment.
type Config struct {
	Interval          time.Duration
	BatchSize         int
	InitiationPool    int
	StatusPool        int
	TokenPool         int
	MaxTokenAttempts  int
	MaxPayoutAttempts int
}

func DefaultConfig() Config {
	return Config{
		Interval:          10 * time.Second,
		BatchSize:         50,
		InitiationPool:    10,
		StatusPool:        5,
		TokenPool:         5,
		MaxTokenAttempts:  10,
		MaxPayoutAttempts: 10,
	}
}

// ConfigFromEnv returns DefaultConfig with any RECONCILE_* overrides applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := envInt("RECONCILE_INTERVAL_SECONDS"); v > 0 {
		cfg.Interval = time.Duration(v) * time.Second
	}
	if v := envInt("RECONCILE_BATCH_SIZE"); v > 0 {
		cfg.BatchSize = v
	}
	if v := envInt("RECONCILE_INITIATION_POOL"); v > 0 {
		cfg.InitiationPool = v
	}
	if v := envInt("RECONCILE_STATUS_POOL"); v > 0 {
		cfg.StatusPool = v
	}
	if v := envInt("RECONCILE_TOKEN_POOL"); v > 0 {
		cfg.TokenPool = v
	}
	if v := envInt("RECONCILE_MAX_TOKEN_ATTEMPTS"); v > 0 {
		cfg.MaxTokenAttempts = v
	}
	if v := envInt("RECONCILE_MAX_PAYOUT_ATTEMPTS"); v > 0 {
		cfg.MaxPayoutAttempts = v
	}
	return cfg
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

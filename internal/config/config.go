package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetFloatEnv returns a float environment variable or a default value.
func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// BusinessRules holds the credit and transaction limits applied across the
// platform. Amounts are in SAR.
type BusinessRules struct {
	DefaultCreditLimit   float64
	MaxCreditLimit       float64
	RepaymentDays        int
	DefaultCommissionPct float64
	MinTransactionAmount float64
	MaxTransactionAmount float64
	PaymentLockTimeout   time.Duration
}

// Rules returns the business rules, with environment overrides applied.
func Rules() BusinessRules {
	return BusinessRules{
		DefaultCreditLimit:   GetFloatEnv("DEFAULT_CREDIT_LIMIT", 500),
		MaxCreditLimit:       GetFloatEnv("MAX_CREDIT_LIMIT", 5000),
		RepaymentDays:        GetIntEnv("REPAYMENT_DAYS", 10),
		DefaultCommissionPct: GetFloatEnv("DEFAULT_COMMISSION_RATE", 2.5),
		MinTransactionAmount: GetFloatEnv("MIN_TRANSACTION_AMOUNT", 10),
		MaxTransactionAmount: GetFloatEnv("MAX_TRANSACTION_AMOUNT", 2000),
		PaymentLockTimeout:   GetDurationEnv("PAYMENT_LOCK_TIMEOUT", 60*time.Second),
	}
}

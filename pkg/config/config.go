// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Tables holds the DynamoDB table names.
type Tables struct {
	Users                string
	Wallets              string
	Stores               string
	Products             string
	Orders               string
	FinancialRecords     string
	ActivityLogs         string
	Investments          string
	TransactionHistories string
	ChatbotHistories     string
}

// Midtrans holds the payment gateway credentials.
type Midtrans struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
}

// Config is the complete runtime configuration.
type Config struct {
	ServiceName         string
	Env                 string
	LogLevel            string
	HTTPPort            string
	PublicBaseURL       string
	JWTSecret           string
	JWTTTL              time.Duration
	Tables              Tables
	SQSQueueURL         string
	StatusCheckDelay    time.Duration
	StaleOrderThreshold time.Duration
	Midtrans            Midtrans
	GatewayTimeout      time.Duration
	KafkaBrokers        []string
	KafkaTopic          string
}

// Load reads the configuration from environment variables, applying defaults.
// Callers load a .env file beforehand when present.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		ServiceName:   getenvDefault("SERVICE_NAME", "store-payments"),
		Env:           getenvDefault("APP_ENV", "development"),
		LogLevel:      getenvDefault("LOG_LEVEL", "info"),
		HTTPPort:      getenvDefault("HTTP_PORT", "8080"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Tables: Tables{
			Users:                getenvDefault("DYNAMODB_USERS_TABLE_NAME", "users"),
			Wallets:              getenvDefault("DYNAMODB_WALLETS_TABLE_NAME", "wallets"),
			Stores:               getenvDefault("DYNAMODB_STORES_TABLE_NAME", "stores"),
			Products:             getenvDefault("DYNAMODB_PRODUCTS_TABLE_NAME", "products"),
			Orders:               getenvDefault("DYNAMODB_ORDERS_TABLE_NAME", "orders"),
			FinancialRecords:     getenvDefault("DYNAMODB_FINANCIAL_RECORDS_TABLE_NAME", "financial_records"),
			ActivityLogs:         getenvDefault("DYNAMODB_ACTIVITY_LOGS_TABLE_NAME", "activity_logs"),
			Investments:          getenvDefault("DYNAMODB_INVESTMENTS_TABLE_NAME", "investments"),
			TransactionHistories: getenvDefault("DYNAMODB_TRANSACTION_HISTORIES_TABLE_NAME", "transaction_histories"),
			ChatbotHistories:     getenvDefault("DYNAMODB_CHATBOT_HISTORIES_TABLE_NAME", "chatbot_histories"),
		},
		SQSQueueURL: os.Getenv("SQS_QUEUE_URL"),
		Midtrans: Midtrans{
			ServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
			ClientKey: os.Getenv("MIDTRANS_CLIENT_KEY"),
		},
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenvDefault("KAFKA_TOPIC", "store-events"),
	}

	var err error
	if cfg.Midtrans.IsProduction, err = getenvBool("MIDTRANS_IS_PRODUCTION", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.JWTTTL, err = getenvDuration("JWT_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.StatusCheckDelay, err = getenvDuration("STATUS_CHECK_DELAY", 15*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.StaleOrderThreshold, err = getenvDuration("STALE_ORDER_THRESHOLD", 30*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.GatewayTimeout, err = getenvDuration("GATEWAY_TIMEOUT", 15*time.Second); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings required by the HTTP API.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable not set"))
	}
	if c.Midtrans.ServerKey == "" {
		errs = append(errs, errors.New("MIDTRANS_SERVER_KEY environment variable not set"))
	}
	if c.PublicBaseURL == "" {
		errs = append(errs, errors.New("PUBLIC_BASE_URL environment variable not set"))
	}
	if c.GatewayTimeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

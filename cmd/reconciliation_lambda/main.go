package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/store-payments/pkg/app"
	"github.com/chris/store-payments/pkg/config"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/orders"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// sweeper is the part of the order service the reconciliation job drives.
type sweeper interface {
	EnqueueStale(ctx context.Context, maxAge time.Duration) (*orders.SweepResult, error)
	ReconcileStale(ctx context.Context, maxAge time.Duration) (*orders.SweepResult, error)
}

type job struct {
	orders    sweeper
	threshold time.Duration
	// inline reconciles in this invocation instead of enqueueing status checks.
	inline bool
	logger *zap.Logger
}

// HandleRequest is triggered by an EventBridge Schedule. Orders still pending
// after the threshold are re-checked against the gateway.
func (j *job) HandleRequest(ctx context.Context) error {
	ctx = logging.ContextWithLogger(ctx, j.logger)
	j.logger.Info("starting reconciliation of stale pending orders",
		zap.Duration("threshold", j.threshold), zap.Bool("inline", j.inline))

	sweep := j.orders.EnqueueStale
	if j.inline {
		sweep = j.orders.ReconcileStale
	}

	result, err := sweep(ctx, j.threshold)
	if err != nil {
		j.logger.Error("reconciliation failed", zap.Error(err))
		return err
	}
	if result.Found == 0 {
		j.logger.Info("no stale pending orders found")
	}
	return nil
}

func main() {
	// Load environment variables for local testing.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger, err := logging.NewLogger(cfg.ServiceName+"-reconciliation", cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	zap.ReplaceGlobals(logger)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise dependencies", zap.Error(err))
	}

	j := &job{
		orders:    a.Orders,
		threshold: cfg.StaleOrderThreshold,
		inline:    cfg.SQSQueueURL == "",
		logger:    logger,
	}
	lambda.Start(j.HandleRequest)
}

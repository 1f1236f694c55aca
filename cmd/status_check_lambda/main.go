package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/store-payments/pkg/app"
	"github.com/chris/store-payments/pkg/config"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/orders"
	"github.com/chris/store-payments/pkg/scheduler"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// statusRefresher is the part of the order service the worker drives.
type statusRefresher interface {
	RefreshStatus(ctx context.Context, externalOrderID, source string) (*orders.ReconcileResult, error)
}

type worker struct {
	orders statusRefresher
	logger *zap.Logger
}

// HandleRequest reconciles the order named by each SQS message. Messages that
// failed transiently are reported back so SQS redelivers only those.
func (w *worker) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse

	for _, message := range sqsEvent.Records {
		logger := w.logger.With(zap.String("message_id", message.MessageId))
		ctx := logging.ContextWithLogger(ctx, logger)

		var check scheduler.StatusCheck
		if err := json.Unmarshal([]byte(message.Body), &check); err != nil || check.ExternalOrderID == "" {
			// Redelivery cannot fix a malformed body.
			logger.Error("dropping malformed status check", zap.String("body", message.Body), zap.Error(err))
			continue
		}

		result, err := w.orders.RefreshStatus(ctx, check.ExternalOrderID, orders.SourcePoll)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			logger.Warn("dropping status check for unknown order", zap.String("external_order_id", check.ExternalOrderID))
		case err != nil:
			logger.Error("status check failed", zap.String("external_order_id", check.ExternalOrderID), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		default:
			logger.Info("status check processed",
				zap.String("external_order_id", check.ExternalOrderID),
				zap.String("payment_status", string(result.Status)),
				zap.String("outcome", string(result.Outcome)))
		}
	}

	return resp, nil
}

func main() {
	// Load environment variables for local testing.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger, err := logging.NewLogger(cfg.ServiceName+"-status-check", cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	zap.ReplaceGlobals(logger)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise dependencies", zap.Error(err))
	}

	w := &worker{orders: a.Orders, logger: logger}
	lambda.Start(w.HandleRequest)
}

// Package app builds the services shared by the HTTP server, the lambdas and
// the operator CLI from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/store-payments/pkg/auth"
	"github.com/chris/store-payments/pkg/config"
	"github.com/chris/store-payments/pkg/events"
	"github.com/chris/store-payments/pkg/gateway"
	"github.com/chris/store-payments/pkg/gateway/midtrans"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/metrics"
	"github.com/chris/store-payments/pkg/orders"
	"github.com/chris/store-payments/pkg/scheduler"
	dydbstore "github.com/chris/store-payments/pkg/storage/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// App holds the wired dependencies of one process.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Store     *dydbstore.Store
	Gateway   *gateway.Tracked
	Scheduler scheduler.Scheduler
	Publisher events.Publisher
	// EventSink names the configured publisher: "kafka" or "disabled".
	EventSink string
	Tokens    *auth.Tokens
	Auth      *auth.Service
	Orders    *orders.Service
	Ledger    *ledger.Service

	closers []func() error
}

// New loads AWS credentials and builds every service from cfg.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.Registry)

	a.Store = dydbstore.New(dynamodb.NewFromConfig(awsCfg), dydbstore.Tables(cfg.Tables))
	a.Gateway = gateway.NewTracked(midtrans.New(cfg.Midtrans.ServerKey, cfg.Midtrans.IsProduction, cfg.GatewayTimeout), a.Metrics)

	a.Scheduler = scheduler.NoOpScheduler{}
	if cfg.SQSQueueURL != "" {
		a.Scheduler = scheduler.NewSQSScheduler(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL)
	} else {
		logger.Warn("SQS_QUEUE_URL not set, delayed payment status checks are disabled")
	}

	a.Publisher = &events.NoOpPublisher{}
	a.EventSink = "disabled"
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger))
		a.Publisher = publisher
		a.EventSink = "kafka"
		a.closers = append(a.closers, publisher.Close)
	}

	a.Tokens = auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	a.Auth = auth.NewService(a.Store, a.Tokens)
	a.Ledger = ledger.NewService(a.Store, a.Publisher, a.Metrics)
	a.Orders = orders.NewService(a.Store, a.Gateway, a.Scheduler, a.Publisher, a.Metrics, orders.Config{
		CallbackBaseURL:  cfg.PublicBaseURL,
		GatewayTimeout:   cfg.GatewayTimeout,
		StatusCheckDelay: cfg.StatusCheckDelay,
	})

	return a, nil
}

// Close releases resources held by the app, such as the Kafka writer.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

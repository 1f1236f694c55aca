package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris/store-payments/pkg/app"
	"github.com/chris/store-payments/pkg/config"
	"github.com/chris/store-payments/pkg/handlers"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise dependencies", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close dependencies", zap.Error(err))
		}
	}()

	handler := handlers.NewApiHandler(handlers.Dependencies{
		Store:   a.Store,
		Auth:    a.Auth,
		Orders:  a.Orders,
		Ledger:  a.Ledger,
		Gateway: a.Gateway,
		Events:  a.EventSink,
	})
	router := handlers.NewRouter(handler, handlers.RouterOptions{
		Logger:   logger,
		Metrics:  a.Metrics,
		Tokens:   a.Tokens,
		Gatherer: a.Registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
		return
	}
	logger.Info("http server stopped", zap.Int64("active_gateway_calls", a.Gateway.InFlight()))
}

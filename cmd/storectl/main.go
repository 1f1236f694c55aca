package main

import (
	"context"
	"os"

	"github.com/chris/store-payments/pkg/app"
	"github.com/chris/store-payments/pkg/config"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	root := newRootCmd(func(ctx context.Context) (operator, func() error, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		logger, err := logging.NewLogger(cfg.ServiceName+"-storectl", cfg.Env, cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		zap.ReplaceGlobals(logger)

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return a.Orders, a.Close, nil
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

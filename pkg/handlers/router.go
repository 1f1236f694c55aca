package handlers

import (
	"net/http"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/metrics"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BaseURL is the prefix of every API route.
const BaseURL = "/api"

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Tokens   middleware.TokenVerifier
	Gatherer prometheus.Gatherer
}

// NewRouter mounts the API and the metrics endpoint on a chi router.
func NewRouter(si api.ServerInterface, opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Observability(opts.Metrics))
	router.Use(middleware.NewStructuredLogger(opts.Logger))
	router.Use(chimiddleware.Recoverer)

	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	return api.HandlerWithOptions(si, api.ChiServerOptions{
		BaseURL:          BaseURL,
		BaseRouter:       router,
		Middlewares:      []api.MiddlewareFunc{middleware.Authenticate(opts.Tokens)},
		ErrorHandlerFunc: response.ParamError,
	})
}

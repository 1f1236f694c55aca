package health

import (
	"context"
	"net/http"
	"time"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/storage"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// InFlightCounter reports work currently in progress.
type InFlightCounter interface {
	InFlight() int64
}

// HealthHandler reports liveness of the service and its collaborators.
type HealthHandler struct {
	Store   storage.HealthChecker
	Gateway InFlightCounter
	// Events names the configured event sink, e.g. "kafka" or "disabled".
	Events string
}

// NewHealthHandler creates a new HealthHandler. gateway may be nil.
func NewHealthHandler(store storage.HealthChecker, gateway InFlightCounter, events string) *HealthHandler {
	return &HealthHandler{Store: store, Gateway: gateway, Events: events}
}

// GetHealth pings storage and reports the number of in-flight gateway calls.
// An unreachable store degrades the response to 503.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	out := api.Health{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Services: map[string]string{
			"storage": "up",
			"gateway": "up",
			"events":  h.Events,
		},
	}
	if out.Services["events"] == "" {
		out.Services["events"] = "disabled"
	}
	if h.Gateway != nil {
		out.ActiveGatewayCalls = h.Gateway.InFlight()
	} else {
		out.Services["gateway"] = "disabled"
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	status := http.StatusOK
	if err := h.Store.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("storage health check failed", zap.Error(err))
		out.Status = "degraded"
		out.Services["storage"] = "down"
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, "", out)
}

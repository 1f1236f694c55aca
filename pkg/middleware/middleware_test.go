package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubVerifier map[string]string

func (v stubVerifier) Verify(token string) (string, error) {
	if userID, ok := v[token]; ok {
		return userID, nil
	}
	return "", errors.New("bad token")
}

func securedRequest(header string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return req.WithContext(context.WithValue(req.Context(), api.BearerAuthScopes, []string{}))
}

func TestAuthenticate(t *testing.T) {
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Authenticate(stubVerifier{"good": "user-1"})(next)

	t.Run("Valid Token", func(t *testing.T) {
		gotUserID = ""
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, securedRequest("Bearer good"))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "user-1", gotUserID)
	})

	t.Run("Missing Token", func(t *testing.T) {
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, securedRequest(""))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), `"success":false`)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, securedRequest("Bearer forged"))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Public Operation", func(t *testing.T) {
		gotUserID = "unchanged"
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "", gotUserID)
	})
}

func TestNewStructuredLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	var ctxLogger *zap.Logger
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(NewStructuredLogger(logger))
	router.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logging.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request completed", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, "server error", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.NotSame(t, zap.L(), ctxLogger)
}

func TestObservability(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	router := chi.NewRouter()
	router.Use(Observability(m))
	router.Get("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/def", nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/orders/{id}", "404")))
}

package middleware

import (
	"net/http"
	"time"

	"github.com/chris/store-payments/pkg/logging"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NewStructuredLogger is a custom middleware that provides structured logging for requests.
// It also stores a request-scoped logger carrying the request id in the context.
func NewStructuredLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			tww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := logger
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				reqLogger = logger.With(zap.String("request_id", reqID))
			}
			r = r.WithContext(logging.ContextWithLogger(r.Context(), reqLogger))

			tStart := time.Now()
			defer func() {
				status := tww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				latency := time.Since(tStart)

				requestFields := zap.Dict("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)

				responseFields := zap.Dict("response",
					zap.Int("status", status),
					zap.Int("bytes", tww.BytesWritten()),
					zap.String("latency", latency.String()),
				)

				l := reqLogger
				if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
					l = logging.WithTrace(reqLogger, sc.TraceID().String(), sc.SpanID().String())
				}
				if status >= 500 {
					l.Error("server error", requestFields, responseFields)
				} else {
					l.Info("request completed", requestFields, responseFields)
				}
			}()

			next.ServeHTTP(tww, r)
		}
		return http.HandlerFunc(fn)
	}
}

package gateway

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/chris/store-payments/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/chris/store-payments/pkg/gateway")

// Tracked decorates a Gateway with spans, latency metrics and an in-flight counter.
type Tracked struct {
	next     Gateway
	metrics  *metrics.Metrics
	inFlight atomic.Int64
}

// NewTracked wraps next. m may be nil.
func NewTracked(next Gateway, m *metrics.Metrics) *Tracked {
	return &Tracked{next: next, metrics: m}
}

// Make sure we conform to the interface
var _ Gateway = (*Tracked)(nil)

// InFlight returns the number of gateway calls currently in progress.
func (t *Tracked) InFlight() int64 {
	return t.inFlight.Load()
}

func (t *Tracked) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	ctx, done := t.begin(ctx, "create_session", attribute.String("order.external_id", req.OrderID))
	session, err := t.next.CreateSession(ctx, req)
	done(err)
	return session, err
}

func (t *Tracked) GetStatus(ctx context.Context, orderID string) (*TransactionStatus, error) {
	ctx, done := t.begin(ctx, "get_status", attribute.String("order.external_id", orderID))
	status, err := t.next.GetStatus(ctx, orderID)
	done(err)
	return status, err
}

func (t *Tracked) ParseNotification(ctx context.Context, body []byte) (*TransactionStatus, error) {
	ctx, done := t.begin(ctx, "parse_notification")
	status, err := t.next.ParseNotification(ctx, body)
	done(err)
	return status, err
}

func (t *Tracked) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	t.inFlight.Add(1)
	start := time.Now()
	ctx, span := tracer.Start(ctx, "gateway."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		t.inFlight.Add(-1)
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		t.metrics.ObserveGatewayCall(operation, outcome, time.Since(start))
		span.End()
	}
}

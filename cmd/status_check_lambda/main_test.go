package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/orders"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRefresher struct {
	errs  map[string]error
	calls []string
}

func (f *fakeRefresher) RefreshStatus(ctx context.Context, externalOrderID, source string) (*orders.ReconcileResult, error) {
	f.calls = append(f.calls, externalOrderID+"/"+source)
	if err := f.errs[externalOrderID]; err != nil {
		return nil, err
	}
	return &orders.ReconcileResult{
		Order:   &models.Order{ExternalOrderId: externalOrderID},
		Status:  models.PaymentPaid,
		Outcome: orders.OutcomeApplied,
	}, nil
}

func TestHandleRequest(t *testing.T) {
	refresher := &fakeRefresher{errs: map[string]error{
		"ORD-gateway-down": errors.New("gateway unavailable"),
		"ORD-unknown":      storage.ErrNotFound,
	}}
	w := &worker{orders: refresher, logger: zap.NewNop()}

	resp, err := w.HandleRequest(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "m1", Body: `{"external_order_id":"ORD-ok"}`},
		{MessageId: "m2", Body: `{"external_order_id":"ORD-gateway-down"}`},
		{MessageId: "m3", Body: `not-json`},
		{MessageId: "m4", Body: `{"external_order_id":"ORD-unknown"}`},
		{MessageId: "m5", Body: `{}`},
	}})

	require.NoError(t, err)
	assert.Equal(t, []events.SQSBatchItemFailure{{ItemIdentifier: "m2"}}, resp.BatchItemFailures)
	assert.Equal(t, []string{"ORD-ok/poll", "ORD-gateway-down/poll", "ORD-unknown/poll"}, refresher.calls)
}

package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/chris/store-payments/pkg/gateway"
	"github.com/chris/store-payments/pkg/gateway/mocks"
	"github.com/chris/store-payments/pkg/metrics"
	"github.com/chris/store-payments/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		transaction string
		fraud       string
		want        models.PaymentStatus
	}{
		{"settlement", "", models.PaymentPaid},
		{"capture", "accept", models.PaymentPaid},
		{"CAPTURE", "Accept", models.PaymentPaid},
		{"capture", "challenge", models.PaymentPending},
		{"capture", "", models.PaymentPending},
		{"pending", "", models.PaymentPending},
		{"deny", "", models.PaymentFailed},
		{"expire", "", models.PaymentFailed},
		{"cancel", "", models.PaymentFailed},
		{"refund", "", models.PaymentPending},
		{"", "", models.PaymentPending},
	}

	for _, tt := range tests {
		t.Run(tt.transaction+"/"+tt.fraud, func(t *testing.T) {
			assert.Equal(t, tt.want, gateway.Classify(tt.transaction, tt.fraud))
		})
	}
}

func TestError(t *testing.T) {
	assert.Equal(t, "gateway returned status 502", (&gateway.Error{StatusCode: 502}).Error())
	assert.Equal(t, "gateway returned status 400: bad amount; bad item",
		(&gateway.Error{StatusCode: 400, Messages: []string{"bad amount", "bad item"}}).Error())
}

func TestTracked(t *testing.T) {
	t.Run("Delegates And Records Latency", func(t *testing.T) {
		next := new(mocks.Gateway)
		m := metrics.New(prometheus.NewRegistry())
		tracked := gateway.NewTracked(next, m)

		var during int64
		next.On("GetStatus", mock.Anything, "ORD-1").
			Run(func(args mock.Arguments) { during = tracked.InFlight() }).
			Return(&gateway.TransactionStatus{OrderID: "ORD-1", TransactionStatus: "settlement"}, nil)

		status, err := tracked.GetStatus(context.Background(), "ORD-1")

		require.NoError(t, err)
		assert.Equal(t, "settlement", status.TransactionStatus)
		assert.Equal(t, int64(1), during)
		assert.Equal(t, int64(0), tracked.InFlight())
		assert.Equal(t, 1, testutil.CollectAndCount(m.GatewayDuration, "store_payments_gateway_request_duration_seconds"))
		next.AssertExpectations(t)
	})

	t.Run("Errors Pass Through", func(t *testing.T) {
		next := new(mocks.Gateway)
		tracked := gateway.NewTracked(next, nil)
		next.On("CreateSession", mock.Anything, mock.Anything).Return(nil, gateway.ErrInvalidSignature)
		next.On("ParseNotification", mock.Anything, mock.Anything).Return(nil, gateway.ErrInvalidSignature)

		_, err := tracked.CreateSession(context.Background(), &gateway.SessionRequest{OrderID: "ORD-1"})
		assert.True(t, errors.Is(err, gateway.ErrInvalidSignature))

		_, err = tracked.ParseNotification(context.Background(), []byte("{}"))
		assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
		assert.Equal(t, int64(0), tracked.InFlight())
	})
}

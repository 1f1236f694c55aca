package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/chris/store-payments/pkg/events"
	eventmocks "github.com/chris/store-payments/pkg/events/mocks"
	"github.com/chris/store-payments/pkg/gateway"
	gatewaymocks "github.com/chris/store-payments/pkg/gateway/mocks"
	"github.com/chris/store-payments/pkg/models"
	schedulermocks "github.com/chris/store-payments/pkg/scheduler/mocks"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/chris/store-payments/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type testDeps struct {
	store     *mocks.Storage
	gateway   *gatewaymocks.Gateway
	scheduler *schedulermocks.Scheduler
	publisher *eventmocks.Publisher
}

func newTestService(cfg Config) (*Service, *testDeps) {
	deps := &testDeps{
		store:     new(mocks.Storage),
		gateway:   new(gatewaymocks.Gateway),
		scheduler: new(schedulermocks.Scheduler),
		publisher: new(eventmocks.Publisher),
	}
	s := NewService(deps.store, deps.gateway, deps.scheduler, deps.publisher, nil, cfg)
	s.now = func() time.Time { return testNow }
	s.newExternalID = func(time.Time) string { return "ORD-1714557600000-ABCDEFGHI" }
	return s, deps
}

func (d *testDeps) assertExpectations(t *testing.T) {
	d.store.AssertExpectations(t)
	d.gateway.AssertExpectations(t)
	d.scheduler.AssertExpectations(t)
	d.publisher.AssertExpectations(t)
}

func ownedStore() *models.Store {
	return &models.Store{Id: "store-1", UserId: "owner-1", StoreName: "Kopi"}
}

func product(id string, price, stock int64) *models.Product {
	return &models.Product{Id: id, StoreId: "store-1", Name: "Product " + id, Price: price, Stock: stock}
}

func returnOrder(_ context.Context, o *models.Order) (*models.Order, error) {
	if o.Id == "" {
		o.Id = "order-1"
	}
	return o, nil
}

func TestCreateOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s, deps := newTestService(Config{CallbackBaseURL: "https://api.example.com/", StatusCheckDelay: 15 * time.Minute})

		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", 10000, 5), nil).Once()
		deps.gateway.On("CreateSession", mock.Anything, mock.MatchedBy(func(req *gateway.SessionRequest) bool {
			return req.OrderID == "ORD-1714557600000-ABCDEFGHI" &&
				req.GrossAmount == 20000 &&
				len(req.Items) == 1 && req.Items[0].Price == 10000 && req.Items[0].Quantity == 2 &&
				req.Customer.FirstName == DefaultCustomerName &&
				req.Callbacks.Finish == "https://api.example.com/api/payment/finish?order_id=ORD-1714557600000-ABCDEFGHI"
		})).Return(&gateway.Session{Token: "snap-token", RedirectURL: "https://pay.example.com/snap"}, nil).Once()
		deps.store.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
			return o.TotalAmount == 20000 && o.PaymentStatus == models.PaymentPending &&
				o.UserId == "owner-1" && o.SnapToken == "snap-token" &&
				len(o.Items) == 1 && o.Items[0].UnitPrice == 10000
		})).Return(returnOrder, nil).Once()
		deps.scheduler.On("ScheduleStatusCheck", mock.Anything, "ORD-1714557600000-ABCDEFGHI", 15*time.Minute).Return(nil).Once()
		deps.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
			return e.Type == events.EventOrderCreated && e.Key == "store-1"
		})).Return(nil).Once()

		checkout, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID:  "owner-1",
			StoreID: "store-1",
			Items:   []ItemRequest{{ProductID: "p1", Quantity: 2}},
		})

		require.NoError(t, err)
		assert.Equal(t, "order-1", checkout.Order.Id)
		assert.Equal(t, int64(20000), checkout.Order.TotalAmount)
		assert.Equal(t, "snap-token", checkout.Token)
		assert.Equal(t, "https://pay.example.com/snap", checkout.RedirectURL)
		deps.assertExpectations(t)
	})

	t.Run("Discount Sent As Negative Item", func(t *testing.T) {
		s, deps := newTestService(Config{})

		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", 10000, 5), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p2").Return(product("p2", 2500, 5), nil).Once()
		deps.gateway.On("CreateSession", mock.Anything, mock.MatchedBy(func(req *gateway.SessionRequest) bool {
			var sum int64
			for _, item := range req.Items {
				sum += item.Price * item.Quantity
			}
			last := req.Items[len(req.Items)-1]
			return len(req.Items) == 3 && sum == req.GrossAmount && req.GrossAmount == 21500 &&
				last.ID == gateway.DiscountItemID && last.Price == -1000
		})).Return(&gateway.Session{Token: "tok"}, nil).Once()
		deps.store.On("CreateOrder", mock.Anything, mock.Anything).Return(returnOrder, nil).Once()
		deps.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

		checkout, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID:   "owner-1",
			StoreID:  "store-1",
			Items:    []ItemRequest{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}, {ProductID: "p1", Quantity: 1}},
			Discount: 1000,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(21500), checkout.Order.TotalAmount)
		require.Len(t, checkout.Order.Items, 2)
		assert.Equal(t, int64(2), checkout.Order.Items[0].Quantity)
		deps.scheduler.AssertNotCalled(t, "ScheduleStatusCheck", mock.Anything, mock.Anything, mock.Anything)
		deps.assertExpectations(t)
	})

	t.Run("Empty Items", func(t *testing.T) {
		s, deps := newTestService(Config{})

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{UserID: "owner-1", StoreID: "store-1"})

		assert.ErrorIs(t, err, ErrInvalidOrder)
		deps.store.AssertNotCalled(t, "GetStore", mock.Anything, mock.Anything)
	})

	t.Run("Invalid Quantity", func(t *testing.T) {
		s, _ := newTestService(Config{})

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: 0}},
		})

		assert.ErrorIs(t, err, ErrInvalidOrder)
	})

	t.Run("Merged Quantity Overflow", func(t *testing.T) {
		s, deps := newTestService(Config{})

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1",
			Items: []ItemRequest{{ProductID: "p1", Quantity: math.MaxInt64}, {ProductID: "p1", Quantity: 6}},
		})

		assert.ErrorIs(t, err, ErrInvalidOrder)
		deps.store.AssertNotCalled(t, "GetStore", mock.Anything, mock.Anything)
		deps.store.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Line Amount Overflow", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", 2, math.MaxInt64), nil).Once()

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: math.MaxInt64/2 + 1}},
		})

		assert.ErrorIs(t, err, ErrInvalidOrder)
		deps.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
		deps.store.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		deps.assertExpectations(t)
	})

	t.Run("Subtotal Overflow", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", math.MaxInt64, 1), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p2").Return(product("p2", 1, 1), nil).Once()

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1",
			Items: []ItemRequest{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}},
		})

		assert.ErrorIs(t, err, ErrInvalidOrder)
		deps.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
		deps.assertExpectations(t)
	})

	t.Run("Not Store Owner", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "intruder", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: 1}},
		})

		assert.ErrorIs(t, err, storage.ErrAccessDenied)
		deps.store.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
		deps.assertExpectations(t)
	})

	t.Run("Product From Another Store", func(t *testing.T) {
		s, deps := newTestService(Config{})
		other := product("p1", 10000, 5)
		other.StoreId = "store-2"
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(other, nil).Once()

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: 1}},
		})

		assert.ErrorIs(t, err, storage.ErrNotFound)
		deps.assertExpectations(t)
	})

	t.Run("Insufficient Stock", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", 10000, 1), nil).Once()

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: 2}},
		})

		assert.ErrorIs(t, err, storage.ErrInsufficientStock)
		deps.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
		deps.store.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		deps.assertExpectations(t)
	})

	t.Run("Insufficient Stock At Commit", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", 10000, 2), nil).Once()
		deps.gateway.On("CreateSession", mock.Anything, mock.Anything).Return(&gateway.Session{Token: "tok"}, nil).Once()
		deps.store.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("product p1: %w", storage.ErrInsufficientStock)).Once()

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: 2}},
		})

		assert.ErrorIs(t, err, storage.ErrInsufficientStock)
		deps.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		deps.assertExpectations(t)
	})

	t.Run("Discount Exceeds Total", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", 10000, 5), nil).Once()

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: 1}}, Discount: 10000,
		})

		assert.ErrorIs(t, err, ErrInvalidAmount)
		deps.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
		deps.assertExpectations(t)
	})

	t.Run("Gateway Error", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", 10000, 5), nil).Once()
		deps.gateway.On("CreateSession", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()

		_, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: 1}},
		})

		assert.ErrorIs(t, err, ErrGateway)
		deps.store.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		deps.assertExpectations(t)
	})

	t.Run("Schedule Failure Does Not Fail Order", func(t *testing.T) {
		s, deps := newTestService(Config{StatusCheckDelay: time.Minute})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("GetProduct", mock.Anything, "p1").Return(product("p1", 10000, 5), nil).Once()
		deps.gateway.On("CreateSession", mock.Anything, mock.Anything).Return(&gateway.Session{Token: "tok"}, nil).Once()
		deps.store.On("CreateOrder", mock.Anything, mock.Anything).Return(returnOrder, nil).Once()
		deps.scheduler.On("ScheduleStatusCheck", mock.Anything, mock.Anything, time.Minute).Return(errors.New("queue down")).Once()
		deps.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		checkout, err := s.CreateOrder(context.Background(), CreateOrderRequest{
			UserID: "owner-1", StoreID: "store-1", Items: []ItemRequest{{ProductID: "p1", Quantity: 1}},
		})

		require.NoError(t, err)
		assert.Equal(t, "order-1", checkout.Order.Id)
		deps.assertExpectations(t)
	})
}

func TestGetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetOrder", mock.Anything, "order-1").Return(&models.Order{Id: "order-1", UserId: "owner-1"}, nil).Once()

		order, err := s.GetOrder(context.Background(), "owner-1", "order-1")

		require.NoError(t, err)
		assert.Equal(t, "order-1", order.Id)
		deps.assertExpectations(t)
	})

	t.Run("Access Denied", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetOrder", mock.Anything, "order-1").Return(&models.Order{Id: "order-1", UserId: "owner-1"}, nil).Once()

		_, err := s.GetOrder(context.Background(), "someone-else", "order-1")

		assert.ErrorIs(t, err, storage.ErrAccessDenied)
	})
}

func TestListStoreOrders(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(ownedStore(), nil).Once()
		deps.store.On("ListOrdersByStoreID", mock.Anything, "store-1").Return([]models.Order{{Id: "o1"}, {Id: "o2"}}, nil).Once()

		list, err := s.ListStoreOrders(context.Background(), "owner-1", "store-1")

		require.NoError(t, err)
		assert.Len(t, list, 2)
		deps.assertExpectations(t)
	})

	t.Run("Store Not Found", func(t *testing.T) {
		s, deps := newTestService(Config{})
		deps.store.On("GetStore", mock.Anything, "store-1").Return(nil, storage.ErrNotFound).Once()

		_, err := s.ListStoreOrders(context.Background(), "owner-1", "store-1")

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestMergeItems(t *testing.T) {
	items := make([]ItemRequest, MaxLineItems+1)
	for i := range items {
		items[i] = ItemRequest{ProductID: fmt.Sprintf("p%d", i), Quantity: 1}
	}

	_, err := mergeItems(items)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	merged, err := mergeItems(append(items[:2:2], ItemRequest{ProductID: " p0 ", Quantity: 3}))
	require.NoError(t, err)
	assert.Equal(t, []ItemRequest{{ProductID: "p0", Quantity: 4}, {ProductID: "p1", Quantity: 1}}, merged)

	_, err = mergeItems([]ItemRequest{{ProductID: "p1", Quantity: math.MaxInt64}, {ProductID: "p1", Quantity: 6}})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	merged, err = mergeItems([]ItemRequest{{ProductID: "p1", Quantity: math.MaxInt64 - 1}, {ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), merged[0].Quantity)
}

func TestLineAmount(t *testing.T) {
	amount, ok := lineAmount(10000, 3)
	assert.True(t, ok)
	assert.Equal(t, int64(30000), amount)

	_, ok = lineAmount(2, math.MaxInt64/2+1)
	assert.False(t, ok)

	_, ok = lineAmount(-1, 1)
	assert.False(t, ok)

	amount, ok = lineAmount(0, math.MaxInt64)
	assert.True(t, ok)
	assert.Zero(t, amount)
}

// Package orders implements checkout and payment reconciliation: it reserves
// stock, opens gateway sessions and applies terminal payment signals exactly once.
package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/chris/store-payments/pkg/events"
	"github.com/chris/store-payments/pkg/gateway"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/metrics"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/scheduler"
	"github.com/chris/store-payments/pkg/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/chris/store-payments/pkg/orders")

// MaxLineItems keeps an order and its stock reservations within one storage transaction.
const MaxLineItems = 99

const maxGatewayItemName = 50

// Default contact details sent to the gateway when the caller supplies none.
const (
	DefaultCustomerName  = "Customer"
	DefaultCustomerEmail = "customer@example.com"
	DefaultCustomerPhone = "08123456789"
)

// Store is the storage the orchestrator needs.
type Store interface {
	storage.StoreReader
	storage.ProductReader
	storage.OrderStore
	storage.SettlementStore
}

// Config holds the orchestrator's tunables.
type Config struct {
	// CallbackBaseURL is the public base URL the gateway redirects browsers to.
	CallbackBaseURL  string
	GatewayTimeout   time.Duration
	StatusCheckDelay time.Duration
}

// Service orchestrates order creation and payment reconciliation.
type Service struct {
	store     Store
	gateway   gateway.Gateway
	scheduler scheduler.Scheduler
	events    events.Publisher
	metrics   *metrics.Metrics
	cfg       Config

	now           func() time.Time
	newExternalID func(time.Time) string
}

// NewService creates a new Service. sched, publisher and m may be nil.
func NewService(store Store, gw gateway.Gateway, sched scheduler.Scheduler, publisher events.Publisher, m *metrics.Metrics, cfg Config) *Service {
	if sched == nil {
		sched = scheduler.NoOpScheduler{}
	}
	if publisher == nil {
		publisher = &events.NoOpPublisher{}
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 15 * time.Second
	}
	return &Service{
		store:         store,
		gateway:       gw,
		scheduler:     sched,
		events:        publisher,
		metrics:       m,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
		newExternalID: newExternalOrderID,
	}
}

// ItemRequest is one cart line.
type ItemRequest struct {
	ProductID string
	Quantity  int64
}

// CustomerRequest holds optional contact details.
type CustomerRequest struct {
	Name  string
	Email string
	Phone string
}

// CreateOrderRequest is the input to CreateOrder. UserID is the caller.
type CreateOrderRequest struct {
	UserID   string
	StoreID  string
	Items    []ItemRequest
	Discount int64
	Customer CustomerRequest
}

// Checkout is the result of a successful CreateOrder.
type Checkout struct {
	Order       *models.Order
	Token       string
	RedirectURL string
}

// CreateOrder validates the cart, opens a payment session and then reserves
// stock and persists the order in one conditional transaction. If the session
// cannot be opened nothing is written.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Checkout, error) {
	ctx, span := tracer.Start(ctx, "orders.create")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", req.StoreID), attribute.Int("order.lines", len(req.Items)))

	checkout, err := s.createOrder(ctx, req)
	if err != nil {
		outcome := createOutcome(err)
		s.metrics.OrderCreated(outcome)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		logging.FromContext(ctx).Warn("order creation failed",
			zap.String("store_id", req.StoreID),
			zap.String("outcome", outcome),
			zap.Error(err))
		return nil, err
	}

	s.metrics.OrderCreated("success")
	span.SetAttributes(attribute.String("order.external_id", checkout.Order.ExternalOrderId))
	logging.FromContext(ctx).Info("order created",
		zap.String("order_id", checkout.Order.Id),
		zap.String("external_order_id", checkout.Order.ExternalOrderId),
		zap.Int64("total_amount", checkout.Order.TotalAmount))

	s.afterCreate(ctx, checkout.Order)
	return checkout, nil
}

func (s *Service) createOrder(ctx context.Context, req CreateOrderRequest) (*Checkout, error) {
	lines, err := mergeItems(req.Items)
	if err != nil {
		return nil, err
	}
	if req.Discount < 0 {
		return nil, fmt.Errorf("%w: discount cannot be negative", ErrInvalidOrder)
	}

	store, err := s.store.GetStore(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if store.UserId != req.UserID {
		return nil, fmt.Errorf("store %s: %w", req.StoreID, storage.ErrAccessDenied)
	}

	order := &models.Order{
		StoreId:       store.Id,
		UserId:        store.UserId,
		Discount:      req.Discount,
		PaymentStatus: models.PaymentPending,
		Customer:      customerWithDefaults(req.Customer),
	}

	var subtotal int64
	for _, line := range lines {
		product, err := s.store.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.StoreId != store.Id {
			return nil, fmt.Errorf("product %s in store %s: %w", line.ProductID, store.Id, storage.ErrNotFound)
		}
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("product %s: %w", product.Id, storage.ErrInsufficientStock)
		}

		item := models.LineItem{
			ProductId:   product.Id,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		}
		amount, ok := lineAmount(item.UnitPrice, item.Quantity)
		if !ok || subtotal > math.MaxInt64-amount {
			return nil, fmt.Errorf("%w: order amount overflows", ErrInvalidOrder)
		}
		subtotal += amount
		order.Items = append(order.Items, item)
	}

	order.TotalAmount = subtotal - req.Discount
	if order.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	order.ExternalOrderId = s.newExternalID(now)
	order.CreatedAt = now
	order.UpdatedAt = now

	session, err := s.openSession(ctx, order)
	if err != nil {
		return nil, err
	}
	order.SnapToken = session.Token
	order.RedirectURL = session.RedirectURL

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		// The gateway session is left unpaid and expires on its own.
		return nil, err
	}

	return &Checkout{Order: created, Token: session.Token, RedirectURL: session.RedirectURL}, nil
}

func (s *Service) openSession(ctx context.Context, order *models.Order) (*gateway.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	session, err := s.gateway.CreateSession(ctx, s.sessionRequest(order))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return session, nil
}

// sessionRequest builds the gateway item breakdown. A discount is sent as a
// negative item so that the items sum to exactly the gross amount.
func (s *Service) sessionRequest(order *models.Order) *gateway.SessionRequest {
	items := make([]gateway.Item, 0, len(order.Items)+1)
	for _, li := range order.Items {
		items = append(items, gateway.Item{
			ID:       li.ProductId,
			Name:     truncate(li.ProductName, maxGatewayItemName),
			Price:    li.UnitPrice,
			Quantity: li.Quantity,
		})
	}
	if order.Discount > 0 {
		items = append(items, gateway.Item{
			ID:       gateway.DiscountItemID,
			Name:     "Discount",
			Price:    -order.Discount,
			Quantity: 1,
		})
	}

	return &gateway.SessionRequest{
		OrderID:     order.ExternalOrderId,
		GrossAmount: order.TotalAmount,
		Items:       items,
		Customer: gateway.Customer{
			FirstName: order.Customer.Name,
			Email:     order.Customer.Email,
			Phone:     order.Customer.Phone,
		},
		Callbacks: s.callbacks(order.ExternalOrderId),
	}
}

func (s *Service) callbacks(externalOrderID string) gateway.Callbacks {
	base := strings.TrimRight(s.cfg.CallbackBaseURL, "/")
	if base == "" {
		return gateway.Callbacks{}
	}
	q := "?order_id=" + url.QueryEscape(externalOrderID)
	return gateway.Callbacks{
		Finish:  base + "/api/payment/finish" + q,
		Error:   base + "/api/payment/error" + q,
		Pending: base + "/api/payment/pending" + q,
	}
}

func (s *Service) afterCreate(ctx context.Context, order *models.Order) {
	logger := logging.FromContext(ctx)

	if s.cfg.StatusCheckDelay > 0 {
		if err := s.scheduler.ScheduleStatusCheck(ctx, order.ExternalOrderId, s.cfg.StatusCheckDelay); err != nil {
			logger.Warn("failed to schedule payment status check",
				zap.String("external_order_id", order.ExternalOrderId), zap.Error(err))
		}
	}

	s.publishOrderEvent(ctx, events.EventOrderCreated, order)
}

func (s *Service) publishOrderEvent(ctx context.Context, eventType events.EventType, order *models.Order) {
	event := events.Event{
		Type:       eventType,
		Key:        order.StoreId,
		OccurredAt: s.now(),
		Payload: events.OrderPayload{
			OrderID:         order.Id,
			ExternalOrderID: order.ExternalOrderId,
			StoreID:         order.StoreId,
			UserID:          order.UserId,
			TotalAmount:     order.TotalAmount,
			Status:          string(order.PaymentStatus),
		},
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("failed to publish order event",
			zap.String("event_type", string(eventType)),
			zap.String("order_id", order.Id),
			zap.Error(err))
	}
}

// GetOrder returns an order owned by userID.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserId != userID {
		return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrAccessDenied)
	}
	return order, nil
}

// ListStoreOrders returns the orders of a store owned by userID, newest first.
func (s *Service) ListStoreOrders(ctx context.Context, userID, storeID string) ([]models.Order, error) {
	store, err := s.store.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.UserId != userID {
		return nil, fmt.Errorf("store %s: %w", storeID, storage.ErrAccessDenied)
	}
	return s.store.ListOrdersByStoreID(ctx, storeID)
}

// mergeItems validates the cart and folds repeated products into one line,
// keeping first-seen order.
func mergeItems(items []ItemRequest) ([]ItemRequest, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items are required", ErrInvalidOrder)
	}

	index := make(map[string]int, len(items))
	merged := make([]ItemRequest, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ProductID)
		if id == "" {
			return nil, fmt.Errorf("%w: product_id is required", ErrInvalidOrder)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %s must be positive", ErrInvalidOrder, id)
		}
		if i, ok := index[id]; ok {
			if merged[i].Quantity > math.MaxInt64-item.Quantity {
				return nil, fmt.Errorf("%w: quantity for product %s overflows", ErrInvalidOrder, id)
			}
			merged[i].Quantity += item.Quantity
			continue
		}
		index[id] = len(merged)
		merged = append(merged, ItemRequest{ProductID: id, Quantity: item.Quantity})
	}

	if len(merged) > MaxLineItems {
		return nil, fmt.Errorf("%w: at most %d distinct products per order", ErrInvalidOrder, MaxLineItems)
	}
	return merged, nil
}

// lineAmount returns price*qty, reporting false when it is negative or overflows.
func lineAmount(price, qty int64) (int64, bool) {
	if price < 0 || qty < 0 {
		return 0, false
	}
	if price != 0 && qty > math.MaxInt64/price {
		return 0, false
	}
	return price * qty, true
}

func customerWithDefaults(c CustomerRequest) models.Customer {
	out := models.Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
	if out.Name == "" {
		out.Name = DefaultCustomerName
	}
	if out.Email == "" {
		out.Email = DefaultCustomerEmail
	}
	if out.Phone == "" {
		out.Phone = DefaultCustomerPhone
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func createOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidOrder), errors.Is(err, ErrInvalidAmount):
		return "invalid"
	case errors.Is(err, storage.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrGateway):
		return "gateway_error"
	default:
		return "error"
	}
}

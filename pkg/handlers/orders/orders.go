package orders

import (
	"net/http"
	"strings"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
	ordersvc "github.com/chris/store-payments/pkg/orders"
)

// OrdersHandler holds the dependencies for checkout handlers.
type OrdersHandler struct {
	Orders *ordersvc.Service
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(svc *ordersvc.Service) *OrdersHandler {
	return &OrdersHandler{Orders: svc}
}

// CreateOrder reserves stock, opens a payment session and returns the checkout token.
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var in api.NewOrder
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if strings.TrimSpace(in.StoreId) == "" {
		response.Fail(w, http.StatusBadRequest, "store_id is required")
		return
	}

	req := ordersvc.CreateOrderRequest{
		UserID:  userID,
		StoreID: in.StoreId,
		Items:   make([]ordersvc.ItemRequest, len(in.Items)),
	}
	for i, item := range in.Items {
		req.Items[i] = ordersvc.ItemRequest{ProductID: item.ProductId, Quantity: item.Quantity}
	}
	if in.Discount != nil {
		req.Discount = *in.Discount
	}
	if c := in.Customer; c != nil {
		if c.Name != nil {
			req.Customer.Name = *c.Name
		}
		if c.Email != nil {
			req.Customer.Email = string(*c.Email)
		}
		if c.Phone != nil {
			req.Customer.Phone = *c.Phone
		}
	}

	checkout, err := h.Orders.CreateOrder(r.Context(), req)
	if err != nil {
		response.Error(w, r, "Failed to create order", err)
		return
	}

	response.JSON(w, http.StatusCreated, "Order created successfully", api.Checkout{
		OrderId:         checkout.Order.Id,
		ExternalOrderId: checkout.Order.ExternalOrderId,
		TotalAmount:     checkout.Order.TotalAmount,
		Token:           checkout.Token,
		RedirectUrl:     checkout.RedirectURL,
	})
}

// ListStoreOrders lists the orders of one of the caller's stores.
func (h *OrdersHandler) ListStoreOrders(w http.ResponseWriter, r *http.Request, storeId string) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	orders, err := h.Orders.ListStoreOrders(r.Context(), userID, storeId)
	if err != nil {
		response.Error(w, r, "Failed to retrieve orders", err)
		return
	}

	apiOrders := make([]api.Order, len(orders))
	for i := range orders {
		apiOrders[i] = mapping.ToApiOrder(&orders[i])
	}
	response.JSON(w, http.StatusOK, "", apiOrders)
}

// GetOrder returns one of the caller's orders.
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	order, err := h.Orders.GetOrder(r.Context(), userID, id)
	if err != nil {
		response.Error(w, r, "Failed to retrieve order", err)
		return
	}

	response.JSON(w, http.StatusOK, "", mapping.ToApiOrder(order))
}

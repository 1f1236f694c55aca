package mapping

import (
	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/gateway"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToApiUser converts a domain User model to an API User model.
func ToApiUser(user *models.User) api.User {
	return api.User{
		Id:        user.Id,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     optional(user.Phone),
		CreatedAt: user.CreatedAt,
	}
}

// ToApiStore converts a domain Store model to an API Store model.
func ToApiStore(store *models.Store) api.Store {
	return api.Store{
		Id:          store.Id,
		UserId:      store.UserId,
		StoreName:   store.StoreName,
		Description: store.Description,
		Address:     store.Address,
		LogoUrl:     store.LogoURL,
		CreatedAt:   store.CreatedAt,
		UpdatedAt:   store.UpdatedAt,
	}
}

// ToDomainStore applies a store request body onto store.
func ToDomainStore(in *api.StoreInput, store *models.Store) {
	store.StoreName = in.StoreName
	store.Description = value(in.Description)
	store.Address = value(in.Address)
	store.LogoURL = value(in.LogoUrl)
}

// ToApiProduct converts a domain Product model to an API Product model.
func ToApiProduct(p *models.Product) api.Product {
	return api.Product{
		Id:          p.Id,
		StoreId:     p.StoreId,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		ImageUrl:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToDomainProduct applies a product request body onto product. StoreId is not copied.
func ToDomainProduct(in *api.ProductInput, product *models.Product) {
	product.Name = in.Name
	product.Description = value(in.Description)
	product.Price = in.Price
	product.Stock = in.Stock
	product.Category = value(in.Category)
	product.ImageURL = value(in.ImageUrl)
}

// ToApiOrder converts a domain Order model to an API Order model.
func ToApiOrder(o *models.Order) api.Order {
	items := make([]api.OrderItem, len(o.Items))
	for i, li := range o.Items {
		items[i] = api.OrderItem{
			ProductId:   li.ProductId,
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Subtotal:    li.Subtotal(),
		}
	}
	return api.Order{
		Id:              o.Id,
		StoreId:         o.StoreId,
		ExternalOrderId: o.ExternalOrderId,
		Items:           items,
		Discount:        o.Discount,
		TotalAmount:     o.TotalAmount,
		PaymentStatus:   api.OrderPaymentStatus(o.PaymentStatus),
		GatewayStatus:   optional(o.GatewayStatus),
		Customer: api.Customer{
			Name:  o.Customer.Name,
			Email: o.Customer.Email,
			Phone: o.Customer.Phone,
		},
		RedirectUrl: optional(o.RedirectURL),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		SettledAt:   o.SettledAt,
	}
}

// ToApiPaymentStatus combines the stored order with the gateway's view of it.
func ToApiPaymentStatus(order *models.Order, ts *gateway.TransactionStatus) api.PaymentStatus {
	out := api.PaymentStatus{
		OrderId:       order.ExternalOrderId,
		PaymentStatus: api.OrderPaymentStatus(order.PaymentStatus),
		TotalAmount:   order.TotalAmount,
	}
	if ts != nil {
		out.TransactionStatus = optional(ts.TransactionStatus)
		out.FraudStatus = optional(ts.FraudStatus)
		out.PaymentType = optional(ts.PaymentType)
		gross := ts.GrossAmount
		out.GrossAmount = &gross
	}
	return out
}

// ToApiWallet converts a domain Wallet model to an API Wallet model.
func ToApiWallet(wallet *models.Wallet) api.Wallet {
	return api.Wallet{
		UserId:    wallet.UserId,
		Balance:   wallet.Balance,
		Version:   wallet.Version,
		UpdatedAt: wallet.UpdatedAt,
	}
}

// ToApiInvestment converts a domain Investment model to an API Investment model.
func ToApiInvestment(inv *models.Investment) api.Investment {
	out := api.Investment{
		Id:            inv.Id,
		WalletAddress: inv.WalletAddress,
		Asset:         inv.Asset,
		Amount:        inv.Amount,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt,
		SoldAt:        inv.SoldAt,
	}
	if inv.Status == models.InvestmentSold {
		sell := inv.SellAmount
		out.SellAmount = &sell
	}
	return out
}

// ToApiFinancialRecord converts a domain FinancialRecord model to an API model.
func ToApiFinancialRecord(rec *models.FinancialRecord) api.FinancialRecord {
	return api.FinancialRecord{
		Id:          rec.Id,
		Type:        string(rec.Type),
		Amount:      rec.Amount,
		Description: rec.Description,
		ReferenceId: optional(rec.ReferenceId),
		CreatedAt:   rec.CreatedAt,
	}
}

// ToApiActivity converts a domain ActivityLog model to an API Activity model.
func ToApiActivity(act *models.ActivityLog) api.Activity {
	return api.Activity{
		Id:           act.Id,
		ActivityType: string(act.ActivityType),
		Amount:       act.Amount,
		Description:  act.Description,
		ReferenceId:  optional(act.ReferenceId),
		CreatedAt:    act.CreatedAt,
	}
}

// ToDomainTransactionHistory converts an API request into a domain history entry.
func ToDomainTransactionHistory(userID string, in *api.NewTransactionHistory) *models.TransactionHistory {
	return &models.TransactionHistory{
		UserId:          userID,
		OrderId:         value(in.OrderId),
		ExternalOrderId: value(in.ExternalOrderId),
		TotalAmount:     in.TotalAmount,
		DiscountAmount:  in.DiscountAmount,
		PaymentMethod:   in.PaymentMethod,
		CouponsUsed:     in.CouponsUsed,
		Items:           in.Items,
		Status:          in.Status,
	}
}

// ToApiTransactionHistory converts a domain history entry to an API model.
func ToApiTransactionHistory(h *models.TransactionHistory) api.TransactionHistory {
	return api.TransactionHistory{
		Id:              h.Id,
		OrderId:         optional(h.OrderId),
		ExternalOrderId: optional(h.ExternalOrderId),
		TotalAmount:     h.TotalAmount,
		DiscountAmount:  h.DiscountAmount,
		PaymentMethod:   h.PaymentMethod,
		CouponsUsed:     h.CouponsUsed,
		Items:           h.Items,
		Status:          h.Status,
		CreatedAt:       h.CreatedAt,
	}
}

// ToDomainChatbotHistory converts an API request into a domain chatbot entry.
func ToDomainChatbotHistory(userID string, in *api.NewChatbotHistory) *models.ChatbotHistory {
	return &models.ChatbotHistory{
		UserId:        userID,
		Command:       in.Command,
		InputText:     value(in.InputText),
		ResponseText:  value(in.ResponseText),
		ActionResult:  value(in.ActionResult),
		RelatedEntity: value(in.RelatedEntity),
	}
}

// ToApiChatbotHistory converts a domain chatbot entry to an API model.
func ToApiChatbotHistory(h *models.ChatbotHistory) api.ChatbotHistory {
	return api.ChatbotHistory{
		Id:            h.Id,
		Command:       h.Command,
		InputText:     optional(h.InputText),
		ResponseText:  optional(h.ResponseText),
		ActionResult:  optional(h.ActionResult),
		RelatedEntity: optional(h.RelatedEntity),
		CreatedAt:     h.CreatedAt,
	}
}

// ToApiPage converts a storage page with the given item converter.
func ToApiPage[T, U any](page *storage.Page[T], convert func(*T) U) api.Page[U] {
	out := api.Page[U]{Items: make([]U, len(page.Items)), NextCursor: optional(page.NextCursor)}
	for i := range page.Items {
		out.Items[i] = convert(&page.Items[i])
	}
	return out
}

// ListOptions converts optional limit and cursor parameters.
func ListOptions(limit *int32, cursor *string) storage.ListOptions {
	opts := storage.ListOptions{Cursor: value(cursor)}
	if limit != nil {
		opts.Limit = *limit
	}
	return opts
}

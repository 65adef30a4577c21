package dealer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juku001/SellazEngine/internal/catalog"
	"github.com/juku001/SellazEngine/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	CreateOrder(ctx context.Context, order Order, items []OrderItem) (Order, error)
	GetOrder(ctx context.Context, id, companyID int64) (Order, error)
	GetDealerOrder(ctx context.Context, id, superDealerID int64) (Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	SetStatus(ctx context.Context, id, companyID int64, status string) (Order, error)
	FulfillOrder(ctx context.Context, order Order, items []OrderItem, pricePolicy string, dateToPay time.Time) error
	ListForCompany(ctx context.Context, companyID int64) ([]Order, error)
	ListForDealer(ctx context.Context, superDealerID int64) ([]Order, error)
}

// CatalogPort resolves product ids into priced products within a company.
type CatalogPort interface {
	ProductsForCompany(ctx context.Context, ids []int64, companyID int64) (map[int64]catalog.Product, error)
}

// AuditPort records workflow actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// EventPort counts workflow events for observability.
type EventPort interface {
	OrderEvent(workflow, event string)
}

// StockCachePort drops cached balance views after a stock mutation.
type StockCachePort interface {
	Invalidate(ctx context.Context, superDealerID int64)
}

// Service implements the dealer order workflow.
type Service struct {
	repo        RepositoryPort
	catalog     CatalogPort
	audit       AuditPort
	events      EventPort
	stockCache  StockCachePort
	paymentTerm time.Duration
	pricePolicy string
	now         func() time.Time
}

// NewService constructs the dealer workflow service. paymentTermDays sets
// the payment deadline applied at request and again at fulfillment.
func NewService(repo RepositoryPort, cat CatalogPort, audit AuditPort, events EventPort, stockCache StockCachePort, paymentTermDays int, pricePolicy string) *Service {
	return &Service{
		repo:        repo,
		catalog:     cat,
		audit:       audit,
		events:      events,
		stockCache:  stockCache,
		paymentTerm: time.Duration(paymentTermDays) * 24 * time.Hour,
		pricePolicy: pricePolicy,
		now:         time.Now,
	}
}

// RequestItem is one requested product line.
type RequestItem struct {
	ProductID int64
	Quantity  int64
}

// Request places a pending order for the calling super dealer. Prices are
// snapshotted from the company catalog at request time so later catalog
// changes never reprice an open order.
func (s *Service) Request(ctx context.Context, principal shared.Principal, reqItems []RequestItem) (Order, error) {
	if principal.Role != shared.RoleSuperDealer {
		return Order{}, shared.Forbidden("Only super dealers can place orders.")
	}

	ids := make([]int64, 0, len(reqItems))
	for _, it := range reqItems {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.ProductsForCompany(ctx, ids, principal.CompanyID)
	if err != nil {
		return Order{}, shared.Internal("Order creation failed.", err)
	}

	var total float64
	items := make([]OrderItem, 0, len(reqItems))
	for _, it := range reqItems {
		product, ok := products[it.ProductID]
		if !ok {
			return Order{}, shared.Internal("Order creation failed.", fmt.Errorf("Product ID %d not found for this company.", it.ProductID))
		}
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: product.CompanyPrice,
		})
		total += float64(it.Quantity) * product.CompanyPrice
	}

	order := Order{
		SuperDealerID: principal.SuperDealerID,
		CompanyID:     principal.CompanyID,
		Status:        StatusPending,
		Total:         total,
		DateToPay:     s.now().Add(s.paymentTerm),
	}
	order, err = s.repo.CreateOrder(ctx, order, items)
	if err != nil {
		return Order{}, shared.Internal("Order creation failed.", err)
	}

	s.record(ctx, principal, "dealer_order.requested", order.ID, map[string]any{"total": order.Total, "items": len(items)})
	s.count("requested")
	return order, nil
}

// SetStatus approves or rejects a pending order within the caller's company.
func (s *Service) SetStatus(ctx context.Context, principal shared.Principal, orderID int64, status string) (Order, error) {
	current, err := s.repo.GetOrder(ctx, orderID, principal.CompanyID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return Order{}, shared.NotFound("Order not found.")
		}
		return Order{}, shared.Internal("Order update failed.", err)
	}
	if current.Status != StatusPending {
		return Order{}, shared.StateConflict("Order already processed.")
	}

	order, err := s.repo.SetStatus(ctx, orderID, principal.CompanyID, status)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			// Lost the race with another reviewer.
			return Order{}, shared.StateConflict("Order already processed.")
		}
		return Order{}, shared.Internal("Order update failed.", err)
	}

	s.record(ctx, principal, "dealer_order."+status, order.ID, nil)
	s.count(status)
	return order, nil
}

// Fulfill moves an approved order into the dealer's stock. Quantities land
// on super_dealer_stocks rows and the payment deadline restarts from the
// fulfillment date.
func (s *Service) Fulfill(ctx context.Context, principal shared.Principal, orderID int64) (Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID, principal.CompanyID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return Order{}, shared.NotFound("Order not found.")
		}
		return Order{}, shared.Internal("Order fulfillment failed.", err)
	}
	if order.Status != StatusApproved {
		return Order{}, shared.StateConflict("Approve order first.")
	}

	items, err := s.repo.ListOrderItems(ctx, orderID)
	if err != nil {
		return Order{}, shared.Internal("Order fulfillment failed.", err)
	}

	dateToPay := s.now().Add(s.paymentTerm)
	if err := s.repo.FulfillOrder(ctx, order, items, s.pricePolicy, dateToPay); err != nil {
		if errors.Is(err, ErrNotApproved) {
			return Order{}, shared.StateConflict("Approve order first.")
		}
		return Order{}, shared.Internal("Order fulfillment failed.", err)
	}
	order.Status = StatusFulfilled
	order.DateToPay = dateToPay

	// Fulfillment just changed the dealer's stock rows.
	if s.stockCache != nil {
		s.stockCache.Invalidate(ctx, order.SuperDealerID)
	}

	s.record(ctx, principal, "dealer_order.fulfilled", order.ID, map[string]any{"items": len(items)})
	s.count("fulfilled")
	return order, nil
}

// ListForCompany returns the company's dealer orders.
func (s *Service) ListForCompany(ctx context.Context, principal shared.Principal) ([]Order, error) {
	orders, err := s.repo.ListForCompany(ctx, principal.CompanyID)
	if err != nil {
		return nil, shared.Internal("Failed to load orders.", err)
	}
	return orders, nil
}

// ListForDealer returns the calling super dealer's own orders.
func (s *Service) ListForDealer(ctx context.Context, principal shared.Principal) ([]Order, error) {
	orders, err := s.repo.ListForDealer(ctx, principal.SuperDealerID)
	if err != nil {
		return nil, shared.Internal("Failed to load orders.", err)
	}
	return orders, nil
}

// DealerOrderItems returns the items on one of the caller's own orders.
func (s *Service) DealerOrderItems(ctx context.Context, principal shared.Principal, orderID int64) ([]OrderItem, error) {
	if _, err := s.repo.GetDealerOrder(ctx, orderID, principal.SuperDealerID); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, shared.NotFound("Order not found.")
		}
		return nil, shared.Internal("Failed to load order items.", err)
	}
	items, err := s.repo.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, shared.Internal("Failed to load order items.", err)
	}
	return items, nil
}

func (s *Service) record(ctx context.Context, principal shared.Principal, action string, orderID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "dealer_order",
		EntityID: fmt.Sprintf("%d", orderID),
		Meta:     meta,
	})
}

func (s *Service) count(event string) {
	if s.events != nil {
		s.events.OrderEvent("dealer", event)
	}
}

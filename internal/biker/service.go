package biker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juku001/SellazEngine/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	StockPrices(ctx context.Context, superDealerID int64, ids []int64) (map[int64]float64, error)
	CreateOrder(ctx context.Context, order Order, items []OrderItem) (Order, error)
	GetOrder(ctx context.Context, id, bikerID int64) (Order, error)
	ListOrders(ctx context.Context, bikerID int64) ([]Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	GetOrderItem(ctx context.Context, itemID, bikerID int64) (OrderItem, error)
	ActivateOrder(ctx context.Context, order Order, items []OrderItem) error
	DeleteOrder(ctx context.Context, id int64) error
	RecordSale(ctx context.Context, sale Sale) error
	RecordReturn(ctx context.Context, ret Return) error
	OrderTallies(ctx context.Context, orderID int64) ([]ReconcileLine, error)
	CompleteOrder(ctx context.Context, id int64, completedAt time.Time) error
	SalesTotal(ctx context.Context, orderID int64) (float64, error)
	CloseOrder(ctx context.Context, orderID int64, commission Commission) error
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

// Service implements the biker order workflow.
type Service struct {
	repo              RepositoryPort
	audit             AuditPort
	events            EventPort
	stockCache        StockCachePort
	commissionPercent float64
	now               func() time.Time
}

// NewService constructs the biker workflow service.
func NewService(repo RepositoryPort, audit AuditPort, events EventPort, stockCache StockCachePort, commissionPercent float64) *Service {
	return &Service{
		repo:              repo,
		audit:             audit,
		events:            events,
		stockCache:        stockCache,
		commissionPercent: commissionPercent,
		now:               time.Now,
	}
}

// RequestItem is one requested product line.
type RequestItem struct {
	ProductID int64
	Quantity  int64
}

// Request places a pending order against the calling biker's super
// dealer. Prices are snapshotted from the dealer's stock rows; ordering a
// product the dealer does not stock fails the whole request.
func (s *Service) Request(ctx context.Context, principal shared.Principal, reqItems []RequestItem) (Order, error) {
	ids := make([]int64, 0, len(reqItems))
	for _, it := range reqItems {
		ids = append(ids, it.ProductID)
	}
	prices, err := s.repo.StockPrices(ctx, principal.SuperDealerID, ids)
	if err != nil {
		return Order{}, shared.Internal("Order creation failed.", err)
	}

	var total float64
	items := make([]OrderItem, 0, len(reqItems))
	for _, it := range reqItems {
		price, ok := prices[it.ProductID]
		if !ok {
			return Order{}, shared.Internal("Order creation failed.", fmt.Errorf("Product ID %d not found for this company.", it.ProductID))
		}
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price,
		})
		total += float64(it.Quantity) * price
	}

	order := Order{
		SuperDealerID: principal.SuperDealerID,
		BikerID:       principal.ID,
		Status:        StatusPending,
		TotalAmount:   total,
	}
	order, err = s.repo.CreateOrder(ctx, order, items)
	if err != nil {
		return Order{}, shared.Internal("Order creation failed.", err)
	}

	s.record(ctx, principal, "biker_order.requested", order.ID, map[string]any{"total": order.TotalAmount, "items": len(items)})
	s.count("requested")
	return order, nil
}

// Activate moves a pending order to active and deducts every item from
// the dealer's stock. Any missing or short stock row rolls the whole
// activation back.
func (s *Service) Activate(ctx context.Context, principal shared.Principal, orderID int64) error {
	order, err := s.getOrder(ctx, principal, orderID)
	if err != nil {
		return err
	}
	if order.Status != StatusPending {
		return shared.StateConflict("Order already active or closed.")
	}

	items, err := s.repo.ListOrderItems(ctx, orderID)
	if err != nil {
		return shared.Internal("Failed to activate order.", err)
	}

	if err := s.repo.ActivateOrder(ctx, order, items); err != nil {
		var missing *StockMissing
		if errors.As(err, &missing) {
			return shared.NotFound(fmt.Sprintf("Stock not found for product ID %d.", missing.ProductID))
		}
		var short *StockShortage
		if errors.As(err, &short) {
			return shared.Insufficient(fmt.Sprintf("Insufficient stock for product ID %d. Only %d available.", short.ProductID, short.Available))
		}
		if errors.Is(err, ErrStateConflict) {
			return shared.StateConflict("Order already active or closed.")
		}
		return shared.Internal("Failed to activate order.", err)
	}

	if s.stockCache != nil {
		s.stockCache.Invalidate(ctx, order.SuperDealerID)
	}
	s.record(ctx, principal, "biker_order.activated", orderID, nil)
	s.count("activated")
	return nil
}

// Delete removes an order that has not been activated.
func (s *Service) Delete(ctx context.Context, principal shared.Principal, orderID int64) error {
	order, err := s.getOrder(ctx, principal, orderID)
	if err != nil {
		return err
	}
	if order.Status != StatusPending {
		return shared.StateConflict("Can not delete an active order.")
	}
	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		return shared.Internal("Failed to delete order.", err)
	}
	s.record(ctx, principal, "biker_order.deleted", orderID, nil)
	s.count("deleted")
	return nil
}

// SellInput describes a sale against one order item.
type SellInput struct {
	OrderItemID  int64
	CustomerName string
	Location     string
	Quantity     int64
}

// Sell appends a sale to the item's ledger. Stock moved at activation, so
// this only tracks reconciliation against the ordered quantity.
func (s *Service) Sell(ctx context.Context, principal shared.Principal, input SellInput) error {
	item, err := s.repo.GetOrderItem(ctx, input.OrderItemID, principal.ID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return shared.Validation(shared.FieldErrors{"order_item_id": {"The specified order item does not exist."}})
		}
		return shared.Internal("Failed to record sale.", err)
	}

	sale := Sale{
		OrderItemID:  item.ID,
		QuantitySold: input.Quantity,
		UnitPrice:    item.UnitPrice,
		CustomerName: input.CustomerName,
		Location:     input.Location,
		SaleDate:     s.now(),
	}
	if err := s.repo.RecordSale(ctx, sale); err != nil {
		var exceeded *LedgerExceeded
		if errors.As(err, &exceeded) {
			return shared.Insufficient(fmt.Sprintf("You only have %d items left to sell.", exceeded.Available))
		}
		return shared.Internal("Failed to record sale.", err)
	}

	s.record(ctx, principal, "biker_sale.recorded", item.OrderID, map[string]any{"order_item_id": item.ID, "quantity": input.Quantity})
	s.count("sold")
	return nil
}

// ReturnInput describes a return against one order item.
type ReturnInput struct {
	OrderItemID int64
	Quantity    int64
	Reason      string
}

// Return appends a return to the item's ledger, symmetric to Sell.
func (s *Service) Return(ctx context.Context, principal shared.Principal, input ReturnInput) error {
	item, err := s.repo.GetOrderItem(ctx, input.OrderItemID, principal.ID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return shared.Validation(shared.FieldErrors{"order_item_id": {"The specified order item does not exist."}})
		}
		return shared.Internal("Failed to record return.", err)
	}

	ret := Return{
		OrderItemID:      item.ID,
		QuantityReturned: input.Quantity,
		Reason:           input.Reason,
		ReturnDate:       s.now(),
	}
	if err := s.repo.RecordReturn(ctx, ret); err != nil {
		var exceeded *LedgerExceeded
		if errors.As(err, &exceeded) {
			return shared.Insufficient(fmt.Sprintf("You can only return up to %d items.", exceeded.Available))
		}
		return shared.Internal("Failed to record return.", err)
	}

	s.record(ctx, principal, "biker_return.recorded", item.OrderID, map[string]any{"order_item_id": item.ID, "quantity": input.Quantity})
	s.count("returned")
	return nil
}

// Complete reconciles every item and, only when all of them balance
// exactly, marks the order complete. Validation happens before any
// mutation.
func (s *Service) Complete(ctx context.Context, principal shared.Principal, orderID int64) error {
	order, err := s.getOrder(ctx, principal, orderID)
	if err != nil {
		return err
	}
	if order.Status != StatusActive {
		return shared.StateConflict("Order is not active.")
	}

	lines, err := s.repo.OrderTallies(ctx, orderID)
	if err != nil {
		return shared.Internal("Failed to complete order.", err)
	}
	if len(lines) == 0 {
		return shared.NotFound("No items found in this biker order.")
	}

	if mismatch := Reconcile(lines); mismatch != nil {
		if mismatch.Over {
			return shared.Reconciliation(fmt.Sprintf("Over reconciliation for product ID %d. Too many items recorded.", mismatch.ProductID))
		}
		return shared.Reconciliation(fmt.Sprintf("Reconciliation failed for product ID %d. Missing %d items.", mismatch.ProductID, mismatch.Missing))
	}

	if err := s.repo.CompleteOrder(ctx, orderID, s.now()); err != nil {
		if errors.Is(err, ErrStateConflict) {
			return shared.StateConflict("Order is not active.")
		}
		return shared.Internal("Failed to complete order.", err)
	}

	s.record(ctx, principal, "biker_order.completed", orderID, nil)
	s.count("completed")
	return nil
}

// CloseResult is the payout summary returned when an order closes.
type CloseResult struct {
	Sales      float64 `json:"sales"`
	Commission float64 `json:"commission"`
	BikerID    int64   `json:"biker_id"`
}

// Close marks a completed order closed and records the biker's
// commission on its sales total.
func (s *Service) Close(ctx context.Context, principal shared.Principal, orderID int64) (CloseResult, error) {
	order, err := s.getOrder(ctx, principal, orderID)
	if err != nil {
		return CloseResult{}, err
	}
	if order.Status != StatusComplete {
		return CloseResult{}, shared.StateConflict("Cannot close an order unless it is marked complete.")
	}

	sales, err := s.repo.SalesTotal(ctx, orderID)
	if err != nil {
		return CloseResult{}, shared.Internal("Failed to close order.", err)
	}
	amount := CommissionAmount(sales, s.commissionPercent)

	commission := Commission{
		OrderID:     orderID,
		BikerID:     order.BikerID,
		SalesAmount: sales,
		Commission:  amount,
		Percentage:  s.commissionPercent,
	}
	if err := s.repo.CloseOrder(ctx, orderID, commission); err != nil {
		if errors.Is(err, ErrStateConflict) {
			return CloseResult{}, shared.StateConflict("Cannot close an order unless it is marked complete.")
		}
		return CloseResult{}, shared.Internal("Failed to close order.", err)
	}

	s.record(ctx, principal, "biker_order.closed", orderID, map[string]any{"sales": sales, "commission": amount})
	s.count("closed")
	return CloseResult{Sales: sales, Commission: amount, BikerID: order.BikerID}, nil
}

// ListOrders returns the calling biker's orders.
func (s *Service) ListOrders(ctx context.Context, principal shared.Principal) ([]Order, error) {
	orders, err := s.repo.ListOrders(ctx, principal.ID)
	if err != nil {
		return nil, shared.Internal("Failed to load orders.", err)
	}
	return orders, nil
}

// OrderItems returns the items on one of the caller's orders.
func (s *Service) OrderItems(ctx context.Context, principal shared.Principal, orderID int64) ([]OrderItem, error) {
	if _, err := s.getOrder(ctx, principal, orderID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, shared.Internal("Failed to load order items.", err)
	}
	return items, nil
}

func (s *Service) getOrder(ctx context.Context, principal shared.Principal, orderID int64) (Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID, principal.ID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return Order{}, shared.NotFound("Order not found.")
		}
		return Order{}, shared.Internal("Failed to load order.", err)
	}
	return order, nil
}

func (s *Service) record(ctx context.Context, principal shared.Principal, action string, orderID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "biker_order",
		EntityID: fmt.Sprintf("%d", orderID),
		Meta:     meta,
	})
}

func (s *Service) count(event string) {
	if s.events != nil {
		s.events.OrderEvent("biker", event)
	}
}

package biker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/juku001/SellazEngine/internal/shared"
)

type stockKey struct {
	dealerID  int64
	productID int64
}

type memRepo struct {
	orderSeq int64
	itemSeq  int64

	orders  map[int64]Order
	items   map[int64]OrderItem
	sales   []Sale
	returns []Return
	closed  []Commission

	stock      map[stockKey]int64
	stockPrice map[stockKey]float64
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:     map[int64]Order{},
		items:      map[int64]OrderItem{},
		stock:      map[stockKey]int64{},
		stockPrice: map[stockKey]float64{},
	}
}

func (m *memRepo) StockPrices(_ context.Context, superDealerID int64, ids []int64) (map[int64]float64, error) {
	out := map[int64]float64{}
	for _, id := range ids {
		if price, ok := m.stockPrice[stockKey{superDealerID, id}]; ok {
			out[id] = price
		}
	}
	return out, nil
}

func (m *memRepo) CreateOrder(_ context.Context, order Order, items []OrderItem) (Order, error) {
	m.orderSeq++
	order.ID = m.orderSeq
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = order
	for _, item := range items {
		m.itemSeq++
		item.ID = m.itemSeq
		item.OrderID = order.ID
		m.items[item.ID] = item
	}
	return order, nil
}

func (m *memRepo) GetOrder(_ context.Context, id, bikerID int64) (Order, error) {
	order, ok := m.orders[id]
	if !ok || order.BikerID != bikerID {
		return Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (m *memRepo) ListOrders(_ context.Context, bikerID int64) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.BikerID == bikerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) ListOrderItems(_ context.Context, orderID int64) ([]OrderItem, error) {
	var out []OrderItem
	for id := int64(1); id <= m.itemSeq; id++ {
		if item, ok := m.items[id]; ok && item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memRepo) GetOrderItem(_ context.Context, itemID, bikerID int64) (OrderItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return OrderItem{}, ErrItemNotFound
	}
	order := m.orders[item.OrderID]
	if order.BikerID != bikerID {
		return OrderItem{}, ErrItemNotFound
	}
	return item, nil
}

func (m *memRepo) ActivateOrder(_ context.Context, order Order, items []OrderItem) error {
	stored, ok := m.orders[order.ID]
	if !ok || stored.Status != StatusPending {
		return ErrStateConflict
	}
	// Stage deductions so a failed line leaves stock untouched.
	staged := map[stockKey]int64{}
	for _, item := range items {
		key := stockKey{order.SuperDealerID, item.ProductID}
		available, ok := m.stock[key]
		if !ok {
			return &StockMissing{ProductID: item.ProductID}
		}
		if available-staged[key] < item.Quantity {
			return &StockShortage{ProductID: item.ProductID, Available: available - staged[key]}
		}
		staged[key] += item.Quantity
	}
	for key, qty := range staged {
		m.stock[key] -= qty
	}
	now := time.Now()
	stored.Status = StatusActive
	stored.ReceivedAt = &now
	m.orders[order.ID] = stored
	return nil
}

func (m *memRepo) DeleteOrder(_ context.Context, id int64) error {
	delete(m.orders, id)
	for itemID, item := range m.items {
		if item.OrderID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *memRepo) available(itemID int64) int64 {
	item := m.items[itemID]
	remaining := item.Quantity
	for _, s := range m.sales {
		if s.OrderItemID == itemID {
			remaining -= s.QuantitySold
		}
	}
	for _, r := range m.returns {
		if r.OrderItemID == itemID {
			remaining -= r.QuantityReturned
		}
	}
	return remaining
}

func (m *memRepo) RecordSale(_ context.Context, sale Sale) error {
	if _, ok := m.items[sale.OrderItemID]; !ok {
		return ErrItemNotFound
	}
	if available := m.available(sale.OrderItemID); sale.QuantitySold > available {
		return &LedgerExceeded{Available: available}
	}
	m.sales = append(m.sales, sale)
	return nil
}

func (m *memRepo) RecordReturn(_ context.Context, ret Return) error {
	if _, ok := m.items[ret.OrderItemID]; !ok {
		return ErrItemNotFound
	}
	if available := m.available(ret.OrderItemID); ret.QuantityReturned > available {
		return &LedgerExceeded{Available: available}
	}
	m.returns = append(m.returns, ret)
	return nil
}

func (m *memRepo) OrderTallies(_ context.Context, orderID int64) ([]ReconcileLine, error) {
	var lines []ReconcileLine
	for id := int64(1); id <= m.itemSeq; id++ {
		item, ok := m.items[id]
		if !ok || item.OrderID != orderID {
			continue
		}
		line := ReconcileLine{ProductID: item.ProductID, Ordered: item.Quantity}
		for _, s := range m.sales {
			if s.OrderItemID == item.ID {
				line.Sold += s.QuantitySold
			}
		}
		for _, r := range m.returns {
			if r.OrderItemID == item.ID {
				line.Returned += r.QuantityReturned
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (m *memRepo) CompleteOrder(_ context.Context, id int64, completedAt time.Time) error {
	order, ok := m.orders[id]
	if !ok || order.Status != StatusActive {
		return ErrStateConflict
	}
	order.Status = StatusComplete
	order.CompletedAt = &completedAt
	m.orders[id] = order
	return nil
}

func (m *memRepo) SalesTotal(_ context.Context, orderID int64) (float64, error) {
	var total float64
	for _, s := range m.sales {
		if item, ok := m.items[s.OrderItemID]; ok && item.OrderID == orderID {
			total += float64(s.QuantitySold) * s.UnitPrice
		}
	}
	return total, nil
}

func (m *memRepo) CloseOrder(_ context.Context, orderID int64, commission Commission) error {
	order, ok := m.orders[orderID]
	if !ok || order.Status != StatusComplete {
		return ErrStateConflict
	}
	order.Status = StatusClosed
	m.orders[orderID] = order
	m.closed = append(m.closed, commission)
	return nil
}

func bikerPrincipal() shared.Principal {
	return shared.Principal{ID: 42, Role: shared.RoleBiker, CompanyID: 1, SuperDealerID: 5}
}

func newTestService(repo *memRepo) *Service {
	svc := NewService(repo, nil, nil, nil, 15)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func seedStock(repo *memRepo, productID, qty int64, price float64) {
	key := stockKey{5, productID}
	repo.stock[key] = qty
	repo.stockPrice[key] = price
}

func asAPIError(t *testing.T, err error) *shared.Error {
	t.Helper()
	var apiErr *shared.Error
	require.True(t, errors.As(err, &apiErr), "expected API error, got %v", err)
	return apiErr
}

func TestRequestSnapshotsDealerPrices(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	seedStock(repo, 101, 20, 500)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{
		{ProductID: 100, Quantity: 10},
		{ProductID: 101, Quantity: 2},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, float64(10*1000+2*500), order.TotalAmount)
	require.Equal(t, int64(50), repo.stock[stockKey{5, 100}], "request must not touch stock")
}

func TestRequestUnstockedProductFailsWhole(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	_, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{
		{ProductID: 100, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	})
	apiErr := asAPIError(t, err)
	require.Equal(t, 500, apiErr.Code)
	require.Equal(t, "Order creation failed.", apiErr.Message)
	require.Contains(t, apiErr.Fields["error"][0], "Product ID 999 not found for this company.")
	require.Empty(t, repo.orders)
}

func TestActivateDeductsStock(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 10}})
	require.NoError(t, err)

	require.NoError(t, svc.Activate(context.Background(), bikerPrincipal(), order.ID))
	require.Equal(t, int64(40), repo.stock[stockKey{5, 100}])
	require.Equal(t, StatusActive, repo.orders[order.ID].Status)
	require.NotNil(t, repo.orders[order.ID].ReceivedAt)

	err = svc.Activate(context.Background(), bikerPrincipal(), order.ID)
	apiErr := asAPIError(t, err)
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "Order already active or closed.", apiErr.Message)
}

func TestActivateInsufficientStockRollsBack(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	seedStock(repo, 101, 3, 500)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{
		{ProductID: 100, Quantity: 10},
		{ProductID: 101, Quantity: 5},
	})
	require.NoError(t, err)

	err = svc.Activate(context.Background(), bikerPrincipal(), order.ID)
	apiErr := asAPIError(t, err)
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "Insufficient stock for product ID 101. Only 3 available.", apiErr.Message)
	require.Equal(t, int64(50), repo.stock[stockKey{5, 100}], "no partial deduction")
}

func TestActivateMissingStockRow(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 1}})
	require.NoError(t, err)
	// Dealer's stock row vanishes between request and activation.
	delete(repo.stock, stockKey{5, 100})

	err = svc.Activate(context.Background(), bikerPrincipal(), order.ID)
	apiErr := asAPIError(t, err)
	require.Equal(t, 404, apiErr.Code)
	require.Equal(t, "Stock not found for product ID 100.", apiErr.Message)
}

func TestDeleteOnlyPending(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, svc.Activate(context.Background(), bikerPrincipal(), order.ID))

	err = svc.Delete(context.Background(), bikerPrincipal(), order.ID)
	apiErr := asAPIError(t, err)
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "Can not delete an active order.", apiErr.Message)

	pending, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), bikerPrincipal(), pending.ID))
	_, ok := repo.orders[pending.ID]
	require.False(t, ok)
}

func TestSellRejectsOverLedger(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 10}})
	require.NoError(t, err)
	require.NoError(t, svc.Activate(context.Background(), bikerPrincipal(), order.ID))
	items, err := svc.OrderItems(context.Background(), bikerPrincipal(), order.ID)
	require.NoError(t, err)

	err = svc.Sell(context.Background(), bikerPrincipal(), SellInput{
		OrderItemID: items[0].ID, CustomerName: "Asha", Location: "Kariakoo", Quantity: 11,
	})
	apiErr := asAPIError(t, err)
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "You only have 10 items left to sell.", apiErr.Message)
	require.Empty(t, repo.sales, "ledger unchanged after rejection")
}

func TestReturnRejectsOverLedger(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 10}})
	require.NoError(t, err)
	require.NoError(t, svc.Activate(context.Background(), bikerPrincipal(), order.ID))
	items, err := svc.OrderItems(context.Background(), bikerPrincipal(), order.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Sell(context.Background(), bikerPrincipal(), SellInput{
		OrderItemID: items[0].ID, CustomerName: "Asha", Location: "Kariakoo", Quantity: 6,
	}))

	err = svc.Return(context.Background(), bikerPrincipal(), ReturnInput{OrderItemID: items[0].ID, Quantity: 5})
	apiErr := asAPIError(t, err)
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "You can only return up to 4 items.", apiErr.Message)
	require.Empty(t, repo.returns)
}

func TestCompleteRequiresExactReconciliation(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 10}})
	require.NoError(t, err)
	require.NoError(t, svc.Activate(context.Background(), bikerPrincipal(), order.ID))
	items, err := svc.OrderItems(context.Background(), bikerPrincipal(), order.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Sell(context.Background(), bikerPrincipal(), SellInput{
		OrderItemID: items[0].ID, CustomerName: "Asha", Location: "Kariakoo", Quantity: 6,
	}))

	err = svc.Complete(context.Background(), bikerPrincipal(), order.ID)
	apiErr := asAPIError(t, err)
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "Reconciliation failed for product ID 100. Missing 4 items.", apiErr.Message)
	require.Equal(t, StatusActive, repo.orders[order.ID].Status, "status untouched on mismatch")

	require.NoError(t, svc.Return(context.Background(), bikerPrincipal(), ReturnInput{OrderItemID: items[0].ID, Quantity: 4, Reason: "unsold"}))
	require.NoError(t, svc.Complete(context.Background(), bikerPrincipal(), order.ID))
	require.Equal(t, StatusComplete, repo.orders[order.ID].Status)
	require.NotNil(t, repo.orders[order.ID].CompletedAt)
}

func TestCloseRecordsCommission(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 10}})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), bikerPrincipal(), order.ID)
	apiErr := asAPIError(t, err)
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "Cannot close an order unless it is marked complete.", apiErr.Message)

	require.NoError(t, svc.Activate(context.Background(), bikerPrincipal(), order.ID))
	items, err := svc.OrderItems(context.Background(), bikerPrincipal(), order.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Sell(context.Background(), bikerPrincipal(), SellInput{
		OrderItemID: items[0].ID, CustomerName: "Asha", Location: "Kariakoo", Quantity: 6,
	}))
	require.NoError(t, svc.Return(context.Background(), bikerPrincipal(), ReturnInput{OrderItemID: items[0].ID, Quantity: 4}))
	require.NoError(t, svc.Complete(context.Background(), bikerPrincipal(), order.ID))

	result, err := svc.Close(context.Background(), bikerPrincipal(), order.ID)
	require.NoError(t, err)
	require.Equal(t, float64(6000), result.Sales)
	require.Equal(t, float64(900), result.Commission)
	require.Equal(t, int64(42), result.BikerID)
	require.Equal(t, StatusClosed, repo.orders[order.ID].Status)

	require.Len(t, repo.closed, 1)
	require.Equal(t, float64(15), repo.closed[0].Percentage)
}

func TestWorkflowScopedToOwner(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 1}})
	require.NoError(t, err)

	other := shared.Principal{ID: 77, Role: shared.RoleBiker, CompanyID: 1, SuperDealerID: 5}
	err = svc.Activate(context.Background(), other, order.ID)
	apiErr := asAPIError(t, err)
	require.Equal(t, 404, apiErr.Code)
	require.Equal(t, "Order not found.", apiErr.Message)
}

package dealer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/juku001/SellazEngine/internal/catalog"
	"github.com/juku001/SellazEngine/internal/shared"
)

type stockKey struct {
	dealerID  int64
	productID int64
}

type memRepo struct {
	seq        int64
	orders     map[int64]Order
	items      map[int64][]OrderItem
	stock      map[stockKey]int64
	stockPrice map[stockKey]float64
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:     map[int64]Order{},
		items:      map[int64][]OrderItem{},
		stock:      map[stockKey]int64{},
		stockPrice: map[stockKey]float64{},
	}
}

func (m *memRepo) CreateOrder(_ context.Context, order Order, items []OrderItem) (Order, error) {
	m.seq++
	order.ID = m.seq
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = order
	for i := range items {
		items[i].OrderID = order.ID
	}
	m.items[order.ID] = items
	return order, nil
}

func (m *memRepo) GetOrder(_ context.Context, id, companyID int64) (Order, error) {
	order, ok := m.orders[id]
	if !ok || order.CompanyID != companyID {
		return Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (m *memRepo) GetDealerOrder(_ context.Context, id, superDealerID int64) (Order, error) {
	order, ok := m.orders[id]
	if !ok || order.SuperDealerID != superDealerID {
		return Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (m *memRepo) ListOrderItems(_ context.Context, orderID int64) ([]OrderItem, error) {
	return m.items[orderID], nil
}

func (m *memRepo) SetStatus(_ context.Context, id, companyID int64, status string) (Order, error) {
	order, ok := m.orders[id]
	if !ok || order.CompanyID != companyID || order.Status != StatusPending {
		return Order{}, ErrOrderNotFound
	}
	order.Status = status
	m.orders[id] = order
	return order, nil
}

func (m *memRepo) FulfillOrder(_ context.Context, order Order, items []OrderItem, pricePolicy string, dateToPay time.Time) error {
	stored, ok := m.orders[order.ID]
	if !ok || stored.Status != StatusApproved {
		return ErrNotApproved
	}
	for _, item := range items {
		key := stockKey{order.SuperDealerID, item.ProductID}
		m.stock[key] += item.Quantity
		if _, exists := m.stockPrice[key]; !exists || pricePolicy == PriceRefresh {
			m.stockPrice[key] = item.UnitPrice
		}
	}
	stored.Status = StatusFulfilled
	stored.DateToPay = dateToPay
	m.orders[order.ID] = stored
	return nil
}

func (m *memRepo) ListForCompany(_ context.Context, companyID int64) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.CompanyID == companyID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) ListForDealer(_ context.Context, superDealerID int64) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.SuperDealerID == superDealerID {
			out = append(out, o)
		}
	}
	return out, nil
}

type memCatalog struct {
	products map[int64]catalog.Product
}

func (m *memCatalog) ProductsForCompany(_ context.Context, ids []int64, companyID int64) (map[int64]catalog.Product, error) {
	out := map[int64]catalog.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok && p.CompanyID == companyID {
			out[id] = p
		}
	}
	return out, nil
}

func newTestService(repo *memRepo, cat *memCatalog) *Service {
	svc := NewService(repo, cat, nil, nil, nil, 7, "keep")
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func dealerPrincipal() shared.Principal {
	return shared.Principal{ID: 10, Role: shared.RoleSuperDealer, CompanyID: 1, SuperDealerID: 5}
}

func adminPrincipal() shared.Principal {
	return shared.Principal{ID: 1, Role: shared.RoleSuperAdmin, CompanyID: 1}
}

func seedCatalog() *memCatalog {
	return &memCatalog{products: map[int64]catalog.Product{
		100: {ID: 100, CompanyID: 1, Name: "Cola 500ml", CompanyPrice: 1000},
		101: {ID: 101, CompanyID: 1, Name: "Water 1L", CompanyPrice: 500},
		200: {ID: 200, CompanyID: 2, Name: "Other Co Juice", CompanyPrice: 700},
	}}
}

func TestRequestRejectsNonDealer(t *testing.T) {
	svc := newTestService(newMemRepo(), seedCatalog())

	_, err := svc.Request(context.Background(), adminPrincipal(), []RequestItem{{ProductID: 100, Quantity: 1}})
	var apiErr *shared.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 403, apiErr.Code)
	require.Equal(t, "Only super dealers can place orders.", apiErr.Message)
}

func TestRequestUnknownProductFailsWhole(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, seedCatalog())

	_, err := svc.Request(context.Background(), dealerPrincipal(), []RequestItem{
		{ProductID: 100, Quantity: 2},
		{ProductID: 999, Quantity: 1},
	})
	var apiErr *shared.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 500, apiErr.Code)
	require.Equal(t, "Order creation failed.", apiErr.Message)
	require.Contains(t, apiErr.Fields["error"][0], "Product ID 999 not found for this company.")
	require.Empty(t, repo.orders, "nothing persisted when one line is invalid")
}

func TestRequestRejectsOtherCompanyProduct(t *testing.T) {
	svc := newTestService(newMemRepo(), seedCatalog())

	_, err := svc.Request(context.Background(), dealerPrincipal(), []RequestItem{{ProductID: 200, Quantity: 1}})
	var apiErr *shared.Error
	require.True(t, errors.As(err, &apiErr))
	require.Contains(t, apiErr.Fields["error"][0], "Product ID 200 not found for this company.")
}

func TestRequestSnapshotsPricesAndTotal(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, seedCatalog())

	order, err := svc.Request(context.Background(), dealerPrincipal(), []RequestItem{
		{ProductID: 100, Quantity: 3},
		{ProductID: 101, Quantity: 4},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, float64(3*1000+4*500), order.Total)
	require.Equal(t, time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), order.DateToPay)

	items := repo.items[order.ID]
	require.Len(t, items, 2)
	require.Equal(t, float64(1000), items[0].UnitPrice)
	require.Equal(t, float64(500), items[1].UnitPrice)
}

func TestSetStatusOnlyFromPending(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, seedCatalog())

	order, err := svc.Request(context.Background(), dealerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 1}})
	require.NoError(t, err)

	approved, err := svc.SetStatus(context.Background(), adminPrincipal(), order.ID, StatusApproved)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)

	_, err = svc.SetStatus(context.Background(), adminPrincipal(), order.ID, StatusRejected)
	var apiErr *shared.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "Order already processed.", apiErr.Message)
}

func TestFulfillRequiresApproval(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, seedCatalog())

	order, err := svc.Request(context.Background(), dealerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.Fulfill(context.Background(), adminPrincipal(), order.ID)
	var apiErr *shared.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 400, apiErr.Code)
	require.Equal(t, "Approve order first.", apiErr.Message)
}

func TestFulfillUpsertsStockOnce(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, seedCatalog())

	order, err := svc.Request(context.Background(), dealerPrincipal(), []RequestItem{
		{ProductID: 100, Quantity: 5},
		{ProductID: 101, Quantity: 2},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), adminPrincipal(), order.ID, StatusApproved)
	require.NoError(t, err)

	fulfilled, err := svc.Fulfill(context.Background(), adminPrincipal(), order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFulfilled, fulfilled.Status)
	require.Equal(t, int64(5), repo.stock[stockKey{5, 100}])
	require.Equal(t, int64(2), repo.stock[stockKey{5, 101}])
	require.Equal(t, float64(1000), repo.stockPrice[stockKey{5, 100}])

	// A second fulfillment must not double the stock.
	_, err = svc.Fulfill(context.Background(), adminPrincipal(), order.ID)
	var apiErr *shared.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Approve order first.", apiErr.Message)
	require.Equal(t, int64(5), repo.stock[stockKey{5, 100}])
}

type memStockCache struct {
	invalidated []int64
}

func (m *memStockCache) Invalidate(_ context.Context, superDealerID int64) {
	m.invalidated = append(m.invalidated, superDealerID)
}

func TestFulfillInvalidatesStockCache(t *testing.T) {
	repo := newMemRepo()
	cache := &memStockCache{}
	svc := newTestService(repo, seedCatalog())
	svc.stockCache = cache

	order, err := svc.Request(context.Background(), dealerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 5}})
	require.NoError(t, err)
	require.Empty(t, cache.invalidated, "request must not touch the cache")

	_, err = svc.SetStatus(context.Background(), adminPrincipal(), order.ID, StatusApproved)
	require.NoError(t, err)
	require.Empty(t, cache.invalidated, "approval must not touch the cache")

	_, err = svc.Fulfill(context.Background(), adminPrincipal(), order.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{5}, cache.invalidated, "fulfillment drops the dealer's cached balance")
}

func TestDealerOrderItemsScopedToOwner(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, seedCatalog())

	order, err := svc.Request(context.Background(), dealerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 1}})
	require.NoError(t, err)

	other := shared.Principal{ID: 11, Role: shared.RoleSuperDealer, CompanyID: 1, SuperDealerID: 6}
	_, err = svc.DealerOrderItems(context.Background(), other, order.ID)
	var apiErr *shared.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 404, apiErr.Code)

	items, err := svc.DealerOrderItems(context.Background(), dealerPrincipal(), order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

package dealer

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juku001/SellazEngine/internal/platform/db"
)

// PriceRefresh is the stock price policy that overwrites a stored unit
// price with the fulfilled order item's price. Any other value keeps the
// stored price.
const PriceRefresh = "refresh"

// Repository provides PostgreSQL backed persistence for dealer orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, super_dealer_id, company_id, status, total, date_to_pay, is_paid, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.SuperDealerID, &o.CompanyID, &o.Status, &o.Total, &o.DateToPay, &o.IsPaid, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

// CreateOrder inserts the order and its items in one transaction.
func (r *Repository) CreateOrder(ctx context.Context, order Order, items []OrderItem) (Order, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO dealer_orders (super_dealer_id, company_id, status, total, date_to_pay) VALUES ($1, $2, $3, $4, $5) RETURNING `+orderColumns,
			order.SuperDealerID, order.CompanyID, order.Status, order.Total, order.DateToPay).
			Scan(&order.ID, &order.SuperDealerID, &order.CompanyID, &order.Status, &order.Total, &order.DateToPay, &order.IsPaid, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}
		for _, item := range items {
			_, err := tx.Exec(ctx, `INSERT INTO dealer_order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
				order.ID, item.ProductID, item.Quantity, item.UnitPrice)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// GetOrder fetches one order within a company's scope.
func (r *Repository) GetOrder(ctx context.Context, id, companyID int64) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM dealer_orders WHERE id = $1 AND company_id = $2`, id, companyID)
	return scanOrder(row)
}

// GetDealerOrder fetches one order belonging to a super dealer.
func (r *Repository) GetDealerOrder(ctx context.Context, id, superDealerID int64) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM dealer_orders WHERE id = $1 AND super_dealer_id = $2`, id, superDealerID)
	return scanOrder(row)
}

// ListOrderItems returns the items on one order.
func (r *Repository) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, quantity, unit_price FROM dealer_order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]OrderItem, error) {
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetStatus moves a pending order to approved or rejected. Returns
// ErrOrderNotFound when the order is absent or already processed.
func (r *Repository) SetStatus(ctx context.Context, id, companyID int64, status string) (Order, error) {
	row := r.pool.QueryRow(ctx, `UPDATE dealer_orders SET status = $3, updated_at = now() WHERE id = $1 AND company_id = $2 AND status = 'pending' RETURNING `+orderColumns,
		id, companyID, status)
	return scanOrder(row)
}

// FulfillOrder upserts the ordered quantities into the dealer's stock and
// marks the order fulfilled, all in one transaction. The price policy
// decides whether an existing stock row keeps its stored unit price or
// takes the order item's. The guard on status makes a concurrent double
// fulfillment fail with ErrNotApproved.
func (r *Repository) FulfillOrder(ctx context.Context, order Order, items []OrderItem, pricePolicy string, dateToPay time.Time) error {
	upsert := `INSERT INTO super_dealer_stocks (super_dealer_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (super_dealer_id, product_id)
		DO UPDATE SET quantity = super_dealer_stocks.quantity + EXCLUDED.quantity, updated_at = now()`
	if pricePolicy == PriceRefresh {
		upsert = `INSERT INTO super_dealer_stocks (super_dealer_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (super_dealer_id, product_id)
		DO UPDATE SET quantity = super_dealer_stocks.quantity + EXCLUDED.quantity, unit_price = EXCLUDED.unit_price, updated_at = now()`
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE dealer_orders SET status = 'fulfilled', date_to_pay = $2, updated_at = now() WHERE id = $1 AND status = 'approved'`,
			order.ID, dateToPay)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotApproved
		}
		for _, item := range items {
			_, err := tx.Exec(ctx, upsert, order.SuperDealerID, item.ProductID, item.Quantity, item.UnitPrice)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListForCompany returns a company's dealer orders, newest first.
func (r *Repository) ListForCompany(ctx context.Context, companyID int64) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM dealer_orders WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListForDealer returns a super dealer's own orders, newest first.
func (r *Repository) ListForDealer(ctx context.Context, superDealerID int64) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM dealer_orders WHERE super_dealer_id = $1 ORDER BY created_at DESC`, superDealerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.SuperDealerID, &o.CompanyID, &o.Status, &o.Total, &o.DateToPay, &o.IsPaid, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

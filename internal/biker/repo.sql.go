package biker

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juku001/SellazEngine/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for biker orders and
// their sale/return ledgers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, super_dealer_id, biker_id, status, total_amount, received_at, completed_at, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.SuperDealerID, &o.BikerID, &o.Status, &o.TotalAmount, &o.ReceivedAt, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

// StockPrices returns the dealer's unit price per product id for the
// requested products. Products the dealer holds no stock row for are
// absent from the map.
func (r *Repository) StockPrices(ctx context.Context, superDealerID int64, ids []int64) (map[int64]float64, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, unit_price FROM super_dealer_stocks WHERE super_dealer_id = $1 AND product_id = ANY($2)`, superDealerID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	prices := make(map[int64]float64, len(ids))
	for rows.Next() {
		var productID int64
		var price float64
		if err := rows.Scan(&productID, &price); err != nil {
			return nil, err
		}
		prices[productID] = price
	}
	return prices, rows.Err()
}

// CreateOrder inserts the order and its items in one transaction.
func (r *Repository) CreateOrder(ctx context.Context, order Order, items []OrderItem) (Order, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO biker_orders (super_dealer_id, biker_id, status, total_amount) VALUES ($1, $2, $3, $4) RETURNING `+orderColumns,
			order.SuperDealerID, order.BikerID, order.Status, order.TotalAmount).
			Scan(&order.ID, &order.SuperDealerID, &order.BikerID, &order.Status, &order.TotalAmount, &order.ReceivedAt, &order.CompletedAt, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}
		for _, item := range items {
			_, err := tx.Exec(ctx, `INSERT INTO biker_order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
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

// GetOrder fetches one order belonging to a biker.
func (r *Repository) GetOrder(ctx context.Context, id, bikerID int64) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM biker_orders WHERE id = $1 AND biker_id = $2`, id, bikerID)
	return scanOrder(row)
}

// ListOrders returns a biker's orders, newest first.
func (r *Repository) ListOrders(ctx context.Context, bikerID int64) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM biker_orders WHERE biker_id = $1 ORDER BY created_at DESC`, bikerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.SuperDealerID, &o.BikerID, &o.Status, &o.TotalAmount, &o.ReceivedAt, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrderItems returns the items on one order.
func (r *Repository) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, quantity, unit_price FROM biker_order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
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

// GetOrderItem fetches one order item, scoped through its order to the
// calling biker.
func (r *Repository) GetOrderItem(ctx context.Context, itemID, bikerID int64) (OrderItem, error) {
	var it OrderItem
	err := r.pool.QueryRow(ctx, `SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price
		FROM biker_order_items i
		JOIN biker_orders o ON o.id = i.order_id
		WHERE i.id = $1 AND o.biker_id = $2`, itemID, bikerID).
		Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderItem{}, ErrItemNotFound
	}
	return it, err
}

// ActivateOrder marks the order active and deducts every item from the
// dealer's stock in one transaction. Stock rows are locked item by item;
// a missing row or a shortage aborts and rolls back every deduction.
func (r *Repository) ActivateOrder(ctx context.Context, order Order, items []OrderItem) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE biker_orders SET status = 'active', received_at = now(), updated_at = now() WHERE id = $1 AND status = 'pending'`, order.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}
		for _, item := range items {
			var available int64
			err := tx.QueryRow(ctx, `SELECT quantity FROM super_dealer_stocks WHERE super_dealer_id = $1 AND product_id = $2 FOR UPDATE`,
				order.SuperDealerID, item.ProductID).Scan(&available)
			if errors.Is(err, pgx.ErrNoRows) {
				return &StockMissing{ProductID: item.ProductID}
			}
			if err != nil {
				return err
			}
			if available < item.Quantity {
				return &StockShortage{ProductID: item.ProductID, Available: available}
			}
			_, err = tx.Exec(ctx, `UPDATE super_dealer_stocks SET quantity = quantity - $3, updated_at = now() WHERE super_dealer_id = $1 AND product_id = $2`,
				order.SuperDealerID, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteOrder removes a pending order with its items and any ledger rows.
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM biker_sales WHERE order_item_id IN (SELECT id FROM biker_order_items WHERE order_id = $1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM biker_returns WHERE order_item_id IN (SELECT id FROM biker_order_items WHERE order_id = $1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM biker_order_items WHERE order_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM biker_orders WHERE id = $1`, id)
		return err
	})
}

// RecordSale appends a sale after checking the item's remaining quantity
// under a row lock. Exceeding the ledger returns LedgerExceeded carrying
// what is still available.
func (r *Repository) RecordSale(ctx context.Context, sale Sale) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		available, err := lockedAvailable(ctx, tx, sale.OrderItemID)
		if err != nil {
			return err
		}
		if sale.QuantitySold > available {
			return &LedgerExceeded{Available: available}
		}
		_, err = tx.Exec(ctx, `INSERT INTO biker_sales (order_item_id, quantity_sold, unit_price, customer_name, location, sale_date) VALUES ($1, $2, $3, $4, $5, $6)`,
			sale.OrderItemID, sale.QuantitySold, sale.UnitPrice, sale.CustomerName, sale.Location, sale.SaleDate)
		return err
	})
}

// RecordReturn appends a return under the same row lock and ledger check
// as RecordSale.
func (r *Repository) RecordReturn(ctx context.Context, ret Return) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		available, err := lockedAvailable(ctx, tx, ret.OrderItemID)
		if err != nil {
			return err
		}
		if ret.QuantityReturned > available {
			return &LedgerExceeded{Available: available}
		}
		_, err = tx.Exec(ctx, `INSERT INTO biker_returns (order_item_id, quantity_returned, reason, return_date) VALUES ($1, $2, $3, $4)`,
			ret.OrderItemID, ret.QuantityReturned, ret.Reason, ret.ReturnDate)
		return err
	})
}

// lockedAvailable locks the order item row and returns how many items the
// ledger can still absorb: ordered minus everything sold and returned.
func lockedAvailable(ctx context.Context, tx pgx.Tx, itemID int64) (int64, error) {
	var ordered int64
	err := tx.QueryRow(ctx, `SELECT quantity FROM biker_order_items WHERE id = $1 FOR UPDATE`, itemID).Scan(&ordered)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, err
	}
	var sold, returned int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(quantity_sold), 0) FROM biker_sales WHERE order_item_id = $1`, itemID).Scan(&sold); err != nil {
		return 0, err
	}
	if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(quantity_returned), 0) FROM biker_returns WHERE order_item_id = $1`, itemID).Scan(&returned); err != nil {
		return 0, err
	}
	return ordered - (sold + returned), nil
}

// OrderTallies returns one reconciliation line per order item with its
// sold and returned sums.
func (r *Repository) OrderTallies(ctx context.Context, orderID int64) ([]ReconcileLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.product_id, i.quantity,
			COALESCE((SELECT SUM(s.quantity_sold) FROM biker_sales s WHERE s.order_item_id = i.id), 0),
			COALESCE((SELECT SUM(rt.quantity_returned) FROM biker_returns rt WHERE rt.order_item_id = i.id), 0)
		FROM biker_order_items i
		WHERE i.order_id = $1
		ORDER BY i.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []ReconcileLine
	for rows.Next() {
		var line ReconcileLine
		if err := rows.Scan(&line.ProductID, &line.Ordered, &line.Sold, &line.Returned); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// CompleteOrder marks an active order complete. Returns ErrStateConflict
// when the order is no longer active.
func (r *Repository) CompleteOrder(ctx context.Context, id int64, completedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE biker_orders SET status = 'complete', completed_at = $2, updated_at = now() WHERE id = $1 AND status = 'active'`, id, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// SalesTotal sums quantity×price over every sale under the order.
func (r *Repository) SalesTotal(ctx context.Context, orderID int64) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(s.quantity_sold * s.unit_price), 0)
		FROM biker_sales s
		JOIN biker_order_items i ON i.id = s.order_item_id
		WHERE i.order_id = $1`, orderID).Scan(&total)
	return total, err
}

// CloseOrder marks a complete order closed and records the commission in
// one transaction. Returns ErrStateConflict when the order is not in the
// complete status.
func (r *Repository) CloseOrder(ctx context.Context, orderID int64, commission Commission) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE biker_orders SET status = 'closed', updated_at = now() WHERE id = $1 AND status = 'complete'`, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}
		_, err = tx.Exec(ctx, `INSERT INTO biker_commissions (order_id, biker_id, sales_amount, commission, percentage) VALUES ($1, $2, $3, $4, $5)`,
			commission.OrderID, commission.BikerID, commission.SalesAmount, commission.Commission, commission.Percentage)
		return err
	})
}

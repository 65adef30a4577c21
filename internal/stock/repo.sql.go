package stock

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads over super_dealer_stocks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByDealer returns the dealer's stock joined with product names,
// largest positions first.
func (r *Repository) ListByDealer(ctx context.Context, superDealerID int64) ([]Balance, error) {
	rows, err := r.pool.Query(ctx, `SELECT s.product_id, p.name, p.brand, s.quantity, s.unit_price
		FROM super_dealer_stocks s
		JOIN products p ON p.id = s.product_id
		WHERE s.super_dealer_id = $1
		ORDER BY s.quantity DESC, p.name`, superDealerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.ProductID, &b.Name, &b.Brand, &b.Quantity, &b.UnitPrice); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateCompany inserts a company.
func (r *Repository) CreateCompany(ctx context.Context, name string) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Company{}, ErrDuplicate
		}
		return Company{}, err
	}
	return c, nil
}

// GetCompany fetches a company by id.
func (r *Repository) GetCompany(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

// ListCompanies returns all companies ordered by name.
func (r *Repository) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// CreateProduct inserts a product for a company.
func (r *Repository) CreateProduct(ctx context.Context, p Product) (Product, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO products (company_id, name, brand, company_price) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		p.CompanyID, p.Name, p.Brand, p.CompanyPrice).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicate
		}
		return Product{}, err
	}
	return p, nil
}

// ListProducts returns a company's products.
func (r *Repository) ListProducts(ctx context.Context, companyID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, name, brand, company_price, created_at FROM products WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Brand, &p.CompanyPrice, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ProductsForCompany fetches the requested products scoped to a company,
// keyed by product id. Products outside the company are omitted.
func (r *Repository) ProductsForCompany(ctx context.Context, ids []int64, companyID int64) (map[int64]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, name, brand, company_price, created_at FROM products WHERE id = ANY($1) AND company_id = $2`, ids, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make(map[int64]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Brand, &p.CompanyPrice, &p.CreatedAt); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

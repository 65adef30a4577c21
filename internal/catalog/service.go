package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/juku001/SellazEngine/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	CreateCompany(ctx context.Context, name string) (Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	ListProducts(ctx context.Context, companyID int64) ([]Product, error)
	ProductsForCompany(ctx context.Context, ids []int64, companyID int64) (map[int64]Product, error)
}

// Service implements company and product management.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the catalog service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateCompany registers a new company.
func (s *Service) CreateCompany(ctx context.Context, name string) (Company, error) {
	name = strings.TrimSpace(name)
	company, err := s.repo.CreateCompany(ctx, name)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Company{}, shared.Validation(shared.FieldErrors{"name": {"The name has already been taken."}})
		}
		return Company{}, shared.Internal("Company creation failed.", err)
	}
	return company, nil
}

// ListCompanies returns every registered company.
func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, shared.Internal("Failed to load companies.", err)
	}
	return companies, nil
}

// CreateProduct registers a product under a company.
func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if _, err := s.repo.GetCompany(ctx, p.CompanyID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, shared.NotFound("Company not found.")
		}
		return Product{}, shared.Internal("Product creation failed.", err)
	}
	product, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Product{}, shared.Validation(shared.FieldErrors{"name": {"The name has already been taken."}})
		}
		return Product{}, shared.Internal("Product creation failed.", err)
	}
	return product, nil
}

// ListProducts returns the products of one company.
func (s *Service) ListProducts(ctx context.Context, companyID int64) ([]Product, error) {
	if _, err := s.repo.GetCompany(ctx, companyID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NotFound("Company not found.")
		}
		return nil, shared.Internal("Failed to load products.", err)
	}
	products, err := s.repo.ListProducts(ctx, companyID)
	if err != nil {
		return nil, shared.Internal("Failed to load products.", err)
	}
	return products, nil
}

// ProductsForCompany resolves the given product ids within a company.
func (s *Service) ProductsForCompany(ctx context.Context, ids []int64, companyID int64) (map[int64]Product, error) {
	return s.repo.ProductsForCompany(ctx, ids, companyID)
}

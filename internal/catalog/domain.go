// Package catalog holds company and product master data.
package catalog

import (
	"errors"
	"time"
)

// Company is a tenant selling products through super dealers.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Product belongs to one company. CompanyPrice is the price charged to
// super dealers; order items snapshot it at request time, so historical
// orders never change when the price does.
type Product struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	CompanyPrice float64   `json:"company_price"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	// ErrNotFound indicates a missing company or product.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("catalog: duplicate entry")
)

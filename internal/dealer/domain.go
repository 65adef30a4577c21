package dealer

import (
	"errors"
	"time"
)

// Order statuses walk request -> approve/reject -> fulfill.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusFulfilled = "fulfilled"
)

var (
	// ErrOrderNotFound indicates the order does not exist in the caller's scope.
	ErrOrderNotFound = errors.New("dealer: order not found")
	// ErrNotApproved indicates a fulfillment attempt on a non-approved order.
	ErrNotApproved = errors.New("dealer: order not approved")
)

// Order is a super dealer's purchase order against a company.
type Order struct {
	ID            int64     `json:"id"`
	SuperDealerID int64     `json:"super_dealer_id"`
	CompanyID     int64     `json:"company_id"`
	Status        string    `json:"status"`
	Total         float64   `json:"total"`
	DateToPay     time.Time `json:"date_to_pay"`
	IsPaid        bool      `json:"is_paid"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderItem is one product line on a dealer order. UnitPrice is the
// company price snapshotted at request time.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

package biker

import (
	"errors"
	"fmt"
	"time"
)

// Order statuses walk request -> activate -> complete -> close. Rejected
// is terminal and set by the dealer before activation.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusComplete = "complete"
	StatusClosed   = "closed"
	StatusRejected = "rejected"
)

var (
	// ErrOrderNotFound indicates the order does not exist in the caller's scope.
	ErrOrderNotFound = errors.New("biker: order not found")
	// ErrItemNotFound indicates the order item does not exist in the caller's scope.
	ErrItemNotFound = errors.New("biker: order item not found")
	// ErrStateConflict indicates a guarded status transition lost its race.
	ErrStateConflict = errors.New("biker: order status changed")
)

// StockMissing reports an activation against a product the dealer has no
// stock row for.
type StockMissing struct {
	ProductID int64
}

func (e *StockMissing) Error() string {
	return fmt.Sprintf("biker: no stock for product %d", e.ProductID)
}

// StockShortage reports an activation that asks for more than the dealer
// holds. Available carries the quantity currently on hand.
type StockShortage struct {
	ProductID int64
	Available int64
}

func (e *StockShortage) Error() string {
	return fmt.Sprintf("biker: insufficient stock for product %d, %d available", e.ProductID, e.Available)
}

// LedgerExceeded reports a sale or return that would push an item's
// sold+returned tally past its ordered quantity.
type LedgerExceeded struct {
	Available int64
}

func (e *LedgerExceeded) Error() string {
	return fmt.Sprintf("biker: only %d items available on the ledger", e.Available)
}

// Order is a biker's purchase order against their super dealer's stock.
type Order struct {
	ID            int64      `json:"id"`
	SuperDealerID int64      `json:"super_dealer_id"`
	BikerID       int64      `json:"biker_id"`
	Status        string     `json:"status"`
	TotalAmount   float64    `json:"total_amount"`
	ReceivedAt    *time.Time `json:"received_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OrderItem is one product line on a biker order. Quantity is the ordered
// ceiling that sales and returns reconcile against; UnitPrice is the
// dealer stock price snapshotted at request time. Immutable once written.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Sale is an append-only ledger entry recording items sold to an end
// customer against one order item.
type Sale struct {
	ID           int64     `json:"id"`
	OrderItemID  int64     `json:"order_item_id"`
	QuantitySold int64     `json:"quantity_sold"`
	UnitPrice    float64   `json:"unit_price"`
	CustomerName string    `json:"customer_name"`
	Location     string    `json:"location"`
	SaleDate     time.Time `json:"sale_date"`
}

// Return is an append-only ledger entry recording items handed back
// unsold against one order item.
type Return struct {
	ID               int64     `json:"id"`
	OrderItemID      int64     `json:"order_item_id"`
	QuantityReturned int64     `json:"quantity_returned"`
	Reason           string    `json:"reason,omitempty"`
	ReturnDate       time.Time `json:"return_date"`
}

// Commission is the payout record written when a completed order closes.
// Percentage is persisted so historical rows survive rate changes.
type Commission struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	BikerID     int64     `json:"biker_id"`
	SalesAmount float64   `json:"sales_amount"`
	Commission  float64   `json:"commission"`
	Percentage  float64   `json:"percentage"`
	CreatedAt   time.Time `json:"created_at"`
}

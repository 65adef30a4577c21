package stock

// Balance is one product position in a super dealer's stock.
type Balance struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

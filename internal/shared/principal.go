package shared

// Role classifies an account within the distribution chain.
type Role string

const (
	// RoleSuperAdmin manages companies, products and dealer orders.
	RoleSuperAdmin Role = "super_admin"
	// RoleSuperDealer stocks company products and serves bikers.
	RoleSuperDealer Role = "super_dealer"
	// RoleBiker sells dealer stock to end customers.
	RoleBiker Role = "biker"
)

// Principal is the authenticated actor threaded into every workflow call.
type Principal struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	CompanyID     int64  `json:"company_id"`
	SuperDealerID int64  `json:"super_dealer_id,omitempty"`
}

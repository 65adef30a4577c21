package shared

// Capability names an operation gated at a workflow boundary.
type Capability string

const (
	CapManageCompanies    Capability = "companies.manage"
	CapManageProducts     Capability = "products.manage"
	CapPlaceDealerOrders  Capability = "dealer_orders.place"
	CapReviewDealerOrders Capability = "dealer_orders.review"
	CapViewDealerStock    Capability = "dealer_stock.view"
	CapOperateBikerOrders Capability = "biker_orders.operate"
	CapRecordBikerSales   Capability = "biker_sales.record"
)

var roleGrants = map[Role][]Capability{
	RoleSuperAdmin: {
		CapManageCompanies,
		CapManageProducts,
		CapReviewDealerOrders,
		CapViewDealerStock,
	},
	RoleSuperDealer: {
		CapPlaceDealerOrders,
		CapViewDealerStock,
		CapOperateBikerOrders,
	},
	RoleBiker: {
		CapOperateBikerOrders,
		CapRecordBikerSales,
	},
}

// Allowed reports whether the principal's role grants the capability.
func (p Principal) Allowed(c Capability) bool {
	for _, granted := range roleGrants[p.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

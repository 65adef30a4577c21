package biker

// ReconcileLine is one order item's tally: the ordered ceiling and the
// quantities sold and returned against it.
type ReconcileLine struct {
	ProductID int64
	Ordered   int64
	Sold      int64
	Returned  int64
}

// Mismatch describes the first line that fails reconciliation. Missing
// holds the shortfall when items are unaccounted for; Over is set when
// the ledger records more than was ordered.
type Mismatch struct {
	ProductID int64
	Missing   int64
	Over      bool
}

// Reconcile checks that every line balances exactly: sold + returned must
// equal ordered. It returns nil when all lines balance, otherwise the
// first mismatch in line order. No tolerance, no partial completion.
func Reconcile(lines []ReconcileLine) *Mismatch {
	for _, line := range lines {
		recorded := line.Sold + line.Returned
		switch {
		case recorded < line.Ordered:
			return &Mismatch{ProductID: line.ProductID, Missing: line.Ordered - recorded}
		case recorded > line.Ordered:
			return &Mismatch{ProductID: line.ProductID, Over: true}
		}
	}
	return nil
}

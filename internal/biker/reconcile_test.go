package biker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconcileBalanced(t *testing.T) {
	mismatch := Reconcile([]ReconcileLine{
		{ProductID: 1, Ordered: 10, Sold: 6, Returned: 4},
		{ProductID: 2, Ordered: 3, Sold: 3, Returned: 0},
		{ProductID: 3, Ordered: 5, Sold: 0, Returned: 5},
	})
	require.Nil(t, mismatch)
}

func TestReconcileShortfall(t *testing.T) {
	mismatch := Reconcile([]ReconcileLine{
		{ProductID: 1, Ordered: 10, Sold: 6, Returned: 1},
	})
	require.NotNil(t, mismatch)
	require.Equal(t, int64(1), mismatch.ProductID)
	require.Equal(t, int64(3), mismatch.Missing)
	require.False(t, mismatch.Over)
}

func TestReconcileOver(t *testing.T) {
	mismatch := Reconcile([]ReconcileLine{
		{ProductID: 7, Ordered: 10, Sold: 8, Returned: 3},
	})
	require.NotNil(t, mismatch)
	require.Equal(t, int64(7), mismatch.ProductID)
	require.True(t, mismatch.Over)
}

func TestReconcileReportsFirstMismatch(t *testing.T) {
	mismatch := Reconcile([]ReconcileLine{
		{ProductID: 1, Ordered: 5, Sold: 5, Returned: 0},
		{ProductID: 2, Ordered: 4, Sold: 1, Returned: 1},
		{ProductID: 3, Ordered: 2, Sold: 2, Returned: 2},
	})
	require.NotNil(t, mismatch)
	require.Equal(t, int64(2), mismatch.ProductID)
	require.Equal(t, int64(2), mismatch.Missing)
}

func TestReconcileEmpty(t *testing.T) {
	require.Nil(t, Reconcile(nil))
}

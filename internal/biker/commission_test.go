package biker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommissionAmount(t *testing.T) {
	cases := []struct {
		name    string
		sales   float64
		percent float64
		want    float64
	}{
		{"fifteen percent", 6000, 15, 900},
		{"rounds to cents", 1234.56, 15, 185.18},
		{"rounds up past half", 999.99, 15, 150},
		{"zero sales", 0, 15, 0},
		{"zero percent", 6000, 0, 0},
		{"small amount", 1, 15, 0.15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, CommissionAmount(tc.sales, tc.percent), 1e-9)
		})
	}
}

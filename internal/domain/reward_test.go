package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsQualifyingRepayment(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		balanceBefore string
		want          bool
	}{
		{
			name:          "exactly 10 percent qualifies",
			amount:        "50",
			balanceBefore: "500",
			want:          true,
		},
		{
			name:          "just under 10 percent does not qualify",
			amount:        "49.99",
			balanceBefore: "500",
			want:          false,
		},
		{
			name:          "9.99 percent of odd balance does not qualify",
			amount:        "99.90",
			balanceBefore: "1000.01",
			want:          false,
		},
		{
			name:          "full balance repayment qualifies",
			amount:        "500",
			balanceBefore: "500",
			want:          true,
		},
		{
			name:          "repayment against zero balance never qualifies",
			amount:        "100",
			balanceBefore: "0",
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			before := decimal.RequireFromString(tt.balanceBefore)

			if got := IsQualifyingRepayment(amount, before); got != tt.want {
				t.Errorf("IsQualifyingRepayment(%s, %s) = %v, want %v", amount, before, got, tt.want)
			}
		})
	}
}

package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDailyInterest(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		apr     string
		want    string
	}{
		{
			// 1000 * 0.24 / 365 = 0.65753..., rounds half-up to 0.66
			name:    "rounds half-up to minor unit",
			balance: "1000",
			apr:     "24.0",
			want:    "0.66",
		},
		{
			name:    "zero balance accrues nothing",
			balance: "0",
			apr:     "25.0",
			want:    "0",
		},
		{
			// 5 * 0.25 / 365 = 0.0034..., rounds to 0.00
			name:    "tiny balance rounds to zero",
			balance: "5",
			apr:     "25.0",
			want:    "0",
		},
		{
			name:    "initial apr on full balance",
			balance: "1460",
			apr:     "25.0",
			want:    "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyInterest(decimal.RequireFromString(tt.balance), decimal.RequireFromString(tt.apr))

			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("DailyInterest(%s, %s) = %s, want %s", tt.balance, tt.apr, got, want)
			}
		})
	}
}

func TestEstimatedMonthlyInterest(t *testing.T) {
	daily := decimal.RequireFromString("0.66")

	got := EstimatedMonthlyInterest(daily)

	want := decimal.RequireFromString("19.80")
	if !got.Equal(want) {
		t.Errorf("EstimatedMonthlyInterest(%s) = %s, want %s", daily, got, want)
	}
}

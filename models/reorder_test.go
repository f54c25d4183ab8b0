package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReorderQuantity(t *testing.T) {
	tests := []struct {
		name          string
		qty           string
		minStockLevel string
		reorderPoint  string
		want          string
	}{
		{
			// Must cover the reorder-point deficit when it exceeds the
			// restore-to-minimum deficit.
			name: "reorder point dominates",
			qty:  "40", minStockLevel: "100", reorderPoint: "150",
			want: "110",
		},
		{
			name: "min level dominates",
			qty:  "40", minStockLevel: "200", reorderPoint: "150",
			want: "160",
		},
		{
			name: "no reorder point uses min deficit",
			qty:  "40", minStockLevel: "100", reorderPoint: "0",
			want: "60",
		},
		{
			name: "equal deficits",
			qty:  "40", minStockLevel: "150", reorderPoint: "150",
			want: "110",
		},
		{
			name: "fractional quantities",
			qty:  "12.5", minStockLevel: "50", reorderPoint: "75.5",
			want: "63",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReorderQuantity(d(tt.qty), d(tt.minStockLevel), d(tt.reorderPoint))
			if !got.Equal(d(tt.want)) {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNeedsReorder(t *testing.T) {
	tests := []struct {
		name          string
		qty           string
		minStockLevel string
		reorderPoint  string
		want          bool
	}{
		{name: "below reorder point", qty: "40", minStockLevel: "100", reorderPoint: "150", want: true},
		{name: "at reorder point", qty: "150", minStockLevel: "100", reorderPoint: "150", want: false},
		{name: "above reorder point but below min", qty: "90", minStockLevel: "100", reorderPoint: "80", want: false},
		{name: "no reorder point below min", qty: "40", minStockLevel: "100", reorderPoint: "0", want: true},
		{name: "no reorder point at min", qty: "100", minStockLevel: "100", reorderPoint: "0", want: false},
		{name: "no thresholds configured", qty: "0", minStockLevel: "0", reorderPoint: "0", want: false},
		{name: "zero stock with min level", qty: "0", minStockLevel: "1", reorderPoint: "0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NeedsReorder(d(tt.qty), d(tt.minStockLevel), d(tt.reorderPoint))
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

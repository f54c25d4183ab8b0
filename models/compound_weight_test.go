package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateCompoundWeight(t *testing.T) {
	// 10mm x 1000mm x 6m at SG 1.2:
	// 0.010 * 1.000 * 6 = 0.06 m3 -> 0.06 * 1.2 * 1000 = 72 kg per unit.
	kgPerUnit, totalKg := CalculateCompoundWeight(
		decimal.NewFromInt(10),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(6),
		decimal.RequireFromString("1.2"),
		5,
	)

	if !kgPerUnit.Equal(decimal.NewFromInt(72)) {
		t.Fatalf("kg per unit: got %s, want 72", kgPerUnit)
	}
	if !totalKg.Equal(decimal.NewFromInt(360)) {
		t.Fatalf("total kg: got %s, want 360", totalKg)
	}
}

func TestCalculateCompoundWeightFractionalGeometry(t *testing.T) {
	// 3mm x 1200mm x 10m at SG 1.5:
	// 0.003 * 1.2 * 10 = 0.036 m3 -> 0.036 * 1.5 * 1000 = 54 kg per unit.
	kgPerUnit, totalKg := CalculateCompoundWeight(
		decimal.NewFromInt(3),
		decimal.NewFromInt(1200),
		decimal.NewFromInt(10),
		decimal.RequireFromString("1.5"),
		3,
	)

	if !kgPerUnit.Equal(decimal.NewFromInt(54)) {
		t.Fatalf("kg per unit: got %s, want 54", kgPerUnit)
	}
	if !totalKg.Equal(decimal.NewFromInt(162)) {
		t.Fatalf("total kg: got %s, want 162", totalKg)
	}
}

func TestCalculateCompoundWeightZeroQuantity(t *testing.T) {
	kgPerUnit, totalKg := CalculateCompoundWeight(
		decimal.NewFromInt(10),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(6),
		decimal.RequireFromString("1.2"),
		0,
	)

	if !kgPerUnit.Equal(decimal.NewFromInt(72)) {
		t.Fatalf("kg per unit: got %s, want 72", kgPerUnit)
	}
	if !totalKg.IsZero() {
		t.Fatalf("total kg: got %s, want 0", totalKg)
	}
}

func TestCalculateCompoundWeightIsDeterministic(t *testing.T) {
	first, firstTotal := CalculateCompoundWeight(
		decimal.RequireFromString("4.5"),
		decimal.RequireFromString("914.4"),
		decimal.RequireFromString("15.24"),
		decimal.RequireFromString("1.45"),
		7,
	)
	for i := 0; i < 10; i++ {
		again, againTotal := CalculateCompoundWeight(
			decimal.RequireFromString("4.5"),
			decimal.RequireFromString("914.4"),
			decimal.RequireFromString("15.24"),
			decimal.RequireFromString("1.45"),
			7,
		)
		if !again.Equal(first) || !againTotal.Equal(firstTotal) {
			t.Fatalf("run %d differs: %s/%s vs %s/%s", i, again, againTotal, first, firstTotal)
		}
	}
}

func TestSpecificGravityOrDefault(t *testing.T) {
	withSg := &RubberProduct{SpecificGravity: decimal.RequireFromString("1.3")}
	if got := specificGravityOrDefault(withSg); !got.Equal(decimal.RequireFromString("1.3")) {
		t.Fatalf("got %s, want 1.3", got)
	}

	zeroSg := &RubberProduct{}
	if got := specificGravityOrDefault(zeroSg); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("zero sg: got %s, want 1", got)
	}

	negativeSg := &RubberProduct{SpecificGravity: decimal.RequireFromString("-0.5")}
	if got := specificGravityOrDefault(negativeSg); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("negative sg: got %s, want 1", got)
	}
}

package oracle

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPoolOracle_Price(t *testing.T) {
	o := NewPoolOracle("oracle-1")
	o.SetPool(Pool{
		AssetA:   "0xweth",
		AssetB:   "0xdai",
		ReserveA: decimal.NewFromInt(100),
		ReserveB: decimal.NewFromInt(200000),
	})

	t.Run("Forward Rate", func(t *testing.T) {
		rate, err := o.Price("0xweth", "0xdai")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rate.Equal(decimal.NewFromInt(2000)) {
			t.Errorf("rate = %s, want 2000", rate)
		}
	})

	t.Run("Inverse Rate", func(t *testing.T) {
		rate, err := o.Price("0xdai", "0xweth")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rate.Equal(decimal.NewFromFloat(0.0005)) {
			t.Errorf("rate = %s, want 0.0005", rate)
		}
	})

	t.Run("Unknown Pair", func(t *testing.T) {
		if _, err := o.Price("0xweth", "0xusdc"); !errors.Is(err, ErrNoLiquidity) {
			t.Errorf("expected ErrNoLiquidity, got %v", err)
		}
	})

	t.Run("Same Asset", func(t *testing.T) {
		if _, err := o.Price("0xweth", "0xweth"); !errors.Is(err, ErrNoLiquidity) {
			t.Errorf("expected ErrNoLiquidity, got %v", err)
		}
	})

	t.Run("Empty Side", func(t *testing.T) {
		o.SetPool(Pool{AssetA: "0xweth", AssetB: "0xusdc", ReserveA: decimal.NewFromInt(10), ReserveB: decimal.Zero})
		if _, err := o.Price("0xweth", "0xusdc"); !errors.Is(err, ErrNoLiquidity) {
			t.Errorf("expected ErrNoLiquidity, got %v", err)
		}
	})
}

func TestPoolOracle_UpdateReserves(t *testing.T) {
	o := NewPoolOracle("oracle-1")
	o.SetPool(Pool{
		AssetA:   "0xweth",
		AssetB:   "0xdai",
		ReserveA: decimal.NewFromInt(100),
		ReserveB: decimal.NewFromInt(200000),
	})

	// Update given in the reverse orientation must still land correctly.
	if err := o.UpdateReserves("0xdai", "0xweth", decimal.NewFromInt(300000), decimal.NewFromInt(100)); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	rate, err := o.Price("0xweth", "0xdai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("rate = %s, want 3000", rate)
	}

	if err := o.UpdateReserves("0xa", "0xb", decimal.NewFromInt(1), decimal.NewFromInt(1)); !errors.Is(err, ErrNoLiquidity) {
		t.Errorf("expected ErrNoLiquidity for unknown pool, got %v", err)
	}
}

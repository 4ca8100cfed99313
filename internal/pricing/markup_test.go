package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSalePriceRoundsUpToStep(t *testing.T) {
	m := Markup{Enabled: true, Percent: decimal.NewFromInt(20), Step: decimal.NewFromInt(500)}

	tests := []struct {
		cost, want int64
	}{
		{14000, 17000},
		{10000, 12000},
		{4500, 5500},
		{1, 500},
		{0, 0},
	}
	for _, tt := range tests {
		got := m.SalePrice(decimal.NewFromInt(tt.cost))
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Fatalf("cost %d: got %s, want %d", tt.cost, got, tt.want)
		}
	}
}

func TestApplyRespectsToggle(t *testing.T) {
	current := decimal.NewFromInt(6000)
	cost := decimal.NewFromInt(14000)

	off := Markup{Percent: decimal.NewFromInt(20), Step: decimal.NewFromInt(500)}
	if got := off.Apply(current, cost); !got.Equal(current) {
		t.Fatalf("expected price unchanged when disabled, got %s", got)
	}

	on := off
	on.Enabled = true
	if got := on.Apply(current, cost); !got.Equal(decimal.NewFromInt(17000)) {
		t.Fatalf("expected 17000, got %s", got)
	}
}

func TestSalePriceWithoutStep(t *testing.T) {
	m := Markup{Percent: decimal.NewFromInt(15)}
	if got := m.SalePrice(decimal.RequireFromString("999.99")); !got.Equal(decimal.RequireFromString("1149.99")) {
		t.Fatalf("unexpected unrounded price %s", got)
	}
}

func TestRupiah(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567", "Rp 1.234.567"},
		{"17000.40", "Rp 17.000"},
		{"0", "Rp 0"},
		{"999", "Rp 999"},
	}
	for _, tt := range tests {
		if got := Rupiah(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("Rupiah(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

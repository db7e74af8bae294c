package utils

import "testing"

func TestRoundPaiseToRupee(t *testing.T) {
	cases := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{4975, 5000},
		{5049, 5000},
		{5050, 5100}, // half rounds away from zero
		{5051, 5100},
		{20000, 20000},
		{-5049, -5000},
		{-5050, -5100},
	}
	for _, c := range cases {
		if got := RoundPaiseToRupee(c.in); got != c.want {
			t.Errorf("RoundPaiseToRupee(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatRupees(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{50000, "₹500"},
		{50050, "₹500.50"},
		{5, "₹0.05"},
		{-20000, "-₹200"},
	}
	for _, c := range cases {
		if got := FormatRupees(c.in); got != c.want {
			t.Errorf("FormatRupees(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRupeesToPaise(t *testing.T) {
	if got := RupeesToPaise(500); got != 50000 {
		t.Errorf("RupeesToPaise(500) = %d, want 50000", got)
	}
}

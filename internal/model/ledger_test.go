package model

import "testing"

func TestNormalizePaymentMethod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cash", PayCash},
		{"pix", PayPix},
		{"card_credit", PayCardCredit},
		{"card_debit", PayCardDebit},
		{"transfer", PayTransfer},
		{"other", PayOther},
		{"card", PayCardCredit}, // legacy alias
		{"boleto", PayOther},
		{"", PayOther},
		{"CASH", PayOther}, // methods are case-sensitive
	}
	for _, tt := range tests {
		if got := NormalizePaymentMethod(tt.in); got != tt.want {
			t.Errorf("NormalizePaymentMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPaymentMethodFilter(t *testing.T) {
	for _, pm := range PaymentMethods {
		if !IsPaymentMethodFilter(pm) {
			t.Errorf("canonical method %q should be filterable", pm)
		}
	}
	if !IsPaymentMethodFilter("card") {
		t.Error("legacy card should be filterable")
	}
	if IsPaymentMethodFilter("boleto") {
		t.Error("unknown method must not be filterable")
	}
}

func TestClampPercent(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-1, 0},
		{0, 0},
		{30, 30},
		{100, 100},
		{101, 100},
	}
	for _, tt := range tests {
		if got := ClampPercent(tt.in); got != tt.want {
			t.Errorf("ClampPercent(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

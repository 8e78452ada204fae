package app

import (
	"testing"

	"github.com/sbf/dashboard-service/internal/domain"
)

func TestResolveBalance(t *testing.T) {
	tests := []struct {
		name         string
		account      domain.Account
		preferred    string
		wantCurrency string
		wantAmount   float64
	}{
		{
			name: "preferred currency wins regardless of order",
			account: domain.Account{CurrencyBalances: []domain.CurrencyBalance{
				{CurrencyCode: "USD", AvailableBalance: 100},
				{CurrencyCode: "NGN", AvailableBalance: 2500},
			}},
			preferred:    "NGN",
			wantCurrency: "NGN",
			wantAmount:   2500,
		},
		{
			name: "no preferred match falls back to first listed",
			account: domain.Account{CurrencyBalances: []domain.CurrencyBalance{
				{CurrencyCode: "USD", AvailableBalance: 100},
				{CurrencyCode: "GBP", AvailableBalance: 80},
			}},
			preferred:    "NGN",
			wantCurrency: "USD",
			wantAmount:   100,
		},
		{
			name:         "no balances yields zero in the fallback currency",
			account:      domain.Account{ID: "acc-1"},
			preferred:    "NGN",
			wantCurrency: "NGN",
			wantAmount:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBalance(tt.account, tt.preferred, "NGN")
			if got.CurrencyCode != tt.wantCurrency {
				t.Fatalf("expected currency %q, got %q", tt.wantCurrency, got.CurrencyCode)
			}
			if got.AvailableBalance != tt.wantAmount {
				t.Fatalf("expected balance %f, got %f", tt.wantAmount, got.AvailableBalance)
			}
		})
	}
}

func TestResolveBalance_EmptyAccountKeepsAccountID(t *testing.T) {
	got := ResolveBalance(domain.Account{ID: "acc-9"}, "NGN", "NGN")
	if got.AccountID != "acc-9" {
		t.Fatalf("expected zero-value balance tied to acc-9, got %q", got.AccountID)
	}
}

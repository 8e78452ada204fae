/**
 * @description
 * Balance resolution for display and validation. An account can hold balances
 * in several currencies; the dashboard always shows exactly one, picked by the
 * user's preferred currency with a fall-back chain.
 */

package app

import "github.com/sbf/dashboard-service/internal/domain"

// ResolveBalance selects the account balance to show and validate against:
// the balance matching preferredCurrency, else the first balance in the
// account's list, else a zero-value balance in fallbackCurrency.
//
// The fall-back to the first listed balance is deliberate: an account holding
// only a foreign-currency balance displays that currency rather than an
// error.
func ResolveBalance(account domain.Account, preferredCurrency, fallbackCurrency string) domain.CurrencyBalance {
	for _, balance := range account.CurrencyBalances {
		if balance.CurrencyCode == preferredCurrency {
			return balance
		}
	}
	if len(account.CurrencyBalances) > 0 {
		return account.CurrencyBalances[0]
	}
	return domain.CurrencyBalance{
		AccountID:    account.ID,
		CurrencyCode: fallbackCurrency,
	}
}

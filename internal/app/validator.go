/**
 * @description
 * Local validation of a proposed internal transfer. The checks run in a fixed
 * order and short-circuit on the first failure, so structural problems
 * (unparseable amount, missing selection, same account) surface before
 * data-dependent ones (balance, currency). A transfer that fails here never
 * reaches the network.
 */

package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sbf/dashboard-service/internal/domain"
)

// ValidatorOptions carries the configured validation parameters.
type ValidatorOptions struct {
	// MinTransferAmount is the fixed floor for a transfer, in the user's
	// default currency.
	MinTransferAmount float64
	// FallbackCurrency labels the zero-value balance of an account with no
	// currency balances.
	FallbackCurrency string
}

// ValidateTransfer checks a proposed transfer against the business rules and
// returns a verdict. It is a total function: every input yields exactly one
// Valid or Invalid result and it never panics, including on a nil directory.
func ValidateTransfer(fromID, toID, amountText string, dir *Directory, defaultCurrency string, opts ValidatorOptions) domain.ValidationResult {
	amount, err := strconv.ParseFloat(strings.TrimSpace(amountText), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return domain.ValidationResult{
			Reason:  domain.ReasonInvalidAmount,
			Message: "Please enter a valid transfer amount.",
		}
	}

	if fromID == "" || toID == "" {
		return domain.ValidationResult{
			Reason:  domain.ReasonAccountsNotSelected,
			Message: "Please select both source and destination accounts.",
		}
	}

	if fromID == toID {
		return domain.ValidationResult{
			Reason:  domain.ReasonSameAccount,
			Message: "Source and destination accounts cannot be the same.",
		}
	}

	from, ok := dir.Lookup(fromID)
	if !ok {
		return domain.ValidationResult{
			Reason:  domain.ReasonSourceNotFound,
			Message: "Source account not found.",
		}
	}

	fromBalance := ResolveBalance(from.Account, defaultCurrency, opts.FallbackCurrency)
	if fromBalance.AvailableBalance < amount {
		return domain.ValidationResult{
			Reason:       domain.ReasonInsufficientBalance,
			Message:      fmt.Sprintf("Insufficient balance. Available: %.2f %s", fromBalance.AvailableBalance, fromBalance.CurrencyCode),
			Available:    fromBalance.AvailableBalance,
			FromCurrency: fromBalance.CurrencyCode,
		}
	}

	if amount < opts.MinTransferAmount {
		return domain.ValidationResult{
			Reason:  domain.ReasonBelowMinimum,
			Message: fmt.Sprintf("Minimum transfer amount is %.2f %s", opts.MinTransferAmount, defaultCurrency),
		}
	}

	// A destination missing from the directory fails the currency check, the
	// same way the currency-match helper treated an unresolvable account.
	var toCurrency string
	if to, found := dir.Lookup(toID); found {
		toCurrency = ResolveBalance(to.Account, defaultCurrency, opts.FallbackCurrency).CurrencyCode
	}
	if toCurrency != fromBalance.CurrencyCode {
		return domain.ValidationResult{
			Reason:       domain.ReasonCurrencyMismatch,
			Message:      "Source and destination accounts must use the same currency.",
			FromCurrency: fromBalance.CurrencyCode,
			ToCurrency:   toCurrency,
		}
	}

	return domain.ValidationResult{Valid: true, Amount: amount}
}

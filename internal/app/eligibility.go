/**
 * @description
 * Transfer-eligibility policy. Which activation statuses qualify an account as
 * a transfer endpoint is a single named configuration point rather than a
 * condition scattered through handlers, so the policy can be corrected (e.g.
 * tightened to ACTIVE only) without touching the selection or form logic.
 */

package app

import "github.com/sbf/dashboard-service/internal/domain"

// EligibilityPredicate decides whether an account may be offered as a
// transfer source or destination.
type EligibilityPredicate func(domain.Account) bool

// StatusEligibility builds the predicate from a list of activation statuses.
// An empty list admits no accounts.
func StatusEligibility(statuses []string) EligibilityPredicate {
	allowed := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}
	return func(account domain.Account) bool {
		_, ok := allowed[account.ActivationStatus]
		return ok
	}
}

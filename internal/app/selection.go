/**
 * @description
 * Selection state for the dashboard's account picker. The state is derived by
 * a pure reducer over (snapshot, previous selection) so it can be re-run on
 * every snapshot install: a still-valid previous choice survives a refresh,
 * anything else falls back to sensible defaults (the default-flagged account
 * type, then the first ACTIVE account within it).
 */

package app

import (
	"errors"

	"github.com/sbf/dashboard-service/internal/domain"
)

var (
	// ErrUnknownAccountType is returned when an explicit type selection names
	// an account type absent from the snapshot.
	ErrUnknownAccountType = errors.New("account type not found in snapshot")
	// ErrAccountNotInSelectedType is returned when an explicit account
	// selection names an account outside the currently selected type.
	ErrAccountNotInSelectedType = errors.New("account does not belong to the selected account type")
)

// Selection identifies the account type and account the dashboard is focused
// on. Both fields empty means uninitialized; only AccountTypeID set means a
// type is selected but the type holds no accounts.
//
// Invariant: when AccountID is set it always belongs to AccountTypeID.
type Selection struct {
	AccountTypeID string `json:"accountTypeId"`
	AccountID     string `json:"accountId"`
}

// ReduceSelection derives the selection for a snapshot. It keeps whatever
// part of prev is still valid and re-derives the rest.
func ReduceSelection(user *domain.User, prev Selection) Selection {
	accountType, ok := pickAccountType(user, prev.AccountTypeID)
	if !ok {
		return Selection{}
	}
	next := Selection{AccountTypeID: accountType.ID}
	if prev.AccountTypeID == accountType.ID {
		if _, found := findAccount(accountType, prev.AccountID); found {
			next.AccountID = prev.AccountID
			return next
		}
	}
	next.AccountID = autoSelectAccount(accountType)
	return next
}

// SelectAccountType applies an explicit account-type choice, resetting the
// account leaf and re-running the account auto-selection within the new type.
func SelectAccountType(user *domain.User, typeID string) (Selection, error) {
	accountType, ok := lookupAccountType(user, typeID)
	if !ok {
		return Selection{}, ErrUnknownAccountType
	}
	return Selection{
		AccountTypeID: accountType.ID,
		AccountID:     autoSelectAccount(accountType),
	}, nil
}

// SelectAccount applies an explicit account choice within the currently
// selected account type. Choices outside that type are rejected to preserve
// the selection invariant.
func SelectAccount(user *domain.User, prev Selection, accountID string) (Selection, error) {
	accountType, ok := lookupAccountType(user, prev.AccountTypeID)
	if !ok {
		return Selection{}, ErrUnknownAccountType
	}
	if _, found := findAccount(accountType, accountID); !found {
		return Selection{}, ErrAccountNotInSelectedType
	}
	return Selection{AccountTypeID: accountType.ID, AccountID: accountID}, nil
}

// pickAccountType keeps a still-present previous type, else auto-selects the
// default-flagged type, else the first in snapshot order.
func pickAccountType(user *domain.User, prevTypeID string) (domain.AccountType, bool) {
	if user == nil || len(user.AccountTypes) == 0 {
		return domain.AccountType{}, false
	}
	if prevTypeID != "" {
		if at, ok := lookupAccountType(user, prevTypeID); ok {
			return at, true
		}
	}
	for _, at := range user.AccountTypes {
		if at.DefaultAccountType {
			return at, true
		}
	}
	return user.AccountTypes[0], true
}

func lookupAccountType(user *domain.User, typeID string) (domain.AccountType, bool) {
	if user == nil || typeID == "" {
		return domain.AccountType{}, false
	}
	for _, at := range user.AccountTypes {
		if at.ID == typeID {
			return at, true
		}
	}
	return domain.AccountType{}, false
}

func findAccount(accountType domain.AccountType, accountID string) (domain.Account, bool) {
	if accountID == "" {
		return domain.Account{}, false
	}
	for _, acc := range accountType.Accounts {
		if acc.ID == accountID {
			return acc, true
		}
	}
	return domain.Account{}, false
}

// autoSelectAccount prefers the first ACTIVE account, else the first account
// regardless of status, else none.
func autoSelectAccount(accountType domain.AccountType) string {
	for _, acc := range accountType.Accounts {
		if acc.ActivationStatus == domain.AccountStatusActive {
			return acc.ID
		}
	}
	if len(accountType.Accounts) > 0 {
		return accountType.Accounts[0].ID
	}
	return ""
}

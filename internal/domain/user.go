/**
 * @description
 * This file defines the domain models for the user snapshot consumed from the
 * core-banking API. The snapshot is read-only to this service: it is fetched
 * wholesale, held in memory, and replaced by the next fetch. Nothing in here
 * is ever mutated locally.
 *
 * @notes
 * - Field names mirror the core-banking JSON contract exactly; the dashboard
 *   frontend consumes the same shapes.
 * - Balances are JSON numbers on the wire, so they stay float64 here.
 */

package domain

import "strings"

// Activation statuses for an account. Only the status gates transfer
// eligibility; which statuses are eligible is a configuration point.
const (
	AccountStatusActive    = "ACTIVE"
	AccountStatusPending   = "PENDING"
	AccountStatusSuspended = "SUSPENDED"
)

// CurrencyBalance is the available/ledger balance of an account in one
// currency. An account holds at most one CurrencyBalance per currency code.
type CurrencyBalance struct {
	ID               string  `json:"id"`
	AccountID        string  `json:"accountId"`
	CurrencyCode     string  `json:"currencyCode"`
	AvailableBalance float64 `json:"availableBalance"`
	LedgerBalance    float64 `json:"ledgerBalance"`
	CreatedAt        string  `json:"createdAt,omitempty"`
	UpdatedAt        string  `json:"updatedAt,omitempty"`
}

// Account is a single balance-holding unit owned by a user.
type Account struct {
	ID               string            `json:"id"`
	AccountTypeID    string            `json:"accountTypeId"`
	Type             string            `json:"type"` // SAVINGS, CURRENT, FIXED_DEPOSIT_BY_DATE, FIXED_DEPOSIT_BY_AMOUNT
	DefaultAccount   bool              `json:"defaultAccount"`
	MinimumBalance   float64           `json:"minimumBalance"`
	InterestRate     float64           `json:"interestRate"`
	OverdraftLimit   float64           `json:"overdraftLimit"`
	ActivationStatus string            `json:"activationStatus"`
	CreatedAt        string            `json:"createdAt,omitempty"`
	CurrencyBalances []CurrencyBalance `json:"currencyBalances"`
}

// AccountType groups accounts sharing one account number, e.g. the personal
// vs corporate side of a customer.
type AccountType struct {
	ID                 string    `json:"id"`
	AccountNumber      string    `json:"accountNumber"`
	Type               string    `json:"type"` // PERSONAL or CORPORATE
	DefaultAccountType bool      `json:"defaultAccountType"`
	UserID             string    `json:"userId"`
	CreatedAt          string    `json:"createdAt,omitempty"`
	UpdatedAt          string    `json:"updatedAt,omitempty"`
	Accounts           []Account `json:"accounts"`
}

// PersonalProfile carries the customer identity attached to the user record.
type PersonalProfile struct {
	ID                  string `json:"id"`
	UserID              string `json:"userId"`
	OtherNames          string `json:"otherNames"`
	LastName            string `json:"lastName"`
	Gender              string `json:"gender"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	DateOfBirth         string `json:"dateOfBirth"`
	KYCVerified         bool   `json:"kycVerified"`
	BVN                 string `json:"bvn"`
	IdentificationType  string `json:"identificationType"`
	IdentificationPhoto string `json:"identificationPhoto"`
}

// User is the root of the snapshot returned by the core-banking API.
type User struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	Role            string           `json:"role"`
	Country         *string          `json:"country"`
	Language        string           `json:"language"`
	DefaultCurrency string           `json:"defaultCurrency"`
	PersonalProfile *PersonalProfile `json:"personalProfile"`
	AccountTypes    []AccountType    `json:"accountTypes"`
}

// DisplayName renders the customer's name the way the dashboard header does:
// "otherNames lastName", falling back to either part, then the email.
func (u *User) DisplayName() string {
	if u == nil {
		return "User"
	}
	if p := u.PersonalProfile; p != nil {
		if p.OtherNames != "" && p.LastName != "" {
			return p.OtherNames + " " + p.LastName
		}
		if p.OtherNames != "" {
			return p.OtherNames
		}
		if p.LastName != "" {
			return p.LastName
		}
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

// Initials derives the one- or two-letter avatar fallback for the customer.
func (u *User) Initials() string {
	if u == nil {
		return "U"
	}
	if p := u.PersonalProfile; p != nil {
		if p.OtherNames != "" && p.LastName != "" {
			return strings.ToUpper(p.OtherNames[:1] + p.LastName[:1])
		}
		if p.OtherNames != "" {
			return strings.ToUpper(p.OtherNames[:1])
		}
		if p.LastName != "" {
			return strings.ToUpper(p.LastName[:1])
		}
	}
	if u.Email != "" {
		return strings.ToUpper(u.Email[:1])
	}
	return "U"
}

package app

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/sbf/dashboard-service/internal/domain"
)

func selectionUser() *domain.User {
	return &domain.User{
		AccountTypes: []domain.AccountType{
			{
				ID:   "at-personal",
				Type: "PERSONAL",
				Accounts: []domain.Account{
					{ID: "p-1", AccountTypeID: "at-personal", ActivationStatus: domain.AccountStatusPending},
					{ID: "p-2", AccountTypeID: "at-personal", ActivationStatus: domain.AccountStatusActive},
					{ID: "p-3", AccountTypeID: "at-personal", ActivationStatus: domain.AccountStatusActive},
				},
			},
			{
				ID:                 "at-corporate",
				Type:               "CORPORATE",
				DefaultAccountType: true,
				Accounts: []domain.Account{
					{ID: "c-1", AccountTypeID: "at-corporate", ActivationStatus: domain.AccountStatusActive},
					{ID: "c-2", AccountTypeID: "at-corporate", ActivationStatus: domain.AccountStatusSuspended},
				},
			},
		},
	}
}

func TestReduceSelection_Defaults(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
		prev Selection
		want Selection
	}{
		{
			name: "empty prev picks default type and first active account",
			user: selectionUser(),
			prev: Selection{},
			want: Selection{AccountTypeID: "at-corporate", AccountID: "c-1"},
		},
		{
			name: "no default flag falls back to first type",
			user: func() *domain.User {
				u := selectionUser()
				u.AccountTypes[1].DefaultAccountType = false
				return u
			}(),
			prev: Selection{},
			want: Selection{AccountTypeID: "at-personal", AccountID: "p-2"},
		},
		{
			name: "no active account falls back to first account",
			user: &domain.User{AccountTypes: []domain.AccountType{
				{ID: "at-1", Accounts: []domain.Account{
					{ID: "a-1", ActivationStatus: domain.AccountStatusSuspended},
					{ID: "a-2", ActivationStatus: domain.AccountStatusPending},
				}},
			}},
			prev: Selection{},
			want: Selection{AccountTypeID: "at-1", AccountID: "a-1"},
		},
		{
			name: "type with no accounts selects the type alone",
			user: &domain.User{AccountTypes: []domain.AccountType{{ID: "at-empty"}}},
			prev: Selection{},
			want: Selection{AccountTypeID: "at-empty"},
		},
		{
			name: "nil user yields empty selection",
			user: nil,
			prev: Selection{AccountTypeID: "at-personal", AccountID: "p-2"},
			want: Selection{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReduceSelection(tt.user, tt.prev)
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestReduceSelection_SurvivesRefresh(t *testing.T) {
	user := selectionUser()
	prev := Selection{AccountTypeID: "at-personal", AccountID: "p-3"}

	got := ReduceSelection(user, prev)
	if got != prev {
		t.Fatalf("valid previous selection should survive, got %+v", got)
	}

	// The selected account disappears from the refreshed snapshot: keep the
	// type, re-run the account auto-selection.
	refreshed := selectionUser()
	refreshed.AccountTypes[0].Accounts = refreshed.AccountTypes[0].Accounts[:2]
	got = ReduceSelection(refreshed, prev)
	want := Selection{AccountTypeID: "at-personal", AccountID: "p-2"}
	if got != want {
		t.Fatalf("expected %+v after account removal, got %+v", want, got)
	}

	// The selected type disappears: fall back to the default chain.
	refreshed = selectionUser()
	refreshed.AccountTypes = refreshed.AccountTypes[1:]
	got = ReduceSelection(refreshed, prev)
	want = Selection{AccountTypeID: "at-corporate", AccountID: "c-1"}
	if got != want {
		t.Fatalf("expected %+v after type removal, got %+v", want, got)
	}
}

func TestSelectAccountType(t *testing.T) {
	user := selectionUser()

	got, err := SelectAccountType(user, "at-personal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Selection{AccountTypeID: "at-personal", AccountID: "p-2"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if _, err := SelectAccountType(user, "at-missing"); !errors.Is(err, ErrUnknownAccountType) {
		t.Fatalf("expected ErrUnknownAccountType, got %v", err)
	}
}

func TestSelectAccount(t *testing.T) {
	user := selectionUser()
	prev := Selection{AccountTypeID: "at-personal", AccountID: "p-2"}

	got, err := SelectAccount(user, prev, "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Selection{AccountTypeID: "at-personal", AccountID: "p-1"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	// An account from another type is rejected, the previous selection stands.
	if _, err := SelectAccount(user, prev, "c-1"); !errors.Is(err, ErrAccountNotInSelectedType) {
		t.Fatalf("expected ErrAccountNotInSelectedType, got %v", err)
	}

	if _, err := SelectAccount(user, Selection{}, "p-1"); !errors.Is(err, ErrUnknownAccountType) {
		t.Fatalf("expected ErrUnknownAccountType for empty selection, got %v", err)
	}
}

// TestReduceSelection_Invariant runs the reducer over randomized snapshots and
// previous selections and checks that a selected account always belongs to the
// selected account type.
func TestReduceSelection_Invariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	statuses := []string{domain.AccountStatusActive, domain.AccountStatusPending, domain.AccountStatusSuspended}

	for i := 0; i < 250; i++ {
		user := &domain.User{}
		for ti := 0; ti < rng.Intn(4); ti++ {
			at := domain.AccountType{
				ID:                 "at-" + strconv.Itoa(ti),
				DefaultAccountType: rng.Intn(3) == 0,
			}
			for ai := 0; ai < rng.Intn(4); ai++ {
				at.Accounts = append(at.Accounts, domain.Account{
					ID:               "acc-" + strconv.Itoa(ti) + "-" + strconv.Itoa(ai),
					AccountTypeID:    at.ID,
					ActivationStatus: statuses[rng.Intn(len(statuses))],
				})
			}
			user.AccountTypes = append(user.AccountTypes, at)
		}
		prev := Selection{
			AccountTypeID: "at-" + strconv.Itoa(rng.Intn(5)),
			AccountID:     "acc-" + strconv.Itoa(rng.Intn(5)) + "-" + strconv.Itoa(rng.Intn(5)),
		}

		got := ReduceSelection(user, prev)
		if got.AccountID == "" {
			continue
		}
		if got.AccountTypeID == "" {
			t.Fatalf("iteration %d: account %q selected without a type", i, got.AccountID)
		}
		at, ok := lookupAccountType(user, got.AccountTypeID)
		if !ok {
			t.Fatalf("iteration %d: selected type %q not in snapshot", i, got.AccountTypeID)
		}
		if _, found := findAccount(at, got.AccountID); !found {
			t.Fatalf("iteration %d: account %q not in selected type %q", i, got.AccountID, got.AccountTypeID)
		}
	}
}

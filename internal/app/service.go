/**
 * @description
 * This file contains the core business logic for the dashboard-service. The
 * `Service` struct owns the user snapshot cache, the account selection, the
 * transient transfer-form state, and the submission flow against the
 * core-banking API.
 *
 * Key features:
 * - One snapshot at a time, replaced wholesale on refresh; selection is
 *   re-derived by the pure reducer on every install.
 * - At most one transfer submission in flight per form instance.
 * - Local validation runs before any network call; a failed validation never
 *   reaches the core-banking API.
 * - A successful submission resets the form, marks the snapshot stale, kicks
 *   off a refetch, and publishes a transfer event.
 *
 * @dependencies
 * - context, errors, log, sync, time: Standard Go libraries.
 * - github.com/google/uuid: For event identifiers.
 * - internal/domain: Domain models.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sbf/dashboard-service/internal/domain"
	"github.com/sbf/dashboard-service/pkg/rabbitmq"
)

var (
	// ErrTransferInFlight is returned when a submission is attempted while a
	// prior one is still outstanding.
	ErrTransferInFlight = errors.New("a transfer submission is already in flight")
	// ErrSnapshotNotLoaded is returned when an operation needs account data
	// and no snapshot could be obtained.
	ErrSnapshotNotLoaded = errors.New("user snapshot is not loaded")
)

// BankClient is the capability the service needs from the core-banking API.
// pkg/bankclient implements it; tests substitute fakes.
type BankClient interface {
	FetchUserSnapshot(ctx context.Context) (*domain.User, error)
	SubmitTransfer(ctx context.Context, transfer domain.TransferRequest) (*domain.TransferResponse, error)
}

// TransferForm is the transient state of the internal-transfer form. It lives
// only in memory and is reset after a successful submission.
type TransferForm struct {
	Amount        string `json:"amount"`
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
}

// AccountView is one row of the flattened account overview.
type AccountView struct {
	ID               string  `json:"id"`
	AccountTypeID    string  `json:"accountTypeId"`
	AccountNumber    string  `json:"accountNumber"`
	Category         string  `json:"category"` // PERSONAL or CORPORATE
	Type             string  `json:"type"`
	ActivationStatus string  `json:"activationStatus"`
	Balance          float64 `json:"balance"`
	Currency         string  `json:"currency"`
	InterestRate     float64 `json:"interestRate"`
	MinimumBalance   float64 `json:"minimumBalance"`
	OverdraftLimit   float64 `json:"overdraftLimit"`
	Eligible         bool    `json:"eligible"`
}

// SubmitOutcome is the result of a submission attempt: either a failed local
// validation (Response nil) or a validated, submitted transfer.
type SubmitOutcome struct {
	Validation domain.ValidationResult  `json:"validation"`
	Response   *domain.TransferResponse `json:"response,omitempty"`
}

// Service provides the core business logic for the dashboard.
type Service struct {
	client   BankClient
	producer rabbitmq.Publisher
	store    *SnapshotStore
	eligible EligibilityPredicate

	minTransferAmount float64
	fallbackCurrency  string
	eventExchange     string
	eventRoutingKey   string

	mu         sync.Mutex
	directory  *Directory
	selection  Selection
	form       TransferForm
	submitting bool
}

// NewService creates a new dashboard service instance.
func NewService(client BankClient, producer rabbitmq.Publisher, eligible EligibilityPredicate, minTransferAmount float64, fallbackCurrency, eventExchange, eventRoutingKey string) *Service {
	return &Service{
		client:            client,
		producer:          producer,
		store:             NewSnapshotStore(),
		eligible:          eligible,
		minTransferAmount: minTransferAmount,
		fallbackCurrency:  fallbackCurrency,
		eventExchange:     eventExchange,
		eventRoutingKey:   eventRoutingKey,
		directory:         BuildDirectory(nil),
	}
}

// RefreshSnapshot fetches a fresh snapshot and installs it unless a newer one
// arrived in the meantime. On install the directory is rebuilt and the
// selection re-derived.
func (s *Service) RefreshSnapshot(ctx context.Context) (*domain.User, error) {
	gen := s.store.Begin()
	user, err := s.client.FetchUserSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !s.store.Install(gen, user) {
		log.Printf("level=info component=dashboard op=refresh_snapshot outcome=discarded reason=stale_generation gen=%d", gen)
		current, _ := s.store.Current()
		return current, nil
	}

	s.mu.Lock()
	s.directory = BuildDirectory(user)
	s.selection = ReduceSelection(user, s.selection)
	s.mu.Unlock()

	log.Printf("level=info component=dashboard op=refresh_snapshot outcome=installed gen=%d accounts=%d", gen, s.directory.Len())
	return user, nil
}

// EnsureSnapshot returns the cached snapshot, fetching one first if the cache
// is empty.
func (s *Service) EnsureSnapshot(ctx context.Context) (*domain.User, error) {
	if user, ok := s.store.Current(); ok {
		return user, nil
	}
	return s.RefreshSnapshot(ctx)
}

// CurrentUser returns the cached snapshot without fetching.
func (s *Service) CurrentUser() (*domain.User, bool) {
	return s.store.Current()
}

// SnapshotStale reports whether the cached snapshot has been invalidated.
func (s *Service) SnapshotStale() bool {
	return s.store.Stale()
}

// Directory returns the directory built from the installed snapshot.
func (s *Service) Directory() *Directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directory
}

// Selection returns the current account selection.
func (s *Service) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// SetAccountType applies an explicit account-type choice.
func (s *Service) SetAccountType(typeID string) (Selection, error) {
	user, ok := s.store.Current()
	if !ok {
		return Selection{}, ErrSnapshotNotLoaded
	}
	next, err := SelectAccountType(user, typeID)
	if err != nil {
		return Selection{}, err
	}
	s.mu.Lock()
	s.selection = next
	s.mu.Unlock()
	return next, nil
}

// SetAccount applies an explicit account choice within the selected type.
func (s *Service) SetAccount(accountID string) (Selection, error) {
	user, ok := s.store.Current()
	if !ok {
		return Selection{}, ErrSnapshotNotLoaded
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := SelectAccount(user, s.selection, accountID)
	if err != nil {
		return Selection{}, err
	}
	s.selection = next
	return next, nil
}

// Form returns the transient transfer-form state.
func (s *Service) Form() TransferForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// UpdateForm stores new transfer-form field values.
func (s *Service) UpdateForm(form TransferForm) TransferForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
	return s.form
}

// AccountOverview returns the flattened account list with resolved balances
// and eligibility flags, in snapshot order.
func (s *Service) AccountOverview() []AccountView {
	user, ok := s.store.Current()
	if !ok {
		return nil
	}
	dir := s.Directory()
	views := make([]AccountView, 0, dir.Len())
	for _, entry := range dir.Entries() {
		balance := ResolveBalance(entry.Account, user.DefaultCurrency, s.fallbackCurrency)
		views = append(views, AccountView{
			ID:               entry.Account.ID,
			AccountTypeID:    entry.AccountType.ID,
			AccountNumber:    entry.AccountType.AccountNumber,
			Category:         entry.AccountType.Type,
			Type:             entry.Account.Type,
			ActivationStatus: entry.Account.ActivationStatus,
			Balance:          balance.AvailableBalance,
			Currency:         balance.CurrencyCode,
			InterestRate:     entry.Account.InterestRate,
			MinimumBalance:   entry.Account.MinimumBalance,
			OverdraftLimit:   entry.Account.OverdraftLimit,
			Eligible:         s.eligible(entry.Account),
		})
	}
	return views
}

// EligibleAccountCount counts accounts the policy admits as transfer
// endpoints. The internal-transfer form needs at least two.
func (s *Service) EligibleAccountCount() int {
	count := 0
	for _, entry := range s.Directory().Entries() {
		if s.eligible(entry.Account) {
			count++
		}
	}
	return count
}

// SubmitTransfer validates the current form and, when valid, submits it to
// the core-banking API. Validation failures are reported in the outcome, not
// as errors; errors cover the in-flight gate, a missing snapshot, and
// upstream failures (surfaced unchanged).
func (s *Service) SubmitTransfer(ctx context.Context) (*SubmitOutcome, error) {
	if !s.beginSubmit() {
		return nil, ErrTransferInFlight
	}
	defer s.endSubmit()

	user, err := s.EnsureSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrSnapshotNotLoaded
	}

	form := s.Form()
	verdict := ValidateTransfer(form.FromAccountID, form.ToAccountID, form.Amount, s.Directory(), user.DefaultCurrency, ValidatorOptions{
		MinTransferAmount: s.minTransferAmount,
		FallbackCurrency:  s.fallbackCurrency,
	})
	if !verdict.Valid {
		log.Printf("level=info component=dashboard op=submit_transfer outcome=rejected reason=%s", verdict.Reason)
		return &SubmitOutcome{Validation: verdict}, nil
	}

	resp, err := s.client.SubmitTransfer(ctx, domain.TransferRequest{Amount: verdict.Amount})
	if err != nil {
		log.Printf("level=warn component=dashboard op=submit_transfer outcome=failed err=%v", err)
		return nil, err
	}

	// Balances changed server-side: drop the form, invalidate the snapshot
	// and refetch in the background.
	s.mu.Lock()
	s.form = TransferForm{}
	s.mu.Unlock()
	s.store.MarkStale()
	go s.refetchAfterTransfer()

	s.publishTransferEvent(ctx, user, form, verdict.Amount, resp)

	log.Printf("level=info component=dashboard op=submit_transfer outcome=accepted amount=%.2f transaction_id=%s", verdict.Amount, resp.TransactionID)
	return &SubmitOutcome{Validation: verdict, Response: resp}, nil
}

func (s *Service) refetchAfterTransfer() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := s.RefreshSnapshot(ctx); err != nil {
		log.Printf("level=warn component=dashboard op=refetch_after_transfer msg=\"snapshot refetch failed; cache remains stale\" err=%v", err)
	}
}

func (s *Service) publishTransferEvent(ctx context.Context, user *domain.User, form TransferForm, amount float64, resp *domain.TransferResponse) {
	if s.producer == nil {
		return
	}
	currency := s.fallbackCurrency
	if from, ok := s.Directory().Lookup(form.FromAccountID); ok {
		currency = ResolveBalance(from.Account, user.DefaultCurrency, s.fallbackCurrency).CurrencyCode
	}
	event := rabbitmq.TransferCompletedEvent{
		EventID:       uuid.New(),
		UserID:        user.ID,
		FromAccountID: form.FromAccountID,
		ToAccountID:   form.ToAccountID,
		Amount:        amount,
		Currency:      currency,
		TransactionID: resp.TransactionID,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.producer.PublishTransferCompleted(ctx, s.eventExchange, s.eventRoutingKey, event); err != nil {
		log.Printf("level=warn component=dashboard op=publish_transfer_event msg=\"event publish failed\" event_id=%s err=%v", event.EventID, err)
	}
}

func (s *Service) beginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *Service) endSubmit() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sbf/dashboard-service/internal/domain"
	"github.com/sbf/dashboard-service/pkg/rabbitmq"
)

// fakeBankClient serves a fixed snapshot and scripted transfer responses. Once
// fetchBudget runs out further fetches fail, which keeps background refetches
// from interfering with assertions.
type fakeBankClient struct {
	mu          sync.Mutex
	user        *domain.User
	fetchBudget int
	fetchCalls  int
	submitResp  *domain.TransferResponse
	submitErr   error
	submitCalls int

	submitStarted chan struct{}
	submitRelease chan struct{}
}

func (f *fakeBankClient) FetchUserSnapshot(ctx context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchCalls > f.fetchBudget {
		return nil, errors.New("upstream unavailable")
	}
	return f.user, nil
}

func (f *fakeBankClient) SubmitTransfer(ctx context.Context, transfer domain.TransferRequest) (*domain.TransferResponse, error) {
	f.mu.Lock()
	f.submitCalls++
	started := f.submitStarted
	release := f.submitRelease
	resp, err := f.submitResp, f.submitErr
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return resp, err
}

func (f *fakeBankClient) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, f.submitCalls
}

// fakePublisher records every published transfer event.
type fakePublisher struct {
	mu     sync.Mutex
	events []rabbitmq.TransferCompletedEvent
}

func (f *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return nil
}

func (f *fakePublisher) PublishTransferCompleted(ctx context.Context, exchange, routingKey string, event rabbitmq.TransferCompletedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Close() {}

func (f *fakePublisher) published() []rabbitmq.TransferCompletedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rabbitmq.TransferCompletedEvent(nil), f.events...)
}

func serviceUser() *domain.User {
	return &domain.User{
		ID:              "user-1",
		Email:           "ada@example.com",
		DefaultCurrency: "NGN",
		AccountTypes: []domain.AccountType{
			{
				ID:                 "at-1",
				AccountNumber:      "0012345678",
				Type:               "PERSONAL",
				DefaultAccountType: true,
				Accounts: []domain.Account{
					{
						ID:               "acc-a",
						AccountTypeID:    "at-1",
						Type:             "SAVINGS",
						ActivationStatus: domain.AccountStatusActive,
						CurrencyBalances: []domain.CurrencyBalance{
							{CurrencyCode: "NGN", AvailableBalance: 5000},
						},
					},
					{
						ID:               "acc-b",
						AccountTypeID:    "at-1",
						Type:             "CURRENT",
						ActivationStatus: domain.AccountStatusPending,
						CurrencyBalances: []domain.CurrencyBalance{
							{CurrencyCode: "NGN", AvailableBalance: 0},
						},
					},
					{
						ID:               "acc-c",
						AccountTypeID:    "at-1",
						Type:             "SAVINGS",
						ActivationStatus: domain.AccountStatusSuspended,
						CurrencyBalances: []domain.CurrencyBalance{
							{CurrencyCode: "USD", AvailableBalance: 900},
						},
					},
				},
			},
		},
	}
}

func newTestService(client *fakeBankClient, producer rabbitmq.Publisher) *Service {
	return NewService(
		client,
		producer,
		StatusEligibility([]string{domain.AccountStatusActive, domain.AccountStatusPending}),
		1.00,
		"NGN",
		"sbf.events",
		"transfer.internal.completed",
	)
}

func TestEnsureSnapshot_FetchesOnceThenCaches(t *testing.T) {
	client := &fakeBankClient{user: serviceUser(), fetchBudget: 1}
	svc := newTestService(client, &fakePublisher{})

	for i := 0; i < 3; i++ {
		user, err := svc.EnsureSnapshot(context.Background())
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if user.ID != "user-1" {
			t.Fatalf("call %d: unexpected user %q", i, user.ID)
		}
	}
	if fetches, _ := client.counts(); fetches != 1 {
		t.Fatalf("expected exactly 1 upstream fetch, got %d", fetches)
	}
}

func TestRefreshSnapshot_DerivesSelectionAndDirectory(t *testing.T) {
	client := &fakeBankClient{user: serviceUser(), fetchBudget: 1}
	svc := newTestService(client, &fakePublisher{})

	if _, err := svc.RefreshSnapshot(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Selection{AccountTypeID: "at-1", AccountID: "acc-a"}
	if got := svc.Selection(); got != want {
		t.Fatalf("expected selection %+v, got %+v", want, got)
	}
	if got := svc.Directory().Len(); got != 3 {
		t.Fatalf("expected 3 directory entries, got %d", got)
	}
	if got := svc.EligibleAccountCount(); got != 2 {
		t.Fatalf("expected 2 eligible accounts (active and pending), got %d", got)
	}
}

func TestAccountOverview(t *testing.T) {
	client := &fakeBankClient{user: serviceUser(), fetchBudget: 1}
	svc := newTestService(client, &fakePublisher{})
	if _, err := svc.RefreshSnapshot(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	views := svc.AccountOverview()
	if len(views) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(views))
	}
	first := views[0]
	if first.ID != "acc-a" || first.Balance != 5000 || first.Currency != "NGN" || !first.Eligible {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.AccountNumber != "0012345678" || first.Category != "PERSONAL" {
		t.Fatalf("row should carry the owning account type fields: %+v", first)
	}
	// The USD-only account shows its own currency and the suspended status
	// makes it ineligible.
	third := views[2]
	if third.Currency != "USD" || third.Balance != 900 || third.Eligible {
		t.Fatalf("unexpected third row: %+v", third)
	}
}

func TestSubmitTransfer_InvalidFormNeverReachesUpstream(t *testing.T) {
	client := &fakeBankClient{user: serviceUser(), fetchBudget: 1}
	svc := newTestService(client, &fakePublisher{})

	svc.UpdateForm(TransferForm{Amount: "abc", FromAccountID: "acc-a", ToAccountID: "acc-b"})
	outcome, err := svc.SubmitTransfer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Validation.Valid {
		t.Fatal("expected invalid validation")
	}
	if outcome.Validation.Reason != domain.ReasonInvalidAmount {
		t.Fatalf("expected invalid_amount, got %q", outcome.Validation.Reason)
	}
	if outcome.Response != nil {
		t.Fatal("no upstream response expected for a failed validation")
	}
	if _, submits := client.counts(); submits != 0 {
		t.Fatalf("upstream submit must not be called, got %d calls", submits)
	}
	// The form is kept so the user can correct it.
	if got := svc.Form(); got.Amount != "abc" {
		t.Fatalf("form should survive a failed validation, got %+v", got)
	}
}

func TestSubmitTransfer_SuccessResetsFormAndMarksStale(t *testing.T) {
	client := &fakeBankClient{
		user:        serviceUser(),
		fetchBudget: 1, // the post-transfer refetch fails, cache stays stale
		submitResp:  &domain.TransferResponse{Success: true, Message: "Transfer successful", TransactionID: "txn-42"},
	}
	producer := &fakePublisher{}
	svc := newTestService(client, producer)

	svc.UpdateForm(TransferForm{Amount: "1000", FromAccountID: "acc-a", ToAccountID: "acc-b"})
	outcome, err := svc.SubmitTransfer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Validation.Valid || outcome.Validation.Amount != 1000 {
		t.Fatalf("expected valid outcome for 1000, got %+v", outcome.Validation)
	}
	if outcome.Response == nil || outcome.Response.TransactionID != "txn-42" {
		t.Fatalf("expected upstream response to pass through, got %+v", outcome.Response)
	}

	if got := svc.Form(); got != (TransferForm{}) {
		t.Fatalf("form should be reset after a successful transfer, got %+v", got)
	}
	if !svc.SnapshotStale() {
		t.Fatal("snapshot should be marked stale after a successful transfer")
	}

	events := producer.published()
	if len(events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(events))
	}
	ev := events[0]
	if ev.UserID != "user-1" || ev.FromAccountID != "acc-a" || ev.ToAccountID != "acc-b" {
		t.Fatalf("unexpected event endpoints: %+v", ev)
	}
	if ev.Amount != 1000 || ev.Currency != "NGN" || ev.TransactionID != "txn-42" {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
}

func TestSubmitTransfer_UpstreamErrorKeepsForm(t *testing.T) {
	upstreamErr := errors.New("transfer rejected upstream")
	client := &fakeBankClient{user: serviceUser(), fetchBudget: 1, submitErr: upstreamErr}
	producer := &fakePublisher{}
	svc := newTestService(client, producer)

	form := TransferForm{Amount: "1000", FromAccountID: "acc-a", ToAccountID: "acc-b"}
	svc.UpdateForm(form)
	if _, err := svc.SubmitTransfer(context.Background()); !errors.Is(err, upstreamErr) {
		t.Fatalf("expected upstream error to surface, got %v", err)
	}
	if got := svc.Form(); got != form {
		t.Fatalf("form should survive an upstream failure, got %+v", got)
	}
	if svc.SnapshotStale() {
		t.Fatal("snapshot should not be stale after a failed transfer")
	}
	if len(producer.published()) != 0 {
		t.Fatal("no event should be published for a failed transfer")
	}
}

func TestSubmitTransfer_InFlightGate(t *testing.T) {
	client := &fakeBankClient{
		user:          serviceUser(),
		fetchBudget:   1,
		submitResp:    &domain.TransferResponse{Success: true},
		submitStarted: make(chan struct{}),
		submitRelease: make(chan struct{}),
	}
	svc := newTestService(client, &fakePublisher{})
	svc.UpdateForm(TransferForm{Amount: "1000", FromAccountID: "acc-a", ToAccountID: "acc-b"})

	done := make(chan error, 1)
	go func() {
		_, err := svc.SubmitTransfer(context.Background())
		done <- err
	}()

	select {
	case <-client.submitStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("first submission never reached the upstream call")
	}

	if _, err := svc.SubmitTransfer(context.Background()); !errors.Is(err, ErrTransferInFlight) {
		t.Fatalf("expected ErrTransferInFlight, got %v", err)
	}

	close(client.submitRelease)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if _, submits := client.counts(); submits != 1 {
		t.Fatalf("expected exactly 1 upstream submit, got %d", submits)
	}
}

func TestSetAccountRequiresSnapshot(t *testing.T) {
	client := &fakeBankClient{user: serviceUser(), fetchBudget: 0}
	svc := newTestService(client, &fakePublisher{})

	if _, err := svc.SetAccountType("at-1"); !errors.Is(err, ErrSnapshotNotLoaded) {
		t.Fatalf("expected ErrSnapshotNotLoaded, got %v", err)
	}
	if _, err := svc.SetAccount("acc-a"); !errors.Is(err, ErrSnapshotNotLoaded) {
		t.Fatalf("expected ErrSnapshotNotLoaded, got %v", err)
	}
}

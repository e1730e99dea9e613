package alerting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tandem/internal/domain/analysis"
	"tandem/internal/domain/budget"
	"tandem/internal/domain/currency"
	"tandem/internal/domain/ledger"
	"tandem/internal/domain/partnership"
	"tandem/internal/domain/reply"
)

type MockRepo struct {
	ListBudgetUsersFunc func(ctx context.Context) ([]BudgetUser, error)
	GetActiveTokensFunc func(ctx context.Context, userID int64) ([]DeviceToken, error)
}

func (m *MockRepo) UpsertDeviceToken(ctx context.Context, params RegisterTokenParams) (*DeviceToken, error) {
	return &DeviceToken{UserID: params.UserID, Token: params.Token, Active: true}, nil
}

func (m *MockRepo) GetActiveTokens(ctx context.Context, userID int64) ([]DeviceToken, error) {
	if m.GetActiveTokensFunc != nil {
		return m.GetActiveTokensFunc(ctx, userID)
	}
	return []DeviceToken{{UserID: userID, Token: "tok-1", Active: true}}, nil
}

func (m *MockRepo) DeactivateToken(ctx context.Context, token string) error { return nil }

func (m *MockRepo) ListBudgetUsers(ctx context.Context) ([]BudgetUser, error) {
	if m.ListBudgetUsersFunc != nil {
		return m.ListBudgetUsersFunc(ctx)
	}
	return nil, nil
}

type MockMessenger struct {
	Sent []string
}

func (m *MockMessenger) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	m.Sent = append(m.Sent, body)
	return nil
}

func (m *MockMessenger) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	m.Sent = append(m.Sent, body)
	return nil
}

type MockGateway struct {
	Records    []ledger.Record
	Thresholds map[string]decimal.Decimal
	Err        error
}

func (m *MockGateway) FetchTransactions(ctx context.Context, scope partnership.Context, filter ledger.Filter) ([]ledger.Record, error) {
	return m.Records, m.Err
}

func (m *MockGateway) FetchBudgetThresholds(ctx context.Context, userID int64) (map[string]decimal.Decimal, error) {
	return m.Thresholds, nil
}

type MockPartnerships struct{}

func (MockPartnerships) Resolve(ctx context.Context, userID int64) (partnership.Context, error) {
	return partnership.Solo(userID), nil
}

type identityConverter struct{}

func (identityConverter) Normalize(_ context.Context, amount decimal.Decimal, _, _ string, _ time.Time) (currency.Converted, error) {
	return currency.Converted{Amount: amount}, nil
}

func newTestSweeper(t *testing.T, repo *MockRepo, gw *MockGateway, msgr *MockMessenger) *Sweeper {
	t.Helper()
	log := zerolog.Nop()
	s := NewSweeper(
		repo, msgr, gw, MockPartnerships{},
		analysis.NewService(identityConverter{}, log),
		budget.NewNotifier(),
		reply.NewFormatter(reply.DefaultCatalog()),
		"pt",
		log,
	)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC) }
	return s
}

func expenseRecord(amount, category string) ledger.Record {
	return ledger.Record{
		OwnerID:  1,
		Amount:   decimal.RequireFromString(amount),
		Currency: "BRL",
		Category: category,
		Date:     time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Type:     ledger.TypeExpense,
	}
}

func TestSweepAlertsUserOverThreshold(t *testing.T) {
	repo := &MockRepo{
		ListBudgetUsersFunc: func(ctx context.Context) ([]BudgetUser, error) {
			return []BudgetUser{{ID: 1, Language: "en", BaseCurrency: "BRL"}}, nil
		},
	}
	gw := &MockGateway{
		Records:    []ledger.Record{expenseRecord("-450", "food")},
		Thresholds: map[string]decimal.Decimal{"food": decimal.NewFromInt(400)},
	}
	msgr := &MockMessenger{}

	report, err := newTestSweeper(t, repo, gw, msgr).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Alerted != 1 {
		t.Fatalf("alerted = %d, want 1", report.Alerted)
	}
	if len(msgr.Sent) != 1 || !strings.Contains(msgr.Sent[0], "food") {
		t.Errorf("expected one push mentioning food, got %v", msgr.Sent)
	}
}

func TestSweepSkipsUsersWithinBudget(t *testing.T) {
	repo := &MockRepo{
		ListBudgetUsersFunc: func(ctx context.Context) ([]BudgetUser, error) {
			return []BudgetUser{{ID: 1, Language: "en", BaseCurrency: "BRL"}}, nil
		},
	}
	gw := &MockGateway{
		Records:    []ledger.Record{expenseRecord("-100", "food")},
		Thresholds: map[string]decimal.Decimal{"food": decimal.NewFromInt(400)},
	}
	msgr := &MockMessenger{}

	report, err := newTestSweeper(t, repo, gw, msgr).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Alerted != 0 || len(msgr.Sent) != 0 {
		t.Errorf("expected no alerts, got report %+v sends %v", report, msgr.Sent)
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	calls := 0
	repo := &MockRepo{
		ListBudgetUsersFunc: func(ctx context.Context) ([]BudgetUser, error) {
			return []BudgetUser{
				{ID: 1, Language: "en", BaseCurrency: "BRL"},
				{ID: 2, Language: "en", BaseCurrency: "BRL"},
			}, nil
		},
	}
	gw := &MockGateway{
		Thresholds: map[string]decimal.Decimal{"food": decimal.NewFromInt(400)},
	}
	// First user's fetch fails, second succeeds over budget.
	failing := &failingGateway{inner: gw, failFirst: &calls}
	msgr := &MockMessenger{}

	s := newTestSweeper(t, repo, gw, msgr)
	s.gateway = failing

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failures != 1 {
		t.Errorf("failures = %d, want 1", report.Failures)
	}
	if report.Alerted != 1 {
		t.Errorf("alerted = %d, want 1", report.Alerted)
	}
}

type failingGateway struct {
	inner     *MockGateway
	failFirst *int
}

func (f *failingGateway) FetchTransactions(ctx context.Context, scope partnership.Context, filter ledger.Filter) ([]ledger.Record, error) {
	*f.failFirst++
	if *f.failFirst == 1 {
		return nil, errors.New("connection reset")
	}
	return []ledger.Record{expenseRecord("-500", "food")}, nil
}

func (f *failingGateway) FetchBudgetThresholds(ctx context.Context, userID int64) (map[string]decimal.Decimal, error) {
	return f.inner.FetchBudgetThresholds(ctx, userID)
}

func TestRegisterDeviceValidates(t *testing.T) {
	svc := NewService(&MockRepo{})
	if _, err := svc.RegisterDevice(context.Background(), RegisterTokenParams{UserID: 1}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	tok, err := svc.RegisterDevice(context.Background(), RegisterTokenParams{UserID: 1, Token: "tok"})
	if err != nil || tok.Token != "tok" {
		t.Fatalf("RegisterDevice: %v %v", tok, err)
	}
}

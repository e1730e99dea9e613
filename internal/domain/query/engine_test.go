package query

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

type MockGateway struct {
	FetchTransactionsFunc     func(ctx context.Context, scope partnership.Context, filter ledger.Filter) ([]ledger.Record, error)
	FetchBudgetThresholdsFunc func(ctx context.Context, userID int64) (map[string]decimal.Decimal, error)
	FetchCalls                int
}

func (m *MockGateway) FetchTransactions(ctx context.Context, scope partnership.Context, filter ledger.Filter) ([]ledger.Record, error) {
	m.FetchCalls++
	if m.FetchTransactionsFunc != nil {
		return m.FetchTransactionsFunc(ctx, scope, filter)
	}
	return nil, nil
}

func (m *MockGateway) FetchBudgetThresholds(ctx context.Context, userID int64) (map[string]decimal.Decimal, error) {
	if m.FetchBudgetThresholdsFunc != nil {
		return m.FetchBudgetThresholdsFunc(ctx, userID)
	}
	return nil, nil
}

type MockPartnerships struct {
	ResolveFunc func(ctx context.Context, userID int64) (partnership.Context, error)
}

func (m *MockPartnerships) Resolve(ctx context.Context, userID int64) (partnership.Context, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, userID)
	}
	return partnership.Solo(userID), nil
}

type identityConverter struct{}

func (identityConverter) Normalize(_ context.Context, amount decimal.Decimal, _, _ string, _ time.Time) (currency.Converted, error) {
	return currency.Converted{Amount: amount}, nil
}

func newTestEngine(t *testing.T, gw *MockGateway, parts *MockPartnerships) *Engine {
	t.Helper()
	classifier, err := NewClassifier()
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	log := zerolog.Nop()
	e := NewEngine(
		EngineConfig{BaseCurrency: "BRL", DefaultLanguage: "en"},
		classifier,
		gw,
		parts,
		analysis.NewService(identityConverter{}, log),
		budget.NewNotifier(),
		reply.NewFormatter(reply.DefaultCatalog()),
		log,
	)
	e.now = func() time.Time { return refNow }
	return e
}

func marchRecord(day int, amount string, category string, typ ledger.Type) ledger.Record {
	return ledger.Record{
		OwnerID:  1,
		Amount:   decimal.RequireFromString(amount),
		Currency: "BRL",
		Category: category,
		Date:     time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC),
		Type:     typ,
	}
}

func TestAnswerSpendingOnCategory(t *testing.T) {
	gw := &MockGateway{
		FetchTransactionsFunc: func(_ context.Context, _ partnership.Context, filter ledger.Filter) ([]ledger.Record, error) {
			if len(filter.Categories) != 1 || filter.Categories[0] != CategoryFood {
				t.Errorf("expected food filter, got %v", filter.Categories)
			}
			return []ledger.Record{
				marchRecord(3, "-50", CategoryFood, ledger.TypeExpense),
				marchRecord(10, "-30", CategoryFood, ledger.TypeExpense),
			}, nil
		},
	}
	e := newTestEngine(t, gw, &MockPartnerships{})

	resp, err := e.Answer(context.Background(), Request{UserID: 1, Text: "How much did I spend on food this month?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Intent != IntentSpending {
		t.Fatalf("intent = %s, want %s", resp.Intent, IntentSpending)
	}
	if !resp.Data.Total.Equal(decimal.NewFromInt(80)) {
		t.Errorf("total = %s, want 80", resp.Data.Total)
	}
	if !strings.Contains(resp.Text, "80") {
		t.Errorf("text %q should mention the total", resp.Text)
	}
	if resp.Language != "en" {
		t.Errorf("language = %q, want en", resp.Language)
	}
}

func TestAnswerSavings(t *testing.T) {
	gw := &MockGateway{
		FetchTransactionsFunc: func(_ context.Context, _ partnership.Context, _ ledger.Filter) ([]ledger.Record, error) {
			return []ledger.Record{
				marchRecord(1, "1000", "salary", ledger.TypeIncome),
				marchRecord(5, "-80", CategoryFood, ledger.TypeExpense),
			}, nil
		},
	}
	e := newTestEngine(t, gw, &MockPartnerships{})

	resp, err := e.Answer(context.Background(), Request{UserID: 1, Text: "am I saving money?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Intent != IntentSavings {
		t.Fatalf("intent = %s, want %s", resp.Intent, IntentSavings)
	}
	if !resp.Data.Net.Equal(decimal.NewFromInt(920)) {
		t.Errorf("net = %s, want 920", resp.Data.Net)
	}
	if !resp.Data.SavingsRate.Equal(decimal.RequireFromString("92")) {
		t.Errorf("savings rate = %s, want 92", resp.Data.SavingsRate)
	}
}

func TestAnswerUnrecognizedSkipsDataAccess(t *testing.T) {
	gw := &MockGateway{}
	parts := &MockPartnerships{
		ResolveFunc: func(_ context.Context, _ int64) (partnership.Context, error) {
			t.Error("partnership resolution should not run for unrecognized queries")
			return partnership.Context{}, nil
		},
	}
	e := newTestEngine(t, gw, parts)

	resp, err := e.Answer(context.Background(), Request{UserID: 1, Text: "asdkjh qweqwe"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Intent != IntentUnrecognized {
		t.Fatalf("intent = %s, want %s", resp.Intent, IntentUnrecognized)
	}
	if gw.FetchCalls != 0 {
		t.Errorf("gateway called %d times, want 0", gw.FetchCalls)
	}
	if resp.Text == "" {
		t.Error("expected help text")
	}
}

func TestAnswerComparisonFetchesBothPeriods(t *testing.T) {
	var ranges []ledger.DateRange
	gw := &MockGateway{
		FetchTransactionsFunc: func(_ context.Context, _ partnership.Context, filter ledger.Filter) ([]ledger.Record, error) {
			ranges = append(ranges, filter.Range)
			if len(ranges) == 1 {
				return []ledger.Record{marchRecord(3, "-150", CategoryFood, ledger.TypeExpense)}, nil
			}
			return []ledger.Record{{
				OwnerID: 1, Amount: decimal.RequireFromString("-100"), Currency: "BRL",
				Category: CategoryFood, Date: time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
				Type: ledger.TypeExpense,
			}}, nil
		},
	}
	e := newTestEngine(t, gw, &MockPartnerships{})

	resp, err := e.Answer(context.Background(), Request{UserID: 1, Text: "did we spend more than last month?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Intent != IntentComparisonPeriod {
		t.Fatalf("intent = %s, want %s", resp.Intent, IntentComparisonPeriod)
	}
	if gw.FetchCalls != 2 {
		t.Fatalf("gateway called %d times, want 2", gw.FetchCalls)
	}
	// "last month" fixes the current window to February; the baseline is January.
	if ranges[0].Start.Month() != time.February {
		t.Errorf("current range starts %v, want February", ranges[0].Start)
	}
	if ranges[1].Start.Month() != time.January {
		t.Errorf("previous range starts %v, want January", ranges[1].Start)
	}
	if resp.Data.Comparison == nil {
		t.Fatal("expected comparison data")
	}
	if !resp.Data.Comparison.Delta.Equal(decimal.NewFromInt(50)) {
		t.Errorf("delta = %s, want 50", resp.Data.Comparison.Delta)
	}
}

func TestAnswerBudgetStatus(t *testing.T) {
	gw := &MockGateway{
		FetchTransactionsFunc: func(_ context.Context, _ partnership.Context, _ ledger.Filter) ([]ledger.Record, error) {
			return []ledger.Record{
				marchRecord(2, "-450", CategoryFood, ledger.TypeExpense),
				marchRecord(4, "-90", CategoryTransport, ledger.TypeExpense),
			}, nil
		},
		FetchBudgetThresholdsFunc: func(_ context.Context, userID int64) (map[string]decimal.Decimal, error) {
			if userID != 7 {
				t.Errorf("thresholds fetched for user %d, want 7", userID)
			}
			return map[string]decimal.Decimal{
				CategoryFood:      decimal.NewFromInt(400),
				CategoryTransport: decimal.NewFromInt(200),
			}, nil
		},
	}
	e := newTestEngine(t, gw, &MockPartnerships{})

	resp, err := e.Answer(context.Background(), Request{UserID: 7, Text: "are we over budget?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Intent != IntentBudgetStatus {
		t.Fatalf("intent = %s, want %s", resp.Intent, IntentBudgetStatus)
	}
	if len(resp.Alerts) != 1 {
		t.Fatalf("alerts = %v, want exactly one", resp.Alerts)
	}
	if resp.Alerts[0].Category != CategoryFood {
		t.Errorf("alert category = %s, want food", resp.Alerts[0].Category)
	}
}

func TestAnswerPortugueseResponse(t *testing.T) {
	gw := &MockGateway{
		FetchTransactionsFunc: func(_ context.Context, _ partnership.Context, _ ledger.Filter) ([]ledger.Record, error) {
			return []ledger.Record{marchRecord(3, "-80", CategoryFood, ledger.TypeExpense)}, nil
		},
	}
	e := newTestEngine(t, gw, &MockPartnerships{})

	resp, err := e.Answer(context.Background(), Request{UserID: 1, Text: "quanto gastei com mercado este mês?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Intent != IntentSpending {
		t.Fatalf("intent = %s, want %s", resp.Intent, IntentSpending)
	}
	if resp.Language != "pt-BR" {
		t.Errorf("language = %q, want pt-BR", resp.Language)
	}
	if !strings.Contains(strings.ToLower(resp.Text), "gastou") {
		t.Errorf("expected Portuguese reply, got %q", resp.Text)
	}
}

func TestAnswerUsesRequestBaseCurrency(t *testing.T) {
	gw := &MockGateway{
		FetchTransactionsFunc: func(_ context.Context, _ partnership.Context, _ ledger.Filter) ([]ledger.Record, error) {
			return []ledger.Record{marchRecord(3, "-80", CategoryFood, ledger.TypeExpense)}, nil
		},
	}
	e := newTestEngine(t, gw, &MockPartnerships{})

	resp, err := e.Answer(context.Background(), Request{UserID: 1, Text: "how much did I spend this month?", BaseCurrency: "EUR"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Data.Currency != "EUR" {
		t.Errorf("currency = %q, want request base EUR", resp.Data.Currency)
	}

	// An explicit currency in the query still wins over the profile default.
	resp, err = e.Answer(context.Background(), Request{UserID: 1, Text: "how much did I spend this month in dollars?", BaseCurrency: "EUR"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Data.Currency != "USD" {
		t.Errorf("currency = %q, want USD", resp.Data.Currency)
	}

	// No request preference falls back to the engine default.
	resp, err = e.Answer(context.Background(), Request{UserID: 1, Text: "how much did I spend this month?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Data.Currency != "BRL" {
		t.Errorf("currency = %q, want configured BRL", resp.Data.Currency)
	}
}

func TestAnswerGatewayFailure(t *testing.T) {
	gw := &MockGateway{
		FetchTransactionsFunc: func(_ context.Context, _ partnership.Context, _ ledger.Filter) ([]ledger.Record, error) {
			return nil, errors.New("connection refused")
		},
	}
	e := newTestEngine(t, gw, &MockPartnerships{})

	_, err := e.Answer(context.Background(), Request{UserID: 1, Text: "how much did I spend this month?"})
	if !errors.Is(err, ErrDataFetchFailed) {
		t.Fatalf("expected ErrDataFetchFailed, got %v", err)
	}
}

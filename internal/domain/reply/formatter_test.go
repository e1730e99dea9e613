package reply

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"tandem/internal/domain/analysis"
	"tandem/internal/domain/budget"
	"tandem/internal/domain/ledger"
)

func testResult(kind analysis.Kind) *analysis.Result {
	return &analysis.Result{
		Kind:     kind,
		Currency: "BRL",
		Range: ledger.DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
		},
		Total: decimal.NewFromInt(80),
	}
}

func newTestFormatter(t *testing.T) *Formatter {
	t.Helper()
	c := DefaultCatalog()
	if err := c.Validate(); err != nil {
		t.Fatalf("catalog invalid: %v", err)
	}
	return NewFormatter(c)
}

func TestSpendingWithCategory(t *testing.T) {
	f := newTestFormatter(t)
	res := testResult(analysis.KindTotal)

	text, err := f.Spending(language.English, res, []string{"food"})
	if err != nil {
		t.Fatalf("Spending() error: %v", err)
	}
	if !strings.Contains(text, "food") {
		t.Errorf("Spending() = %q, want category name in text", text)
	}
	if !strings.Contains(text, "80") {
		t.Errorf("Spending() = %q, want amount in text", text)
	}
}

func TestSpendingLocalizedPortuguese(t *testing.T) {
	f := newTestFormatter(t)
	res := testResult(analysis.KindTotal)

	text, err := f.Spending(language.BrazilianPortuguese, res, nil)
	if err != nil {
		t.Fatalf("Spending() error: %v", err)
	}
	if !strings.Contains(text, "gastou") {
		t.Errorf("Spending(pt) = %q, want Portuguese text", text)
	}
	if !strings.Contains(text, "01/01/2024") {
		t.Errorf("Spending(pt) = %q, want pt date convention", text)
	}
}

func TestComparisonPeriodNotApplicable(t *testing.T) {
	f := newTestFormatter(t)
	res := testResult(analysis.KindComparisonPeriod)
	res.Comparison = &analysis.Comparison{
		Current:  decimal.NewFromInt(150),
		Previous: decimal.Zero,
		Delta:    decimal.NewFromInt(150),
	}

	text, err := f.ComparisonPeriod(language.English, res)
	if err != nil {
		t.Fatalf("ComparisonPeriod() error: %v", err)
	}
	if !strings.Contains(text, "N/A") {
		t.Errorf("ComparisonPeriod() = %q, want N/A for zero baseline", text)
	}
}

func TestStaleRateAnnotation(t *testing.T) {
	f := newTestFormatter(t)
	res := testResult(analysis.KindTotal)
	res.Stale = true

	text, err := f.Spending(language.English, res, nil)
	if err != nil {
		t.Fatalf("Spending() error: %v", err)
	}
	if !strings.Contains(text, "out of date") {
		t.Errorf("Spending() = %q, want stale-rate annotation", text)
	}
}

func TestBudgetStatusAllClear(t *testing.T) {
	f := newTestFormatter(t)
	res := testResult(analysis.KindBreakdown)

	text, err := f.BudgetStatus(language.English, res, nil)
	if err != nil {
		t.Fatalf("BudgetStatus() error: %v", err)
	}
	if !strings.Contains(text, "within budget") {
		t.Errorf("BudgetStatus() = %q, want all-clear text", text)
	}
}

func TestBudgetStatusAlerts(t *testing.T) {
	f := newTestFormatter(t)
	res := testResult(analysis.KindBreakdown)
	alerts := []budget.Alert{
		{
			Category:           "food",
			Threshold:          decimal.NewFromInt(500),
			Spent:              decimal.NewFromInt(600),
			Exceeded:           true,
			PercentOfThreshold: decimal.NewFromInt(120),
		},
	}

	text, err := f.BudgetStatus(language.English, res, alerts)
	if err != nil {
		t.Fatalf("BudgetStatus() error: %v", err)
	}
	if !strings.Contains(text, "food") || !strings.Contains(text, "120") {
		t.Errorf("BudgetStatus() = %q, want flagged category and percentage", text)
	}
}

func TestHelpEveryLanguage(t *testing.T) {
	f := newTestFormatter(t)
	for _, lang := range f.catalog.Languages() {
		text, err := f.Help(lang)
		if err != nil {
			t.Errorf("Help(%s) error: %v", lang, err)
		}
		if text == "" {
			t.Errorf("Help(%s) returned empty text", lang)
		}
	}
}

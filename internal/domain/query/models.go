package query

import (
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"tandem/internal/domain/analysis"
	"tandem/internal/domain/budget"
	"tandem/internal/domain/ledger"
)

// Intent identifies what kind of answer a query is asking for.
type Intent string

const (
	IntentSpending          Intent = "SPENDING"
	IntentIncome            Intent = "INCOME"
	IntentBalance           Intent = "BALANCE"
	IntentSavings           Intent = "SAVINGS"
	IntentComparisonPeriod  Intent = "COMPARISON_PERIOD"
	IntentComparisonAmount  Intent = "COMPARISON_AMOUNT"
	IntentCategoryBreakdown Intent = "CATEGORY_BREAKDOWN"
	IntentTrend             Intent = "TREND"
	IntentBudgetStatus      Intent = "BUDGET_STATUS"
	IntentUnrecognized      Intent = "UNRECOGNIZED"
)

// ErrDataFetchFailed wraps gateway failures so the transport layer can map
// them distinctly from rate lookup failures.
var ErrDataFetchFailed = errors.New("transaction data fetch failed")

// Match is the outcome of classification: the winning intent and the rank of
// the rule that produced it (0 is the most specific rule; -1 means no rule
// matched).
type Match struct {
	Intent   Intent
	Priority int
}

// Parameters are the extracted inputs a classified query runs with.
type Parameters struct {
	Range         ledger.DateRange
	Categories    []string
	Currency      string
	CompareAmount *decimal.Decimal
	Basis         analysis.Basis
	TrendMonths   int
}

// Request is a single natural-language question from one partner.
type Request struct {
	UserID int64
	Text   string
	// Language is an optional BCP 47 preference such as "pt-BR". Callers
	// fill it from the request or the user's stored preference; when empty
	// the engine's configured default applies, subject to detection.
	Language string
	// BaseCurrency is the user's base currency. When empty the engine's
	// configured default applies.
	BaseCurrency string
}

// Response is the engine's answer: localized text plus the structured result
// it was rendered from.
type Response struct {
	Intent   Intent           `json:"intent"`
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Data     *analysis.Result `json:"data,omitempty"`
	Alerts   []budget.Alert   `json:"alerts,omitempty"`
}

func responseLanguage(tag language.Tag) string { return tag.String() }

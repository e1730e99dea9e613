package analysis

import (
	"time"

	"github.com/shopspring/decimal"

	"tandem/internal/domain/ledger"
)

// Kind identifies the shape of the payload carried by a Result.
type Kind string

const (
	KindTotal            Kind = "total"
	KindBalance          Kind = "balance"
	KindSavings          Kind = "savings"
	KindComparisonPeriod Kind = "comparison-period"
	KindComparisonAmount Kind = "comparison-amount"
	KindBreakdown        Kind = "breakdown"
	KindTrend            Kind = "trend"
)

// Direction classifies a trend series.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionFlat       Direction = "flat"
)

// CategoryTotal is one entry of a category breakdown.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// PeriodTotal is one bucket of a trend series.
type PeriodTotal struct {
	Period string          `json:"period"` // e.g. "2024-01"
	Start  time.Time       `json:"start"`
	Total  decimal.Decimal `json:"total"`
}

// Comparison holds a current-vs-previous period aggregate. PercentDelta is nil
// when the baseline total is zero ("N/A", never infinity).
type Comparison struct {
	Current       decimal.Decimal  `json:"current"`
	Previous      decimal.Decimal  `json:"previous"`
	Delta         decimal.Decimal  `json:"delta"`
	PercentDelta  *decimal.Decimal `json:"percentDelta,omitempty"`
	PreviousRange ledger.DateRange `json:"previousRange"`
}

// AmountComparison holds a total measured against a user-stated target.
type AmountComparison struct {
	Target     decimal.Decimal `json:"target"`
	Difference decimal.Decimal `json:"difference"` // total - target
	Over       bool            `json:"over"`
}

// Result is the intent-specific analytical payload, always expressed in a
// single display currency over a single date range. Stale is set when any
// amount was normalized with a rate past its validity window.
type Result struct {
	Kind     Kind             `json:"kind"`
	Currency string           `json:"currency"`
	Range    ledger.DateRange `json:"range"`
	Stale    bool             `json:"stale,omitempty"`

	Total       decimal.Decimal   `json:"total"`
	Income      decimal.Decimal   `json:"income,omitempty"`
	Expenses    decimal.Decimal   `json:"expenses,omitempty"`
	Net         decimal.Decimal   `json:"net,omitempty"`
	SavingsRate decimal.Decimal   `json:"savingsRate,omitempty"`
	Comparison  *Comparison       `json:"comparison,omitempty"`
	Amount      *AmountComparison `json:"amountComparison,omitempty"`
	Categories  []CategoryTotal   `json:"categories,omitempty"`
	Series      []PeriodTotal     `json:"series,omitempty"`
	Direction   Direction         `json:"direction,omitempty"`
}

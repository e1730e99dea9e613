package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tandem/internal/domain/currency"
	"tandem/internal/domain/ledger"
)

// trendThreshold is the relative change below which a trend is reported flat,
// to avoid direction flips on noise.
var trendThreshold = decimal.RequireFromString("0.05")

var oneHundred = decimal.NewFromInt(100)

// Basis selects which aggregate a period comparison is computed over.
type Basis string

const (
	BasisSpending Basis = "spending"
	BasisIncome   Basis = "income"
	BasisSavings  Basis = "savings"
)

// Converter normalizes an amount into a display currency. Implemented by
// currency.Normalizer.
type Converter interface {
	Normalize(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (currency.Converted, error)
}

// Service runs the intent-specific aggregations over fetched records. Every
// amount is normalized into the display currency before aggregation; raw
// mixed-currency decimals are never summed.
type Service struct {
	rates Converter
	log   zerolog.Logger
}

// NewService creates an analysis service using the given rate converter.
func NewService(rates Converter, log zerolog.Logger) *Service {
	return &Service{rates: rates, log: log.With().Str("component", "analysis").Logger()}
}

// normalized is a record with its absolute amount expressed in the display currency.
type normalized struct {
	record ledger.Record
	amount decimal.Decimal
}

// normalizeAll converts every record's absolute amount into the display
// currency. Transfers are dropped: they move money between the household's own
// accounts and would double-count in any aggregate.
func (s *Service) normalizeAll(ctx context.Context, records []ledger.Record, displayCurrency string, asOf time.Time) ([]normalized, bool, error) {
	out := make([]normalized, 0, len(records))
	stale := false
	for _, rec := range records {
		if rec.Type == ledger.TypeTransfer {
			continue
		}
		conv, err := s.rates.Normalize(ctx, rec.Amount.Abs(), rec.Currency, displayCurrency, asOf)
		if err != nil {
			return nil, false, fmt.Errorf("failed to normalize %s record %s: %w", rec.Currency, rec.ID, err)
		}
		if conv.Stale {
			stale = true
		}
		out = append(out, normalized{record: rec, amount: conv.Amount})
	}
	return out, stale, nil
}

func sumByType(records []normalized, t ledger.Type) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.record.Type == t {
			total = total.Add(r.amount)
		}
	}
	return total
}

func basisTotal(records []normalized, basis Basis) decimal.Decimal {
	switch basis {
	case BasisIncome:
		return sumByType(records, ledger.TypeIncome)
	case BasisSavings:
		return sumByType(records, ledger.TypeIncome).Sub(sumByType(records, ledger.TypeExpense))
	default:
		return sumByType(records, ledger.TypeExpense)
	}
}

// Spending sums expense records over the range in the display currency.
func (s *Service) Spending(ctx context.Context, records []ledger.Record, rng ledger.DateRange, displayCurrency string, asOf time.Time) (*Result, error) {
	norm, stale, err := s.normalizeAll(ctx, records, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:     KindTotal,
		Currency: displayCurrency,
		Range:    rng,
		Stale:    stale,
		Total:    sumByType(norm, ledger.TypeExpense),
	}, nil
}

// Income sums income records over the range in the display currency.
func (s *Service) Income(ctx context.Context, records []ledger.Record, rng ledger.DateRange, displayCurrency string, asOf time.Time) (*Result, error) {
	norm, stale, err := s.normalizeAll(ctx, records, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:     KindTotal,
		Currency: displayCurrency,
		Range:    rng,
		Stale:    stale,
		Total:    sumByType(norm, ledger.TypeIncome),
	}, nil
}

// Balance computes income minus expenses over the range.
func (s *Service) Balance(ctx context.Context, records []ledger.Record, rng ledger.DateRange, displayCurrency string, asOf time.Time) (*Result, error) {
	norm, stale, err := s.normalizeAll(ctx, records, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}
	income := sumByType(norm, ledger.TypeIncome)
	expenses := sumByType(norm, ledger.TypeExpense)
	net := income.Sub(expenses)
	return &Result{
		Kind:     KindBalance,
		Currency: displayCurrency,
		Range:    rng,
		Stale:    stale,
		Total:    net,
		Income:   income,
		Expenses: expenses,
		Net:      net,
	}, nil
}

// Savings computes the balance and expresses it as a percentage of income.
// The rate is exactly zero when income is zero; never an error or NaN.
func (s *Service) Savings(ctx context.Context, records []ledger.Record, rng ledger.DateRange, displayCurrency string, asOf time.Time) (*Result, error) {
	res, err := s.Balance(ctx, records, rng, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}
	res.Kind = KindSavings
	if res.Income.IsPositive() {
		res.SavingsRate = res.Net.Div(res.Income).Mul(oneHundred).Round(2)
	}
	return res, nil
}

// ComparePeriods computes the same aggregate for the current range and the
// equal-length immediately preceding range. PercentDelta is nil when the
// baseline is zero.
func (s *Service) ComparePeriods(ctx context.Context, current, previous []ledger.Record, rng, prevRng ledger.DateRange, basis Basis, displayCurrency string, asOf time.Time) (*Result, error) {
	currNorm, staleCurr, err := s.normalizeAll(ctx, current, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}
	prevNorm, stalePrev, err := s.normalizeAll(ctx, previous, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}

	currTotal := basisTotal(currNorm, basis)
	prevTotal := basisTotal(prevNorm, basis)
	delta := currTotal.Sub(prevTotal)

	var pct *decimal.Decimal
	if !prevTotal.IsZero() {
		v := delta.Div(prevTotal).Mul(oneHundred).Round(2)
		pct = &v
	}

	return &Result{
		Kind:     KindComparisonPeriod,
		Currency: displayCurrency,
		Range:    rng,
		Stale:    staleCurr || stalePrev,
		Total:    currTotal,
		Comparison: &Comparison{
			Current:       currTotal,
			Previous:      prevTotal,
			Delta:         delta,
			PercentDelta:  pct,
			PreviousRange: prevRng,
		},
	}, nil
}

// CompareAmount measures spending over the range against a user-stated target.
func (s *Service) CompareAmount(ctx context.Context, records []ledger.Record, rng ledger.DateRange, displayCurrency string, target decimal.Decimal, asOf time.Time) (*Result, error) {
	res, err := s.Spending(ctx, records, rng, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}
	res.Kind = KindComparisonAmount
	res.Amount = &AmountComparison{
		Target:     target,
		Difference: res.Total.Sub(target),
		Over:       res.Total.GreaterThan(target),
	}
	return res, nil
}

// Breakdown groups expenses by category, sorted descending by amount with
// ties broken by category name ascending so the order is deterministic.
func (s *Service) Breakdown(ctx context.Context, records []ledger.Record, rng ledger.DateRange, displayCurrency string, asOf time.Time) (*Result, error) {
	norm, stale, err := s.normalizeAll(ctx, records, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, r := range norm {
		if r.record.Type != ledger.TypeExpense {
			continue
		}
		byCategory[r.record.Category] = byCategory[r.record.Category].Add(r.amount)
		total = total.Add(r.amount)
	}

	categories := make([]CategoryTotal, 0, len(byCategory))
	for name, amount := range byCategory {
		categories = append(categories, CategoryTotal{Category: name, Total: amount})
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].Total.Equal(categories[j].Total) {
			return categories[i].Total.GreaterThan(categories[j].Total)
		}
		return categories[i].Category < categories[j].Category
	})

	return &Result{
		Kind:       KindBreakdown,
		Currency:   displayCurrency,
		Range:      rng,
		Stale:      stale,
		Total:      total,
		Categories: categories,
	}, nil
}

// Trend buckets expenses into calendar-month totals across the range and
// classifies the direction by comparing the mean of the first half of the
// series against the mean of the second half, with a ±5% flat band.
func (s *Service) Trend(ctx context.Context, records []ledger.Record, rng ledger.DateRange, displayCurrency string, asOf time.Time) (*Result, error) {
	norm, stale, err := s.normalizeAll(ctx, records, displayCurrency, asOf)
	if err != nil {
		return nil, err
	}

	series := monthBuckets(rng)
	for _, r := range norm {
		if r.record.Type != ledger.TypeExpense {
			continue
		}
		key := r.record.Date.UTC().Format("2006-01")
		for i := range series {
			if series[i].Period == key {
				series[i].Total = series[i].Total.Add(r.amount)
				break
			}
		}
	}

	total := decimal.Zero
	for _, p := range series {
		total = total.Add(p.Total)
	}

	return &Result{
		Kind:      KindTrend,
		Currency:  displayCurrency,
		Range:     rng,
		Stale:     stale,
		Total:     total,
		Series:    series,
		Direction: classifyTrend(series),
	}, nil
}

// monthBuckets builds an empty bucket per calendar month covered by the range.
func monthBuckets(rng ledger.DateRange) []PeriodTotal {
	var buckets []PeriodTotal
	start := time.Date(rng.Start.UTC().Year(), rng.Start.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	for cur := start; !cur.After(rng.End.UTC()); cur = cur.AddDate(0, 1, 0) {
		buckets = append(buckets, PeriodTotal{
			Period: cur.Format("2006-01"),
			Start:  cur,
			Total:  decimal.Zero,
		})
	}
	return buckets
}

func classifyTrend(series []PeriodTotal) Direction {
	if len(series) < 2 {
		return DirectionFlat
	}

	half := len(series) / 2
	first := meanOf(series[:half])
	second := meanOf(series[len(series)-half:])

	if first.IsZero() {
		if second.IsPositive() {
			return DirectionIncreasing
		}
		return DirectionFlat
	}

	change := second.Sub(first).Div(first)
	switch {
	case change.GreaterThan(trendThreshold):
		return DirectionIncreasing
	case change.LessThan(trendThreshold.Neg()):
		return DirectionDecreasing
	default:
		return DirectionFlat
	}
}

func meanOf(series []PeriodTotal) decimal.Decimal {
	if len(series) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range series {
		sum = sum.Add(p.Total)
	}
	return sum.Div(decimal.NewFromInt(int64(len(series))))
}

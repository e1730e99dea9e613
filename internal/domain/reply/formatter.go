package reply

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"tandem/internal/domain/analysis"
	"tandem/internal/domain/budget"
)

// breakdownLimit caps how many categories a breakdown answer lists in text.
// The full ranking stays available in the structured payload.
const breakdownLimit = 3

// Formatter renders localized, currency-formatted answers from analysis
// results. Amount and number formatting follow the locale's conventions
// (decimal separators, currency symbols) via golang.org/x/text.
type Formatter struct {
	catalog *Catalog
}

// NewFormatter creates a formatter over a validated catalog.
func NewFormatter(catalog *Catalog) *Formatter {
	return &Formatter{catalog: catalog}
}

// Help renders the clarification answer for unrecognized queries.
func (f *Formatter) Help(lang language.Tag) (string, error) {
	return f.catalog.text(lang, keyHelp)
}

// AlertTitle renders the push notification title for budget alerts.
func (f *Formatter) AlertTitle(lang language.Tag) (string, error) {
	return f.catalog.text(lang, keyAlertTitle)
}

// Spending renders a spending or income total. categoryFilter lists the
// category names the query was restricted to, if any.
func (f *Formatter) Spending(lang language.Tag, res *analysis.Result, categoryFilter []string) (string, error) {
	amount := f.money(lang, res.Currency, res.Total)
	from, to := f.rangeDates(lang, res)

	if len(categoryFilter) > 0 {
		return f.render(lang, res, keySpendingCategory, amount, strings.Join(categoryFilter, ", "), from, to)
	}
	return f.render(lang, res, keySpending, amount, from, to)
}

// Income renders an income total.
func (f *Formatter) Income(lang language.Tag, res *analysis.Result) (string, error) {
	from, to := f.rangeDates(lang, res)
	return f.render(lang, res, keyIncome, f.money(lang, res.Currency, res.Total), from, to)
}

// Balance renders income minus expenses.
func (f *Formatter) Balance(lang language.Tag, res *analysis.Result) (string, error) {
	from, to := f.rangeDates(lang, res)
	return f.render(lang, res, keyBalance,
		f.money(lang, res.Currency, res.Net),
		f.money(lang, res.Currency, res.Income),
		f.money(lang, res.Currency, res.Expenses),
		from, to)
}

// Savings renders the saved amount and its share of income.
func (f *Formatter) Savings(lang language.Tag, res *analysis.Result) (string, error) {
	from, to := f.rangeDates(lang, res)
	return f.render(lang, res, keySavings,
		f.money(lang, res.Currency, res.Net),
		f.percent(lang, res.SavingsRate),
		from, to)
}

// ComparisonPeriod renders a current-vs-previous period comparison. A zero
// baseline renders the localized not-applicable label instead of a percentage.
func (f *Formatter) ComparisonPeriod(lang language.Tag, res *analysis.Result) (string, error) {
	cmp := res.Comparison
	if cmp == nil {
		return "", fmt.Errorf("comparison payload missing for %s result", res.Kind)
	}

	pct, err := f.catalog.text(lang, keyNA)
	if err != nil {
		return "", err
	}
	if cmp.PercentDelta != nil {
		pct = f.percent(lang, *cmp.PercentDelta)
	}

	return f.render(lang, res, keyComparisonPeriod,
		f.money(lang, res.Currency, cmp.Current),
		f.money(lang, res.Currency, cmp.Previous),
		f.money(lang, res.Currency, cmp.Delta),
		pct)
}

// ComparisonAmount renders spending measured against a stated target.
func (f *Formatter) ComparisonAmount(lang language.Tag, res *analysis.Result) (string, error) {
	amt := res.Amount
	if amt == nil {
		return "", fmt.Errorf("amount comparison payload missing for %s result", res.Kind)
	}

	verdictKey := keyUnder
	if amt.Over {
		verdictKey = keyOver
	}
	verdict, err := f.catalog.text(lang, verdictKey)
	if err != nil {
		return "", err
	}

	return f.render(lang, res, keyComparisonAmount,
		f.money(lang, res.Currency, res.Total),
		f.money(lang, res.Currency, amt.Target),
		verdict,
		f.money(lang, res.Currency, amt.Difference.Abs()))
}

// Breakdown renders the top spending categories.
func (f *Formatter) Breakdown(lang language.Tag, res *analysis.Result) (string, error) {
	from, to := f.rangeDates(lang, res)
	if len(res.Categories) == 0 {
		return f.render(lang, res, keyBreakdownEmpty, from, to)
	}

	items := make([]string, 0, breakdownLimit)
	for i, c := range res.Categories {
		if i == breakdownLimit {
			break
		}
		items = append(items, fmt.Sprintf("%s (%s)", c.Category, f.money(lang, res.Currency, c.Total)))
	}
	return f.render(lang, res, keyBreakdown, strings.Join(items, ", "), from, to)
}

// Trend renders the period-over-period series and its direction.
func (f *Formatter) Trend(lang language.Tag, res *analysis.Result) (string, error) {
	directionKey := keyTrendFlat
	switch res.Direction {
	case analysis.DirectionIncreasing:
		directionKey = keyTrendIncreasing
	case analysis.DirectionDecreasing:
		directionKey = keyTrendDecreasing
	}
	direction, err := f.catalog.text(lang, directionKey)
	if err != nil {
		return "", err
	}

	items := make([]string, 0, len(res.Series))
	for _, p := range res.Series {
		items = append(items, fmt.Sprintf("%s: %s", p.Period, f.money(lang, res.Currency, p.Total)))
	}

	return f.render(lang, res, keyTrend, direction, len(res.Series), strings.Join(items, ", "))
}

// BudgetStatus renders the flagged budget alerts, or the all-clear text.
func (f *Formatter) BudgetStatus(lang language.Tag, res *analysis.Result, alerts []budget.Alert) (string, error) {
	if len(alerts) == 0 {
		return f.render(lang, res, keyBudgetOK)
	}

	itemTmpl, err := f.catalog.text(lang, keyBudgetItem)
	if err != nil {
		return "", err
	}
	items := make([]string, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, fmt.Sprintf(itemTmpl,
			a.Category,
			f.money(lang, res.Currency, a.Spent),
			f.money(lang, res.Currency, a.Threshold),
			f.percent(lang, a.PercentOfThreshold)))
	}
	return f.render(lang, res, keyBudget, strings.Join(items, "; "))
}

// render fills a template and appends the stale-rate annotation when the
// result was derived from an expired exchange rate.
func (f *Formatter) render(lang language.Tag, res *analysis.Result, key string, args ...any) (string, error) {
	tmpl, err := f.catalog.text(lang, key)
	if err != nil {
		return "", err
	}
	out := fmt.Sprintf(tmpl, args...)

	if res != nil && res.Stale {
		note, err := f.catalog.text(lang, keyStaleNote)
		if err != nil {
			return "", err
		}
		out += note
	}
	return out, nil
}

// money formats an amount with the locale's separators and the currency's
// symbol. Unknown ISO codes fall back to a "CODE 1,234.56" rendering.
func (f *Formatter) money(lang language.Tag, code string, v decimal.Decimal) string {
	p := message.NewPrinter(lang)
	fv, _ := v.Float64()
	if unit, err := currency.ParseISO(code); err == nil {
		return p.Sprintf("%v", currency.Symbol(unit.Amount(fv)))
	}
	return p.Sprintf("%s %v", code, number.Decimal(fv, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func (f *Formatter) percent(lang language.Tag, v decimal.Decimal) string {
	p := message.NewPrinter(lang)
	fv, _ := v.Float64()
	return p.Sprintf("%v%%", number.Decimal(fv, number.MaxFractionDigits(1)))
}

func (f *Formatter) rangeDates(lang language.Tag, res *analysis.Result) (string, string) {
	return f.date(lang, res.Range.Start), f.date(lang, res.Range.End)
}

// date renders a day in the locale's short convention.
func (f *Formatter) date(lang language.Tag, t time.Time) string {
	if lang == language.BrazilianPortuguese {
		return t.UTC().Format("02/01/2006")
	}
	return t.UTC().Format("Jan 2, 2006")
}

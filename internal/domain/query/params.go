package query

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"tandem/internal/domain/analysis"
	"tandem/internal/domain/ledger"
)

const defaultTrendMonths = 6

// datePhrase resolves a relative period expression against the reference
// clock. All ranges are UTC calendar ranges; "last month" asked on March 5th
// means the whole of February regardless of time of day.
type datePhrase struct {
	re      *regexp.Regexp
	resolve func(now time.Time, m []string) ledger.DateRange
}

var datePhrases = map[language.Tag][]datePhrase{
	language.English: {
		{regexp.MustCompile(`\blast (\d+) months\b`), lastNMonths},
		{regexp.MustCompile(`\btoday\b`), func(now time.Time, _ []string) ledger.DateRange { return dayRange(now) }},
		{regexp.MustCompile(`\byesterday\b`), func(now time.Time, _ []string) ledger.DateRange { return dayRange(now.AddDate(0, 0, -1)) }},
		{regexp.MustCompile(`\bthis week\b`), func(now time.Time, _ []string) ledger.DateRange { return weekRange(now) }},
		{regexp.MustCompile(`\blast week\b`), func(now time.Time, _ []string) ledger.DateRange { return weekRange(now.AddDate(0, 0, -7)) }},
		{regexp.MustCompile(`\bthis month\b`), func(now time.Time, _ []string) ledger.DateRange { return monthRange(now) }},
		{regexp.MustCompile(`\b(last|previous) month\b`), func(now time.Time, _ []string) ledger.DateRange {
			return monthRange(firstOfMonth(now).AddDate(0, -1, 0))
		}},
		{regexp.MustCompile(`\bthis year\b`), func(now time.Time, _ []string) ledger.DateRange { return yearRange(now) }},
		{regexp.MustCompile(`\blast year\b`), func(now time.Time, _ []string) ledger.DateRange { return yearRange(now.AddDate(-1, 0, 0)) }},
	},
	language.BrazilianPortuguese: {
		{regexp.MustCompile(`ultimos (\d+) meses`), lastNMonths},
		{regexp.MustCompile(`\bhoje\b`), func(now time.Time, _ []string) ledger.DateRange { return dayRange(now) }},
		{regexp.MustCompile(`\bontem\b`), func(now time.Time, _ []string) ledger.DateRange { return dayRange(now.AddDate(0, 0, -1)) }},
		{regexp.MustCompile(`(esta|essa|nesta|nessa) semana`), func(now time.Time, _ []string) ledger.DateRange { return weekRange(now) }},
		{regexp.MustCompile(`semana passada`), func(now time.Time, _ []string) ledger.DateRange { return weekRange(now.AddDate(0, 0, -7)) }},
		{regexp.MustCompile(`(este|esse|neste|nesse) mes`), func(now time.Time, _ []string) ledger.DateRange { return monthRange(now) }},
		{regexp.MustCompile(`(mes passado|mes anterior|ultimo mes)`), func(now time.Time, _ []string) ledger.DateRange {
			return monthRange(firstOfMonth(now).AddDate(0, -1, 0))
		}},
		{regexp.MustCompile(`(este|esse|neste|nesse) ano`), func(now time.Time, _ []string) ledger.DateRange { return yearRange(now) }},
		{regexp.MustCompile(`ano passado`), func(now time.Time, _ []string) ledger.DateRange { return yearRange(now.AddDate(-1, 0, 0)) }},
	},
}

// absoluteRange matches explicit ISO dates, optionally as a pair. Language
// independent.
var absoluteRange = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})(?:\s*(?:to|until|a|ate|-)\s*(\d{4}-\d{2}-\d{2}))?`)

var compareAmountRes = map[language.Tag]*regexp.Regexp{
	language.English:             regexp.MustCompile(`(?:more|less) than (?:us\$|r\$|\$|€|£)?\s?(\d+(?:[.,]\d+)?)`),
	language.BrazilianPortuguese: regexp.MustCompile(`(?:mais|menos) (?:do que|de|que) (?:us\$|r\$|\$|€|£)?\s?(\d+(?:[.,]\d+)?)`),
}

var savingsBasisRes = map[language.Tag]*regexp.Regexp{
	language.English:             regexp.MustCompile(`sav(e|ed|ing|ings)|put aside|set aside`),
	language.BrazilianPortuguese: regexp.MustCompile(`poupan|economiz|guard(ei|amos|ando)`),
}

var incomeBasisRes = map[language.Tag]*regexp.Regexp{
	language.English:             regexp.MustCompile(`income|earn(ed|ings)?|salary|revenue|received`),
	language.BrazilianPortuguese: regexp.MustCompile(`renda|receita|salario|ganhei|ganhamos|recebi|recebemos`),
}

// ExtractParameters pulls period, category, currency and amount information
// out of already-normalized query text. Missing pieces fall back to sensible
// defaults: the current calendar month, no category filter, the configured
// base currency. Extraction never fails; unparseable fragments are ignored.
func ExtractParameters(normText string, lang language.Tag, now time.Time, baseCurrency string) Parameters {
	now = now.UTC()
	params := Parameters{
		Range:       monthRange(now),
		Currency:    baseCurrency,
		Basis:       analysis.BasisSpending,
		TrendMonths: defaultTrendMonths,
	}

	phrases, ok := datePhrases[lang]
	if !ok {
		phrases = datePhrases[language.English]
	}
	matched := false
	for _, p := range phrases {
		if m := p.re.FindStringSubmatch(normText); m != nil {
			params.Range = p.resolve(now, m)
			matched = true
			break
		}
	}
	if !matched {
		if m := absoluteRange.FindStringSubmatch(normText); m != nil {
			if r, ok := parseAbsoluteRange(m[1], m[2]); ok {
				params.Range = r
			}
		}
	}

	if m := trendPhrase(lang).FindStringSubmatch(normText); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			params.TrendMonths = n
		}
	}

	params.Categories = extractCategories(normText, lang)
	if code := extractCurrency(normText); code != "" {
		params.Currency = code
	}
	if re, ok := compareAmountRes[lang]; ok {
		if m := re.FindStringSubmatch(normText); m != nil {
			if amt, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ".")); err == nil {
				params.CompareAmount = &amt
			}
		}
	}
	params.Basis = extractBasis(normText, lang)
	return params
}

func trendPhrase(lang language.Tag) *regexp.Regexp {
	if lang == language.BrazilianPortuguese {
		return datePhrases[language.BrazilianPortuguese][0].re
	}
	return datePhrases[language.English][0].re
}

func extractCategories(normText string, lang language.Tag) []string {
	synonyms, ok := categorySynonyms[lang]
	if !ok {
		synonyms = categorySynonyms[language.English]
	}
	padded := " " + normText + " "
	seen := make(map[string]bool)
	var out []string
	for term, canonical := range synonyms {
		if !strings.Contains(padded, " "+term+" ") {
			continue
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	sort.Strings(out)
	return out
}

func extractCurrency(normText string) string {
	for _, word := range strings.Fields(normText) {
		if code, ok := currencyTokens[word]; ok {
			return code
		}
	}
	return ""
}

func extractBasis(normText string, lang language.Tag) analysis.Basis {
	if re, ok := savingsBasisRes[lang]; ok && re.MatchString(normText) {
		return analysis.BasisSavings
	}
	if re, ok := incomeBasisRes[lang]; ok && re.MatchString(normText) {
		return analysis.BasisIncome
	}
	return analysis.BasisSpending
}

func parseAbsoluteRange(from, to string) (ledger.DateRange, bool) {
	start, err := time.ParseInLocation("2006-01-02", from, time.UTC)
	if err != nil {
		return ledger.DateRange{}, false
	}
	if to == "" {
		return dayRange(start), true
	}
	end, err := time.ParseInLocation("2006-01-02", to, time.UTC)
	if err != nil || end.Before(start) {
		return ledger.DateRange{}, false
	}
	return ledger.DateRange{Start: start, End: endOfDay(end)}, true
}

func dayRange(t time.Time) ledger.DateRange {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return ledger.DateRange{Start: start, End: endOfDay(start)}
}

// weekRange is the ISO week containing t, Monday through Sunday.
func weekRange(t time.Time) ledger.DateRange {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(weekday - 1))
	return ledger.DateRange{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
}

// firstOfMonth anchors t to midnight on the 1st so that AddDate month
// arithmetic cannot overflow into a neighboring month on days 29-31.
func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthRange(t time.Time) ledger.DateRange {
	start := firstOfMonth(t)
	return ledger.DateRange{Start: start, End: endOfDay(start.AddDate(0, 1, -1))}
}

func yearRange(t time.Time) ledger.DateRange {
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	return ledger.DateRange{Start: start, End: endOfDay(time.Date(t.Year(), 12, 31, 0, 0, 0, 0, time.UTC))}
}

func lastNMonths(now time.Time, m []string) ledger.DateRange {
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		n = 1
	}
	return lastNMonthsRange(now, n)
}

// lastNMonthsRange covers the n calendar months ending with the current one.
func lastNMonthsRange(now time.Time, n int) ledger.DateRange {
	anchor := firstOfMonth(now.UTC())
	return ledger.DateRange{Start: anchor.AddDate(0, -(n - 1), 0), End: endOfDay(anchor.AddDate(0, 1, -1))}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

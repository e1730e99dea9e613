package reply

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrTemplateMissing signals an incomplete (key x language) template matrix.
// This is a configuration defect: it fails process startup, never a query.
var ErrTemplateMissing = errors.New("message template missing")

// Template keys. Every key must have a text for every supported language;
// Validate enforces the full matrix at startup.
const (
	keyHelp             = "answer.help"
	keySpending         = "answer.spending"
	keySpendingCategory = "answer.spending_category"
	keyIncome           = "answer.income"
	keyBalance          = "answer.balance"
	keySavings          = "answer.savings"
	keyComparisonPeriod = "answer.comparison_period"
	keyComparisonAmount = "answer.comparison_amount"
	keyBreakdown        = "answer.breakdown"
	keyBreakdownEmpty   = "answer.breakdown_empty"
	keyTrend            = "answer.trend"
	keyBudget           = "answer.budget"
	keyBudgetOK         = "answer.budget_ok"
	keyBudgetItem       = "label.budget_item"
	keyNA               = "label.na"
	keyOver             = "label.over"
	keyUnder            = "label.under"
	keyTrendIncreasing  = "label.trend_increasing"
	keyTrendDecreasing  = "label.trend_decreasing"
	keyTrendFlat        = "label.trend_flat"
	keyStaleNote        = "note.stale_rate"
	keyAlertTitle       = "alert.budget_title"
)

var allKeys = []string{
	keyHelp, keySpending, keySpendingCategory, keyIncome, keyBalance,
	keySavings, keyComparisonPeriod, keyComparisonAmount, keyBreakdown,
	keyBreakdownEmpty, keyTrend, keyBudget, keyBudgetOK, keyBudgetItem,
	keyNA, keyOver, keyUnder, keyTrendIncreasing, keyTrendDecreasing,
	keyTrendFlat, keyStaleNote, keyAlertTitle,
}

// Catalog holds the (key x language) message table.
type Catalog struct {
	languages []language.Tag
	messages  map[string]map[language.Tag]string
}

// DefaultCatalog returns the built-in English and Brazilian Portuguese texts.
func DefaultCatalog() *Catalog {
	en := language.English
	pt := language.BrazilianPortuguese

	return &Catalog{
		languages: []language.Tag{en, pt},
		messages: map[string]map[language.Tag]string{
			keyHelp: {
				en: `Sorry, I didn't understand that. You can ask things like "how much did we spend on food this month" or "are we saving more than last year?".`,
				pt: `Desculpe, não entendi. Você pode perguntar, por exemplo, "quanto gastamos com mercado este mês" ou "estamos economizando mais que no ano passado?".`,
			},
			keySpending: {
				en: "You spent %[1]s between %[2]s and %[3]s.",
				pt: "Você gastou %[1]s entre %[2]s e %[3]s.",
			},
			keySpendingCategory: {
				en: "You spent %[1]s on %[2]s between %[3]s and %[4]s.",
				pt: "Você gastou %[1]s com %[2]s entre %[3]s e %[4]s.",
			},
			keyIncome: {
				en: "You earned %[1]s between %[2]s and %[3]s.",
				pt: "Você recebeu %[1]s entre %[2]s e %[3]s.",
			},
			keyBalance: {
				en: "Your balance for %[4]s to %[5]s is %[1]s: %[2]s in, %[3]s out.",
				pt: "Seu saldo de %[4]s a %[5]s é %[1]s: %[2]s de entradas e %[3]s de saídas.",
			},
			keySavings: {
				en: "You saved %[1]s between %[3]s and %[4]s, which is %[2]s of your income.",
				pt: "Você guardou %[1]s entre %[3]s e %[4]s, o que representa %[2]s da sua renda.",
			},
			keyComparisonPeriod: {
				en: "This period came to %[1]s versus %[2]s in the previous one, a change of %[3]s (%[4]s).",
				pt: "Este período somou %[1]s contra %[2]s no anterior, uma variação de %[3]s (%[4]s).",
			},
			keyComparisonAmount: {
				en: "You spent %[1]s, %[3]s your target of %[2]s by %[4]s.",
				pt: "Você gastou %[1]s, %[3]s da meta de %[2]s em %[4]s.",
			},
			keyBreakdown: {
				en: "Top spending between %[2]s and %[3]s: %[1]s.",
				pt: "Maiores gastos entre %[2]s e %[3]s: %[1]s.",
			},
			keyBreakdownEmpty: {
				en: "No expenses recorded between %[1]s and %[2]s.",
				pt: "Nenhuma despesa registrada entre %[1]s e %[2]s.",
			},
			keyTrend: {
				en: "Your spending is %[1]s over the last %[2]d months: %[3]s.",
				pt: "Seus gastos estão %[1]s nos últimos %[2]d meses: %[3]s.",
			},
			keyBudget: {
				en: "Budget alerts: %[1]s.",
				pt: "Alertas de orçamento: %[1]s.",
			},
			keyBudgetOK: {
				en: "All categories are within budget for this period.",
				pt: "Todas as categorias estão dentro do orçamento neste período.",
			},
			keyBudgetItem: {
				en: "%[1]s at %[4]s of the %[3]s limit (spent %[2]s)",
				pt: "%[1]s em %[4]s do limite de %[3]s (gasto %[2]s)",
			},
			keyNA: {
				en: "N/A",
				pt: "N/D",
			},
			keyOver: {
				en: "over",
				pt: "acima",
			},
			keyUnder: {
				en: "under",
				pt: "abaixo",
			},
			keyTrendIncreasing: {
				en: "increasing",
				pt: "subindo",
			},
			keyTrendDecreasing: {
				en: "decreasing",
				pt: "caindo",
			},
			keyTrendFlat: {
				en: "stable",
				pt: "estáveis",
			},
			keyStaleNote: {
				en: " (exchange rates may be out of date)",
				pt: " (as taxas de câmbio podem estar desatualizadas)",
			},
			keyAlertTitle: {
				en: "Budget alert",
				pt: "Alerta de orçamento",
			},
		},
	}
}

// Languages returns the languages the catalog carries texts for.
func (c *Catalog) Languages() []language.Tag {
	return c.languages
}

// Validate checks that every key has a non-empty text for every language.
// Called once at startup; a failure here must abort the process.
func (c *Catalog) Validate() error {
	for _, key := range allKeys {
		perLang, ok := c.messages[key]
		if !ok {
			return fmt.Errorf("%w: %s (all languages)", ErrTemplateMissing, key)
		}
		for _, lang := range c.languages {
			if perLang[lang] == "" {
				return fmt.Errorf("%w: %s (%s)", ErrTemplateMissing, key, lang)
			}
		}
	}
	return nil
}

// text looks up a single template. The catalog is validated at startup, so a
// miss here indicates the caller bypassed Validate.
func (c *Catalog) text(lang language.Tag, key string) (string, error) {
	perLang, ok := c.messages[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateMissing, key)
	}
	msg, ok := perLang[lang]
	if !ok || msg == "" {
		return "", fmt.Errorf("%w: %s (%s)", ErrTemplateMissing, key, lang)
	}
	return msg, nil
}

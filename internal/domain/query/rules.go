package query

import (
	"fmt"
	"regexp"

	"golang.org/x/text/language"
)

// ruleSpec pairs an intent with the expression that recognizes it. Tables are
// ordered most-specific first and the first match wins, so "are we saving
// more than last year" lands on the period comparison rule before the plain
// savings rule can claim it. Patterns are written against normalized text:
// lower case, accents stripped, single spaces.
type ruleSpec struct {
	intent  Intent
	pattern string
}

var ruleSpecs = map[language.Tag][]ruleSpec{
	language.English: {
		{IntentBudgetStatus, `\b(budget|spending limit)`},
		{IntentComparisonAmount, `\b(more|less) than (\$|r\$|€|£)?\d`},
		{IntentComparisonPeriod, `\b(than|compared (to|with)|versus|vs\.?) (the )?(last|previous)\b`},
		{IntentTrend, `\b(trend|over time|month over month|evolution)`},
		{IntentCategoryBreakdown, `\b(breakdown|by category|top categor|biggest expense|where did .* go)`},
		{IntentSavings, `\b(sav(e|ed|ing|ings)|put aside|set aside)\b`},
		{IntentBalance, `\b(balance|net worth|left over|have left|how much (do|did) (i|we) have)\b`},
		{IntentIncome, `\b(income|earn(ed|ings)?|salary|revenue|received)\b`},
		{IntentSpending, `\b(spen[dt]|spending|cost|paid|pay\b|expense|how much)`},
	},
	language.BrazilianPortuguese: {
		{IntentBudgetStatus, `(orcamento|limite de gasto)`},
		{IntentComparisonAmount, `(mais|menos) (de|do que|que) (r\$|\$)?\d`},
		{IntentComparisonPeriod, `(comparado|em comparacao|(do )?que no (mes|ano) (passado|anterior)|versus)`},
		{IntentTrend, `(tendencia|evolucao|ao longo do tempo|mes a mes)`},
		{IntentCategoryBreakdown, `(por categoria|detalhamento|maiores (gastos|despesas)|onde foi|pra onde foi)`},
		{IntentSavings, `(poupan|economiz|guard(ei|amos|ando))`},
		{IntentBalance, `(saldo|sobrou|sobrando|quanto (temos|tenho|nos temos|a gente tem))`},
		{IntentIncome, `(renda|receita|salario|ganhei|ganhamos|recebi|recebemos)`},
		{IntentSpending, `(gast|custou|custaram|paguei|pagamos|despesa|quanto)`},
	},
}

type rule struct {
	intent Intent
	re     *regexp.Regexp
}

// Classifier holds the compiled per-language rule tables. Compilation
// happens once at construction; a bad pattern is a programming error and
// fails startup.
type Classifier struct {
	tables map[language.Tag][]rule
}

func NewClassifier() (*Classifier, error) {
	tables := make(map[language.Tag][]rule, len(ruleSpecs))
	for lang, specs := range ruleSpecs {
		compiled := make([]rule, 0, len(specs))
		for _, spec := range specs {
			re, err := regexp.Compile(spec.pattern)
			if err != nil {
				return nil, fmt.Errorf("compiling %s rule for %s: %w", spec.intent, lang, err)
			}
			compiled = append(compiled, rule{intent: spec.intent, re: re})
		}
		tables[lang] = compiled
	}
	return &Classifier{tables: tables}, nil
}

// Classify runs the ordered rule table for lang over already-normalized text.
// Falls back to the English table for an unknown tag, and to Unrecognized
// when nothing matches.
func (c *Classifier) Classify(normText string, lang language.Tag) Match {
	table, ok := c.tables[lang]
	if !ok {
		table = c.tables[language.English]
	}
	for i, r := range table {
		if r.re.MatchString(normText) {
			return Match{Intent: r.intent, Priority: i}
		}
	}
	return Match{Intent: IntentUnrecognized, Priority: -1}
}

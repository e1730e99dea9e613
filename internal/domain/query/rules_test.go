package query

import (
	"testing"

	"golang.org/x/text/language"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier()
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func TestClassifyEnglish(t *testing.T) {
	c := newTestClassifier(t)
	tests := []struct {
		text string
		want Intent
	}{
		{"how much did i spend on food this month", IntentSpending},
		{"what did groceries cost last week", IntentSpending},
		{"how much did we earn this month", IntentIncome},
		{"what is our balance", IntentBalance},
		{"how much do we have left over", IntentBalance},
		{"am i saving money", IntentSavings},
		{"did we spend more than last month", IntentComparisonPeriod},
		{"are we saving more than last year", IntentComparisonPeriod},
		{"did i spend more than 500 on transport", IntentComparisonAmount},
		{"show me a breakdown by category", IntentCategoryBreakdown},
		{"where did our money go this month", IntentCategoryBreakdown},
		{"what is our spending trend over time", IntentTrend},
		{"are we over budget on groceries", IntentBudgetStatus},
		{"asdkjh qweqwe", IntentUnrecognized},
		{"", IntentUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(NormalizeText(tt.text), language.English)
			if got.Intent != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got.Intent, tt.want)
			}
		})
	}
}

func TestClassifyPortuguese(t *testing.T) {
	c := newTestClassifier(t)
	tests := []struct {
		text string
		want Intent
	}{
		{"quanto gastei com comida este mês", IntentSpending},
		{"quanto recebemos este mês", IntentIncome},
		{"qual é o nosso saldo", IntentBalance},
		{"estamos economizando dinheiro", IntentSavings},
		{"gastamos mais do que no mês passado", IntentComparisonPeriod},
		{"gastei mais de 500 com transporte", IntentComparisonAmount},
		{"quais foram os maiores gastos por categoria", IntentCategoryBreakdown},
		{"qual a tendência dos nossos gastos", IntentTrend},
		{"estouramos o orçamento", IntentBudgetStatus},
		{"blablabla xyz", IntentUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(NormalizeText(tt.text), language.BrazilianPortuguese)
			if got.Intent != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got.Intent, tt.want)
			}
		})
	}
}

// Rule order is load-bearing: comparison phrasings contain savings and
// spending keywords and must win over the generic rules.
func TestClassifySpecificBeforeGeneral(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify(NormalizeText("are we saving more than last year"), language.English)
	if got.Intent != IntentComparisonPeriod {
		t.Fatalf("expected comparison to outrank savings, got %s", got.Intent)
	}
	savings := c.Classify(NormalizeText("am i saving money"), language.English)
	if savings.Priority <= got.Priority {
		t.Errorf("savings rule rank %d should be below comparison rank %d", savings.Priority, got.Priority)
	}
}

func TestClassifyUnknownLanguageUsesEnglishTable(t *testing.T) {
	c := newTestClassifier(t)
	got := c.Classify("how much did i spend", language.French)
	if got.Intent != IntentSpending {
		t.Errorf("expected English fallback table, got %s", got.Intent)
	}
}

func TestClassifyUnrecognizedPriority(t *testing.T) {
	c := newTestClassifier(t)
	got := c.Classify("zzzz", language.English)
	if got.Priority != -1 {
		t.Errorf("unrecognized priority = %d, want -1", got.Priority)
	}
}

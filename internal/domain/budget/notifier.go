package budget

import (
	"sort"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Notifier evaluates spending against configured thresholds. It is purely
// derived from analysis output and performs no data fetches of its own.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Evaluate flags every category whose spending reached its threshold.
// Returned alerts are sorted by percentage-of-threshold descending, ties
// broken by category name ascending. Non-positive thresholds are ignored.
func (n *Notifier) Evaluate(spent map[string]decimal.Decimal, thresholds map[string]decimal.Decimal) []Alert {
	var alerts []Alert
	for category, threshold := range thresholds {
		if !threshold.IsPositive() {
			continue
		}
		used := spent[category]
		if used.LessThan(threshold) {
			continue
		}
		alerts = append(alerts, Alert{
			Category:           category,
			Threshold:          threshold,
			Spent:              used,
			Exceeded:           true,
			PercentOfThreshold: used.Div(threshold).Mul(oneHundred).Round(2),
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].PercentOfThreshold.Equal(alerts[j].PercentOfThreshold) {
			return alerts[i].PercentOfThreshold.GreaterThan(alerts[j].PercentOfThreshold)
		}
		return alerts[i].Category < alerts[j].Category
	})
	return alerts
}

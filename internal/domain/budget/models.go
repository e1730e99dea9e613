package budget

import "github.com/shopspring/decimal"

// Alert flags a category whose current-period spending reached its threshold.
type Alert struct {
	Category           string          `json:"category"`
	Threshold          decimal.Decimal `json:"threshold"`
	Spent              decimal.Decimal `json:"spent"`
	Exceeded           bool            `json:"exceeded"`
	PercentOfThreshold decimal.Decimal `json:"percentOfThreshold"`
}

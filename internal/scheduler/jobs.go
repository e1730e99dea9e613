package scheduler

import (
	"context"
	"fmt"
	"strings"

	"tandem/internal/domain/alerting"
	"tandem/internal/domain/currency"
)

// BudgetSweepJob runs a full budget sweep: it evaluates every user with
// configured thresholds and pushes alerts for exceeded categories.
type BudgetSweepJob struct {
	Sweeper *alerting.Sweeper
}

func (j *BudgetSweepJob) Execute(ctx context.Context) error {
	report, err := j.Sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("budget sweep: %w", err)
	}
	if report.Failures > 0 {
		return fmt.Errorf("budget sweep: %d of %d users failed", report.Failures, report.Users)
	}
	return nil
}

func (j *BudgetSweepJob) Key() string { return "budget-sweep" }

func (j *BudgetSweepJob) Description() string { return "budget threshold sweep" }

// RateRefreshJob warms the exchange rate cache for a single currency pair,
// so interactive queries hit fresh rates instead of paying the fetch cost.
type RateRefreshJob struct {
	Rates *currency.Normalizer
	From  string
	To    string
}

// RateRefreshJobs builds one refresh job per configured pair.
// Pairs use the FROM/TO form, e.g. "USD/BRL"; malformed pairs are skipped.
func RateRefreshJobs(rates *currency.Normalizer, pairs []string) []Job {
	jobs := make([]Job, 0, len(pairs))
	for _, pair := range pairs {
		from, to, ok := strings.Cut(pair, "/")
		if !ok || from == "" || to == "" {
			continue
		}
		jobs = append(jobs, &RateRefreshJob{Rates: rates, From: strings.ToUpper(from), To: strings.ToUpper(to)})
	}
	return jobs
}

func (j *RateRefreshJob) Execute(ctx context.Context) error {
	if err := j.Rates.Refresh(ctx, j.From, j.To); err != nil {
		return fmt.Errorf("refresh %s/%s: %w", j.From, j.To, err)
	}
	return nil
}

func (j *RateRefreshJob) Key() string { return j.From + "/" + j.To }

func (j *RateRefreshJob) Description() string { return "exchange rate refresh" }

package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"tandem/internal/domain/analysis"
	"tandem/internal/domain/budget"
	"tandem/internal/domain/ledger"
	"tandem/internal/domain/partnership"
	"tandem/internal/domain/query"
	"tandem/internal/domain/reply"
)

// Sweeper runs the periodic budget check across all users with configured
// thresholds and pushes an alert to each user whose current month crossed one.
type Sweeper struct {
	repo         Repository
	messenger    Messenger
	gateway      ledger.Gateway
	partnerships partnership.Repository
	analyzer     *analysis.Service
	budgets      *budget.Notifier
	formatter    *reply.Formatter
	defaultLang  language.Tag
	log          zerolog.Logger

	now func() time.Time
}

func NewSweeper(
	repo Repository,
	messenger Messenger,
	gateway ledger.Gateway,
	partnerships partnership.Repository,
	analyzer *analysis.Service,
	budgets *budget.Notifier,
	formatter *reply.Formatter,
	defaultLanguage string,
	log zerolog.Logger,
) *Sweeper {
	return &Sweeper{
		repo:         repo,
		messenger:    messenger,
		gateway:      gateway,
		partnerships: partnerships,
		analyzer:     analyzer,
		budgets:      budgets,
		formatter:    formatter,
		defaultLang:  query.ParsePreference(defaultLanguage, language.BrazilianPortuguese),
		log:          log.With().Str("component", "budget_sweep").Logger(),
		now:          time.Now,
	}
}

// Report summarizes one sweep run.
type Report struct {
	Users    int
	Alerted  int
	Failures int
}

// Run evaluates every budget user's current calendar month. Per-user failures
// are logged and counted but do not stop the sweep.
func (s *Sweeper) Run(ctx context.Context) (Report, error) {
	users, err := s.repo.ListBudgetUsers(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing budget users: %w", err)
	}

	report := Report{Users: len(users)}
	for _, user := range users {
		alerted, err := s.sweepUser(ctx, user)
		if err != nil {
			report.Failures++
			s.log.Error().Err(err).Int64("user_id", user.ID).Msg("budget sweep failed for user")
			continue
		}
		if alerted {
			report.Alerted++
		}
	}

	s.log.Info().
		Int("users", report.Users).
		Int("alerted", report.Alerted).
		Int("failures", report.Failures).
		Msg("budget sweep finished")
	return report, nil
}

func (s *Sweeper) sweepUser(ctx context.Context, user BudgetUser) (bool, error) {
	scope, err := s.partnerships.Resolve(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("resolving partnership: %w", err)
	}

	now := s.now().UTC()
	month := ledger.DateRange{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0).Add(-time.Second),
	}

	records, err := s.gateway.FetchTransactions(ctx, scope, ledger.Filter{Range: month})
	if err != nil {
		return false, fmt.Errorf("fetching transactions: %w", err)
	}

	res, err := s.analyzer.Breakdown(ctx, records, month, user.BaseCurrency, now)
	if err != nil {
		return false, fmt.Errorf("computing breakdown: %w", err)
	}

	thresholds, err := s.gateway.FetchBudgetThresholds(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("fetching thresholds: %w", err)
	}

	spent := make(map[string]decimal.Decimal, len(res.Categories))
	for _, ct := range res.Categories {
		spent[ct.Category] = ct.Total
	}
	alerts := s.budgets.Evaluate(spent, thresholds)
	if len(alerts) == 0 {
		return false, nil
	}

	tokens, err := s.repo.GetActiveTokens(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("fetching device tokens: %w", err)
	}
	if len(tokens) == 0 {
		s.log.Debug().Int64("user_id", user.ID).Msg("budget exceeded but no active device tokens")
		return false, nil
	}

	lang := query.ParsePreference(user.Language, s.defaultLang)
	title, err := s.formatter.AlertTitle(lang)
	if err != nil {
		return false, err
	}
	body, err := s.formatter.BudgetStatus(lang, res, alerts)
	if err != nil {
		return false, err
	}

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}
	if err := s.messenger.SendMulticast(ctx, tokenStrings, title, body, map[string]string{"route": "budgets"}); err != nil {
		return false, fmt.Errorf("sending alert: %w", err)
	}
	return true, nil
}

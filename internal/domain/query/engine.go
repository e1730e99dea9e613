package query

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"tandem/internal/domain/analysis"
	"tandem/internal/domain/budget"
	"tandem/internal/domain/ledger"
	"tandem/internal/domain/partnership"
	"tandem/internal/domain/reply"
)

// Engine answers natural-language finance questions. It is safe for
// concurrent use; per-query state lives on the stack.
type Engine struct {
	classifier   *Classifier
	gateway      ledger.Gateway
	partnerships partnership.Repository
	analyzer     *analysis.Service
	budgets      *budget.Notifier
	formatter    *reply.Formatter

	baseCurrency string
	defaultLang  language.Tag

	log    zerolog.Logger
	tracer trace.Tracer

	queryCounter metric.Int64Counter
	queryLatency metric.Float64Histogram

	// now is injectable so relative period resolution is testable.
	now func() time.Time
}

type EngineConfig struct {
	BaseCurrency    string
	DefaultLanguage string
}

func NewEngine(
	cfg EngineConfig,
	classifier *Classifier,
	gateway ledger.Gateway,
	partnerships partnership.Repository,
	analyzer *analysis.Service,
	budgets *budget.Notifier,
	formatter *reply.Formatter,
	log zerolog.Logger,
) *Engine {
	meter := otel.Meter("tandem/query")
	counter, _ := meter.Int64Counter("tandem.queries.total",
		metric.WithDescription("Queries answered, by intent and language"))
	latency, _ := meter.Float64Histogram("tandem.query.duration.seconds",
		metric.WithDescription("End to end query handling latency"))

	return &Engine{
		classifier:   classifier,
		gateway:      gateway,
		partnerships: partnerships,
		analyzer:     analyzer,
		budgets:      budgets,
		formatter:    formatter,
		baseCurrency: cfg.BaseCurrency,
		defaultLang:  ParsePreference(cfg.DefaultLanguage, language.BrazilianPortuguese),
		log:          log.With().Str("component", "query_engine").Logger(),
		tracer:       otel.Tracer("tandem/query"),
		queryCounter: counter,
		queryLatency: latency,
		now:          time.Now,
	}
}

// Answer runs the full pipeline for one query: detect language, classify,
// extract parameters, fetch partnership-scoped data, analyze, and render the
// localized response. Unrecognized queries short-circuit to the help reply
// before any data access.
func (e *Engine) Answer(ctx context.Context, req Request) (*Response, error) {
	ctx, span := e.tracer.Start(ctx, "query.Answer")
	defer span.End()
	started := e.now()

	lang := DetectLanguage(req.Text, ParsePreference(req.Language, e.defaultLang))
	normText := NormalizeText(req.Text)
	match := e.classifier.Classify(normText, lang)

	span.SetAttributes(
		attribute.String("query.intent", string(match.Intent)),
		attribute.String("query.language", lang.String()),
	)

	resp, err := e.dispatch(ctx, req, normText, lang, match)

	elapsed := e.now().Sub(started).Seconds()
	attrs := metric.WithAttributes(
		attribute.String("intent", string(match.Intent)),
		attribute.String("language", lang.String()),
		attribute.Bool("error", err != nil),
	)
	e.queryCounter.Add(ctx, 1, attrs)
	e.queryLatency.Record(ctx, elapsed, attrs)

	if err != nil {
		e.log.Error().Err(err).
			Int64("user_id", req.UserID).
			Str("intent", string(match.Intent)).
			Msg("query failed")
		return nil, err
	}
	e.log.Info().
		Int64("user_id", req.UserID).
		Str("intent", string(match.Intent)).
		Str("language", lang.String()).
		Msg("query answered")
	return resp, nil
}

func (e *Engine) dispatch(ctx context.Context, req Request, normText string, lang language.Tag, match Match) (*Response, error) {
	if match.Intent == IntentUnrecognized {
		text, err := e.formatter.Help(lang)
		if err != nil {
			return nil, err
		}
		return &Response{Intent: IntentUnrecognized, Text: text, Language: responseLanguage(lang)}, nil
	}

	baseCurrency := req.BaseCurrency
	if baseCurrency == "" {
		baseCurrency = e.baseCurrency
	}
	params := ExtractParameters(normText, lang, e.now(), baseCurrency)
	if match.Intent == IntentTrend {
		params.Range = e.trendRange(params)
	}

	scope, err := e.partnerships.Resolve(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving partnership: %v", ErrDataFetchFailed, err)
	}

	records, err := e.fetch(ctx, scope, ledger.Filter{Range: params.Range, Categories: params.Categories})
	if err != nil {
		return nil, err
	}
	asOf := e.now()

	var (
		res    *analysis.Result
		alerts []budget.Alert
	)
	switch match.Intent {
	case IntentSpending:
		res, err = e.analyzer.Spending(ctx, records, params.Range, params.Currency, asOf)
	case IntentIncome:
		res, err = e.analyzer.Income(ctx, records, params.Range, params.Currency, asOf)
	case IntentBalance:
		res, err = e.analyzer.Balance(ctx, records, params.Range, params.Currency, asOf)
	case IntentSavings:
		res, err = e.analyzer.Savings(ctx, records, params.Range, params.Currency, asOf)
	case IntentComparisonPeriod:
		prevRange := params.Range.Previous()
		var previous []ledger.Record
		previous, err = e.fetch(ctx, scope, ledger.Filter{Range: prevRange, Categories: params.Categories})
		if err != nil {
			return nil, err
		}
		res, err = e.analyzer.ComparePeriods(ctx, records, previous, params.Range, prevRange, params.Basis, params.Currency, asOf)
	case IntentComparisonAmount:
		target := decimal.Zero
		if params.CompareAmount != nil {
			target = *params.CompareAmount
		}
		res, err = e.analyzer.CompareAmount(ctx, records, params.Range, params.Currency, target, asOf)
	case IntentCategoryBreakdown:
		res, err = e.analyzer.Breakdown(ctx, records, params.Range, params.Currency, asOf)
	case IntentTrend:
		res, err = e.analyzer.Trend(ctx, records, params.Range, params.Currency, asOf)
	case IntentBudgetStatus:
		res, alerts, err = e.budgetStatus(ctx, req.UserID, records, params, asOf)
	default:
		return nil, fmt.Errorf("unhandled intent %s", match.Intent)
	}
	if err != nil {
		return nil, err
	}

	text, err := e.render(lang, match.Intent, res, alerts, params)
	if err != nil {
		return nil, err
	}
	return &Response{
		Intent:   match.Intent,
		Text:     text,
		Language: responseLanguage(lang),
		Data:     res,
		Alerts:   alerts,
	}, nil
}

func (e *Engine) fetch(ctx context.Context, scope partnership.Context, filter ledger.Filter) ([]ledger.Record, error) {
	records, err := e.gateway.FetchTransactions(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataFetchFailed, err)
	}
	return records, nil
}

// trendRange widens the window to the requested number of months when the
// query did not name an explicit period. A single month has no trend to
// speak of.
func (e *Engine) trendRange(params Parameters) ledger.DateRange {
	now := e.now().UTC()
	if params.Range == monthRange(now) {
		return lastNMonthsRange(now, params.TrendMonths)
	}
	return params.Range
}

func (e *Engine) budgetStatus(ctx context.Context, userID int64, records []ledger.Record, params Parameters, asOf time.Time) (*analysis.Result, []budget.Alert, error) {
	res, err := e.analyzer.Breakdown(ctx, records, params.Range, params.Currency, asOf)
	if err != nil {
		return nil, nil, err
	}
	thresholds, err := e.gateway.FetchBudgetThresholds(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetching budget thresholds: %v", ErrDataFetchFailed, err)
	}
	spent := make(map[string]decimal.Decimal, len(res.Categories))
	for _, ct := range res.Categories {
		spent[ct.Category] = ct.Total
	}
	return res, e.budgets.Evaluate(spent, thresholds), nil
}

func (e *Engine) render(lang language.Tag, intent Intent, res *analysis.Result, alerts []budget.Alert, params Parameters) (string, error) {
	switch intent {
	case IntentSpending:
		return e.formatter.Spending(lang, res, params.Categories)
	case IntentIncome:
		return e.formatter.Income(lang, res)
	case IntentBalance:
		return e.formatter.Balance(lang, res)
	case IntentSavings:
		return e.formatter.Savings(lang, res)
	case IntentComparisonPeriod:
		return e.formatter.ComparisonPeriod(lang, res)
	case IntentComparisonAmount:
		return e.formatter.ComparisonAmount(lang, res)
	case IntentCategoryBreakdown:
		return e.formatter.Breakdown(lang, res)
	case IntentTrend:
		return e.formatter.Trend(lang, res)
	case IntentBudgetStatus:
		return e.formatter.BudgetStatus(lang, res, alerts)
	default:
		return "", fmt.Errorf("no renderer for intent %s", intent)
	}
}

package main

import (
	"context"

	"tandem/internal/domain/alerting"
	"tandem/internal/domain/analysis"
	"tandem/internal/domain/budget"
	"tandem/internal/domain/currency"
	"tandem/internal/domain/query"
	"tandem/internal/domain/reply"
	"tandem/internal/domain/user"
	"tandem/internal/infrastructure/exchangerate"
	"tandem/internal/infrastructure/firebase"
	"tandem/internal/infrastructure/postgres"
	"tandem/internal/infrastructure/redisstore"
	"tandem/internal/shared/config"
	"tandem/internal/shared/logger"
)

// App holds the components used by admin commands.
type App struct {
	DB      *postgres.DB
	Engine  *query.Engine
	Sweeper *alerting.Sweeper
	Rates   *currency.Normalizer
	Users   user.Repository
}

// NewApp wires the same pipeline the API serves, minus the HTTP layer.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New(cfg.Log.Level, true)

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	userRepo := postgres.NewUserRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	partnershipRepo := postgres.NewPartnershipRepository(db)
	alertingRepo := postgres.NewAlertingRepository(db)

	rateClient := exchangerate.NewClient(cfg.Rates.BaseURL, log)
	rates := currency.NewNormalizer(rateClient, cfg.Rates.TTL, log)
	if cfg.Redis.Enabled {
		redisClient, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			db.Close()
			return nil, err
		}
		rates = rates.WithSnapshots(redisstore.NewRateStore(redisClient, log))
		if err := rates.LoadSnapshots(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to load rate snapshots")
		}
	}

	classifier, err := query.NewClassifier()
	if err != nil {
		db.Close()
		return nil, err
	}
	catalog := reply.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		db.Close()
		return nil, err
	}
	formatter := reply.NewFormatter(catalog)
	analyzer := analysis.NewService(rates, log)
	budgets := budget.NewNotifier()

	engine := query.NewEngine(
		query.EngineConfig{
			BaseCurrency:    cfg.Query.BaseCurrency,
			DefaultLanguage: cfg.Query.DefaultLanguage,
		},
		classifier, ledgerRepo, partnershipRepo, analyzer, budgets, formatter, log,
	)

	var messenger alerting.Messenger = alerting.NopMessenger{}
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, alertingRepo.DeactivateToken, log)
		if err != nil {
			db.Close()
			return nil, err
		}
		messenger = fcm
	}

	sweeper := alerting.NewSweeper(
		alertingRepo, messenger, ledgerRepo, partnershipRepo,
		analyzer, budgets, formatter, cfg.Query.DefaultLanguage, log,
	)

	return &App{DB: db, Engine: engine, Sweeper: sweeper, Rates: rates, Users: userRepo}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

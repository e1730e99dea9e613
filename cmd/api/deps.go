package main

import (
	"context"

	"github.com/rs/zerolog"

	"tandem/internal/domain/alerting"
	"tandem/internal/domain/analysis"
	"tandem/internal/domain/budget"
	"tandem/internal/domain/currency"
	"tandem/internal/domain/query"
	"tandem/internal/domain/reply"
	"tandem/internal/infrastructure/exchangerate"
	"tandem/internal/infrastructure/firebase"
	"tandem/internal/infrastructure/postgres"
	"tandem/internal/infrastructure/redisstore"
	httphandlers "tandem/internal/interfaces/http"
	"tandem/internal/shared/auth"
	"tandem/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler   *httphandlers.AuthHandler
	QueryHandler  *httphandlers.QueryHandler
	DeviceHandler *httphandlers.DeviceHandler

	// Auth
	JWT *auth.JWT

	// Background work
	Sweeper *alerting.Sweeper
	Rates   *currency.Normalizer
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info().Msg("connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	partnershipRepo := postgres.NewPartnershipRepository(db)
	alertingRepo := postgres.NewAlertingRepository(db)

	// Exchange rates: live provider plus optional Redis snapshot store.
	rateClient := exchangerate.NewClient(cfg.Rates.BaseURL, log)
	rates := currency.NewNormalizer(rateClient, cfg.Rates.TTL, log)
	if cfg.Redis.Enabled {
		redisClient, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		store := redisstore.NewRateStore(redisClient, log)
		rates = rates.WithSnapshots(store)
		if err := rates.LoadSnapshots(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to load rate snapshots")
		}
	}

	// Query pipeline
	classifier, err := query.NewClassifier()
	if err != nil {
		return nil, err
	}
	catalog := reply.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
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

	// Push notifications: Firebase is optional; without credentials the
	// sweeper still runs but alerts are only logged.
	var messenger alerting.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, alertingRepo.DeactivateToken, log)
		if err != nil {
			return nil, err
		}
		messenger = fcm
	} else {
		log.Warn().Msg("firebase credentials not configured, budget alerts will not be delivered")
		messenger = alerting.NopMessenger{}
	}

	alertService := alerting.NewService(alertingRepo)
	sweeper := alerting.NewSweeper(
		alertingRepo, messenger, ledgerRepo, partnershipRepo,
		analyzer, budgets, formatter, cfg.Query.DefaultLanguage, log,
	)

	// Auth and handlers
	jwt := auth.NewJWT(cfg.JWT.Secret)
	authHandler := httphandlers.NewAuthHandler(userRepo, jwt, log)
	queryHandler := httphandlers.NewQueryHandler(engine, userRepo, log)
	deviceHandler := httphandlers.NewDeviceHandler(alertService, log)

	return &Dependencies{
		DB:            db,
		AuthHandler:   authHandler,
		QueryHandler:  queryHandler,
		DeviceHandler: deviceHandler,
		JWT:           jwt,
		Sweeper:       sweeper,
		Rates:         rates,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}

package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	httphandlers "tandem/internal/interfaces/http"
	"tandem/internal/shared/config"
	"tandem/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/query", authMiddleware(http.HandlerFunc(deps.QueryHandler.HandleQuery)))
	mux.Handle("/api/devices", authMiddleware(http.HandlerFunc(deps.DeviceHandler.HandleRegisterDevice)))

	// Apply global middleware
	handler := middleware.Telemetry(middleware.Tracing(middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Info().Msg("tls security middleware enabled")
	}

	return handler
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tradeledger/superadmin/internal/auth"
	"github.com/tradeledger/superadmin/internal/background"
	"github.com/tradeledger/superadmin/internal/config"
	"github.com/tradeledger/superadmin/internal/database"
	"github.com/tradeledger/superadmin/internal/handlers"
	middlewareCustom "github.com/tradeledger/superadmin/internal/middleware"
	"github.com/tradeledger/superadmin/internal/ratelimit"
	"github.com/tradeledger/superadmin/internal/repositories"
	"github.com/tradeledger/superadmin/internal/routes"
	"github.com/tradeledger/superadmin/internal/services"
	pkghttp "github.com/tradeledger/superadmin/pkg/http"
)

// allowedEntities is the closed set of document collections the
// admin-data gateway will serve.
var allowedEntities = []string{"trades", "journal_entries", "settings"}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	auditRepo := repositories.NewAuditLogRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)

	// Login rate limiter with in-memory store
	limiterStore := ratelimit.NewMemoryStore(2 * cfg.Auth.LockoutDuration)
	limiter := ratelimit.NewLimiter(limiterStore, ratelimit.Config{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		LockoutDuration: cfg.Auth.LockoutDuration,
	}, logger)

	// Background sweep keeps the limiter's memory bounded
	sweeper := background.NewSweeper(limiterStore, logger, cfg.Auth.CleanupInterval)
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()
	go sweeper.Start(sweeperCtx)
	defer sweeper.Stop()

	// Fixed-identity credential verifier and TOTP second factor
	credentials := auth.NewCredentialVerifier(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash)
	totpVerifier := auth.NewTOTPVerifier(cfg.Auth.TOTPSecret)

	// Session tokens: signed claims sealed under a separate key
	sessionManager, err := auth.NewSessionManager(
		cfg.Auth.SigningSecret,
		cfg.Auth.EncryptionKey,
		cfg.Auth.AdminUsername,
		cfg.Auth.SessionLifetime,
		totpVerifier.Provisioned(),
	)
	if err != nil {
		logger.Error("failed to initialize session manager", slog.Any("error", err))
		os.Exit(1)
	}

	// Timing delay for auth security
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	// Initialize services
	auditService := services.NewAuditService(auditRepo, logger)
	authService := services.NewAuthService(limiter, credentials, totpVerifier, sessionManager, auditService, timingDelay, logger)
	adminDataService := services.NewAdminDataService(documentRepo, auditService, allowedEntities, logger)

	// Initialize handlers
	cookieConfig := auth.CookieConfig{Secure: cfg.Server.Env == "production"}
	authHandler := handlers.NewAuthHandler(authService, cookieConfig, cfg.Server.TrustedProxies)
	adminDataHandler := handlers.NewAdminDataHandler(adminDataService, cfg.Server.TrustedProxies)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Setup CORS middleware
	corsConfig := middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	// No RealIP middleware: it would rewrite RemoteAddr from forwarded
	// headers before the trusted-proxy check runs, letting a locked-out
	// caller rotate the lockout key per request. ExtractClientIP is the
	// only path that reads those headers.
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	clientIP := func(r *http.Request) string {
		return pkghttp.ExtractClientIP(r, cfg.Server.TrustedProxies)
	}

	healthCheck := routes.HealthHandler(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.HealthCheck(ctx)
	})

	// Register routes
	routes.RegisterRoutes(router, authHandler, adminDataHandler, auditHandler, sessionManager, authService, clientIP, healthCheck)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

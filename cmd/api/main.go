package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/background"
	"gatehouse/internal/config"
	"gatehouse/internal/database"
	"gatehouse/internal/handlers"
	"gatehouse/internal/metrics"
	middlewareCustom "gatehouse/internal/middleware"
	"gatehouse/internal/repositories"
	"gatehouse/internal/routes"
	"gatehouse/internal/services"
	pkghttp "gatehouse/pkg/http"
	pkglogger "gatehouse/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	rateLimitRepo := repositories.NewRateLimitRepository(db)
	verificationCodeRepo := repositories.NewVerificationCodeRepository(db)

	// Observability
	appMetrics := metrics.New(prometheus.DefaultRegisterer)
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Token and TOTP managers
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	totpManager := auth.NewTOTPManager(cfg.Auth.TOTPIssuer)

	// Email delivery
	emailService, err := services.NewSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Services
	rateLimitService := services.NewRateLimitService(rateLimitRepo, logger, appMetrics)
	securityService := services.NewSecurityService(loginAttemptRepo, rateLimitRepo, logger, appMetrics)
	verificationService := services.NewVerificationService(verificationCodeRepo, userRepo, emailService, cfg.Email.CodeExpiryMinutes, logger)
	authService := services.NewAuthService(
		userRepo,
		rateLimitService,
		securityService,
		tokenManager,
		verificationService,
		cfg.Security,
		logger,
		auditLogger,
		appMetrics,
	)
	userService := services.NewUserService(userRepo, logger, auditLogger)
	twoFactorService := services.NewTwoFactorService(userRepo, totpManager, logger, auditLogger)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, verificationService, ipConfig)
	userHandler := handlers.NewUserHandler(userService, ipConfig)
	securityHandler := handlers.NewSecurityHandler(securityService, cfg.Security.AttemptRetentionDays)
	twoFactorHandler := handlers.NewTwoFactorHandler(twoFactorService, ipConfig)

	// Background retention sweeps
	cleanupManager := background.NewCleanupManager(
		securityService,
		verificationService,
		time.Duration(cfg.Security.AttemptRetentionDays)*24*time.Hour,
		cfg.Security.CleanupInterval,
		logger,
	)

	// Router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.RequestLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, userHandler, securityHandler, twoFactorHandler, tokenManager, cfg.Auth.AdminEmail)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "up"})
	})

	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

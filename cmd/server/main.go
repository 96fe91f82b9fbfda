package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/switch2connect/switch2connect/internal/config"
	"github.com/switch2connect/switch2connect/internal/database"
	"github.com/switch2connect/switch2connect/internal/handlers"
	"github.com/switch2connect/switch2connect/internal/logging"
	"github.com/switch2connect/switch2connect/internal/middleware"
	"github.com/switch2connect/switch2connect/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{
			"env": cfg.Server.Environment,
		})
	}

	logger.Info("Starting Switch2Connect server...")

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(redisAdapter, cfg.Session.TTL)
	providerAuthService := services.NewProviderAuthService(dbAdapter)
	emailService := services.NewEmailService(&cfg.Email)
	friendService := services.NewFriendService(dbAdapter)
	communityService := services.NewCommunityService(dbAdapter)

	oauthProviders := map[services.Provider]services.OAuthProvider{}
	if cfg.OAuth.Google.Enabled {
		googleProvider, err := services.NewOIDCProvider(context.Background(), services.OIDCProviderConfig{
			Provider:     services.ProviderGoogle,
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
			RedirectURL:  cfg.OAuth.Google.RedirectURL,
			IssuerURL:    cfg.OAuth.Google.IssuerURL,
			Scopes:       cfg.OAuth.Google.Scopes,
		})
		if err != nil {
			return fmt.Errorf("initializing google oidc provider: %w", err)
		}
		oauthProviders[services.ProviderGoogle] = googleProvider
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, emailService, cfg.Server.Secure)
	providerAuthHandler := handlers.NewProviderAuthHandler(providerAuthService, authService, emailService, redisAdapter, oauthProviders, cfg.Server.Secure)
	friendHandler := handlers.NewFriendHandler(friendService, userService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	referenceHandler := handlers.NewReferenceHandler()
	shareCardHandler := handlers.NewShareCardHandler()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, userService)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	requestLogger := middleware.NewRequestLogger(logger)

	authRateLimiter := middleware.NewRateLimiter(redisDB.Client, 20, time.Hour, "ratelimit:auth:", func(r *http.Request) string {
		return middleware.GetClientIP(r)
	}, true)

	requireSession := authMiddleware.RequireSession

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.Handle("POST /api/auth/register", authRateLimiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authRateLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authHandler.Logout))
	mux.Handle("GET /api/auth/me", requireSession(http.HandlerFunc(authHandler.Me)))
	mux.Handle("GET /api/auth/{provider}/start", http.HandlerFunc(providerAuthHandler.ProviderStart))
	mux.Handle("GET /api/auth/{provider}/callback", http.HandlerFunc(providerAuthHandler.ProviderCallback))
	mux.Handle("POST /api/auth/{provider}/complete", http.HandlerFunc(providerAuthHandler.ProviderComplete))

	// Friend endpoints
	mux.Handle("GET /api/friends", requireSession(http.HandlerFunc(friendHandler.List)))
	mux.Handle("GET /api/friends/search", requireSession(http.HandlerFunc(friendHandler.Search)))
	mux.Handle("POST /api/friends/requests", requireSession(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("GET /api/friends/requests", requireSession(http.HandlerFunc(friendHandler.ListRequests)))
	mux.Handle("PUT /api/friends/requests/{id}/accept", requireSession(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("PUT /api/friends/requests/{id}/decline", requireSession(http.HandlerFunc(friendHandler.DeclineRequest)))

	// Community endpoints
	mux.Handle("GET /api/communities", requireSession(http.HandlerFunc(communityHandler.List)))
	mux.Handle("GET /api/communities/{id}", requireSession(http.HandlerFunc(communityHandler.Get)))

	// Reference data
	mux.Handle("GET /api/reference", http.HandlerFunc(referenceHandler.Get))

	// Shareable friend code image (public)
	mux.Handle("GET /fc/{code}", http.HandlerFunc(shareCardHandler.FriendCode))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

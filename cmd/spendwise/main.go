package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/auth"
	"github.com/spendwise/spendwise/internal/config"
	"github.com/spendwise/spendwise/internal/events"
	"github.com/spendwise/spendwise/internal/handlers"
	"github.com/spendwise/spendwise/internal/middleware"
	"github.com/spendwise/spendwise/internal/repository"
	"github.com/spendwise/spendwise/internal/session"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration. A missing JWT_SECRET is fatal here, before
	// anything can issue or verify a token.
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Connect to PostgreSQL.
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	// Connect to Redis.
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to ping Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// Connect to NATS.
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		logger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()
	logger.Info("connected to NATS")

	// Repositories.
	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	expenses := repository.NewExpenseRepository(db)
	alerts := repository.NewAlertRepository(db)
	blacklist := repository.NewTokenBlacklist(redisClient)

	// Core auth components.
	sessions, err := session.NewManager(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("failed to create session manager", zap.Error(err))
	}
	cookies := session.Cookies{Secure: cfg.Production()}
	publisher := events.NewPublisher(nc, logger)
	authenticator := auth.NewAuthenticator(users, sessions, publisher, logger)

	// Handlers and middleware.
	authHandler := handlers.NewAuthHandler(authenticator, sessions, cookies, users, blacklist, logger)
	accountsHandler := handlers.NewAccountsHandler(accounts, logger)
	expensesHandler := handlers.NewExpensesHandler(expenses, accounts, publisher, logger)
	alertsHandler := handlers.NewAlertsHandler(alerts, logger)

	gatekeeper := middleware.NewGatekeeper(sessions, blacklist, logger)
	rateLimiter := middleware.NewRateLimiter(60, 1*time.Minute)

	// Protected API routes.
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	api.HandleFunc("GET /api/v1/auth/session", authHandler.Session)
	accountsHandler.RegisterRoutes(api)
	expensesHandler.RegisterRoutes(api)
	alertsHandler.RegisterRoutes(api)

	// Browser-facing pages behind the redirecting gatekeeper.
	pages := http.NewServeMux()
	handlers.Pages{}.RegisterRoutes(pages)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public API routes (rate limited, no session required).
	mux.Handle("POST /api/v1/auth/login", rateLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/v1/users", rateLimiter.Middleware(http.HandlerFunc(authHandler.Register)))

	// Everything else under /api/v1/ requires a valid, unrevoked token.
	mux.Handle("/api/v1/", gatekeeper.API(rateLimiter.Middleware(api)))

	// Page traffic redirects to /login when unauthenticated.
	mux.Handle("/", gatekeeper.Pages(pages))

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.Logging(logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("spendwise listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

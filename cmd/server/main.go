package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/auth"
	"github.com/infinito-iitp/ca-portal-api/internal/config"
	"github.com/infinito-iitp/ca-portal-api/internal/constants"
	"github.com/infinito-iitp/ca-portal-api/internal/database"
	"github.com/infinito-iitp/ca-portal-api/internal/handlers"
	"github.com/infinito-iitp/ca-portal-api/internal/metrics"
	"github.com/infinito-iitp/ca-portal-api/internal/ratelimit"
	"github.com/infinito-iitp/ca-portal-api/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug("automaxprocs", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
	})); err != nil {
		log.Warn("failed to set GOMAXPROCS", "error", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(log)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, log); err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(log); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := validation.Register(); err != nil {
		log.Error("failed to register validators", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Error("failed to create token manager", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New()
	m.Register(registry)

	general, password, closeLimiters, err := newLimiters(cfg)
	if err != nil {
		log.Error("failed to create rate limiters", "error", err)
		os.Exit(1)
	}
	defer closeLimiters()

	r, err := handlers.NewRouter(handlers.RouterConfig{
		DB:              database.GetDB(),
		Tokens:          tokens,
		Log:             log,
		Metrics:         m,
		Gatherer:        registry,
		GeneralLimiter:  general,
		PasswordLimiter: password,
		CORSOrigins:     cfg.CORSOrigins,
		TrustedProxies:  cfg.TrustedProxies,
	})
	if err != nil {
		log.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server starting", "addr", srv.Addr, "rate_limit_backend", cfg.RateLimitBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// newLimiters builds the general and password-change limiters on the
// configured backend.
func newLimiters(cfg *config.Config) (ratelimit.Limiter, ratelimit.Limiter, func(), error) {
	if cfg.RateLimitBackend == config.RateLimitRedis {
		rdb, err := ratelimit.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		general := ratelimit.NewRedisLimiter(rdb, "general", constants.GeneralLimit, constants.GeneralWindow)
		password := ratelimit.NewRedisLimiter(rdb, "password_change", constants.PasswordChangeLimit, constants.PasswordChangeWindow)
		return general, password, func() { rdb.Close() }, nil
	}

	general := ratelimit.NewMemoryLimiter(constants.GeneralLimit, constants.GeneralWindow)
	password := ratelimit.NewMemoryLimiter(constants.PasswordChangeLimit, constants.PasswordChangeWindow)
	return general, password, func() {
		general.Close()
		password.Close()
	}, nil
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

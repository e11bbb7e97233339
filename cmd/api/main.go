// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mailsfinder/admin-console/internal/admin"
	"github.com/mailsfinder/admin-console/internal/apikey"
	"github.com/mailsfinder/admin-console/internal/audit"
	"github.com/mailsfinder/admin-console/internal/auth"
	"github.com/mailsfinder/admin-console/internal/bootstrap"
	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/config"
	"github.com/mailsfinder/admin-console/internal/content"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/dashboard"
	"github.com/mailsfinder/admin-console/internal/health"
	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/metrics"
	"github.com/mailsfinder/admin-console/internal/middleware"
	"github.com/mailsfinder/admin-console/internal/server"
	"github.com/mailsfinder/admin-console/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.Bool("generate-keys", false, "write a new ES256 key pair and exit")
	keyDir := flag.String("key-dir", "keys", "directory for -generate-keys output")
	hashPassword := flag.String("hash-password", "", "print the argon2id hash of a password and exit")
	flag.Parse()

	var err error
	switch {
	case *generateKeys:
		err = writeKeyPair(*keyDir)
	case *hashPassword != "":
		err = printPasswordHash(*hashPassword)
	default:
		err = run(*configPath)
	}

	if err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"bootstrap_source", cfg.Bootstrap.Source,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"namespace", cfg.Redis.Namespace,
		"pool_size", cfg.Redis.PoolSize,
	)

	var db *core.Database
	if cfg.Bootstrap.Source == config.SourcePostgres {
		db, err = core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			logger.Warn("database unavailable, bootstrap will fall back to demo data",
				"error", err,
			)
		} else {
			logger.Info("database connected",
				"max_open_conns", cfg.Database.MaxOpenConns,
			)
		}
	}

	sealer, err := core.NewSecretSealer(cfg.Ledger.EncryptionSecret)
	if err != nil {
		return fmt.Errorf("init key sealer: %w", err)
	}

	clk := clock.New()
	store := ledger.NewStore(sealer, ledger.WithClock(clk))

	var source bootstrap.Source
	switch cfg.Bootstrap.Source {
	case config.SourceHTTP:
		source = bootstrap.NewHTTPSource(
			cfg.Bootstrap.URL,
			cfg.Bootstrap.Token,
			cfg.Bootstrap.Timeout,
			clk,
		)
	case config.SourcePostgres:
		if db != nil {
			source = bootstrap.NewPostgresSource(db.DB, clk)
		} else {
			source = unavailableSource{name: config.SourcePostgres}
		}
	}

	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Bootstrap.Timeout)
	bootResult, err := bootstrap.NewLoader(
		source,
		store,
		sealer,
		clk,
		cfg.Bootstrap.Seed,
		logger,
	).Load(loadCtx)
	cancelLoad()
	if err != nil {
		return err
	}
	logger.Info("ledger ready",
		"source", bootResult.Source,
		"fallback", bootResult.Fallback,
		"users", bootResult.Counts.Users,
	)

	jwtManager, err := newJWTManager(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	directory, err := auth.NewDirectory(cfg.Admins)
	if err != nil {
		return fmt.Errorf("load admin directory: %w", err)
	}
	if directory.Len() == 0 {
		logger.Warn("no admins configured, every login will be rejected")
	}

	authSvc := auth.NewService(
		directory,
		jwtManager,
		auth.NewRedisBlacklist(redis.Client, redis.Key("blacklist")),
		logger,
	)
	authHandler := auth.NewHandler(authSvc)

	userHandler := user.NewHandler(user.NewService(store, logger))
	apikeyHandler := apikey.NewHandler(apikey.NewService(store, logger))
	contentHandler := content.NewHandler(content.NewService(store, logger))
	auditHandler := audit.NewHandler(audit.NewService(store))
	dashboardHandler := dashboard.NewHandler(dashboard.NewService(store, clk))

	checks := []health.Check{
		{Name: "redis", Checker: redis},
		{Name: "key_sealer", Checker: sealer},
	}
	adminCfg := admin.HandlerConfig{
		RedisStats:  redis.PoolStats,
		RedisPing:   redis.Ping,
		LedgerStats: store.Counts,
		Bootstrap:   func() bootstrap.Result { return bootResult },
	}
	if db != nil {
		checks = append(checks, health.Check{Name: "database", Checker: db})
		adminCfg.DBStats = db.Stats
		adminCfg.DBPing = db.Ping
	}

	healthHandler := health.NewHandler(checks...)
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()
	limiterNamespace := redis.Key("")

	router.Use(middleware.RequestID)
	router.Use(middleware.Trace)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			KeyFunc:   middleware.KeyByIP,
			Namespace: limiterNamespace,
			FailOpen:  true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			metrics.NewCollector(store, clk),
		)
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(
			registry,
			promhttp.HandlerOpts{},
		))
	}

	adminLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.PerAdmin,
				cfg.RateLimit.PerAdmin,
				cfg.RateLimit.Window,
			),
			KeyFunc:   middleware.KeyByAdmin,
			Namespace: limiterNamespace,
			FailOpen:  true,
		},
	).Handler
	authenticate := middleware.Authenticator(authSvc)
	authenticator := func(next http.Handler) http.Handler {
		return authenticate(adminLimiter(next))
	}
	loginLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit:     middleware.PerMinute(cfg.RateLimit.Login, cfg.RateLimit.Login),
			KeyFunc:   middleware.KeyByIPAndPath,
			Namespace: limiterNamespace,
			FailOpen:  true,
		},
	).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginLimiter)
		userHandler.RegisterRoutes(r, authenticator)
		apikeyHandler.RegisterRoutes(r, authenticator)
		contentHandler.RegisterRoutes(r, authenticator)
		auditHandler.RegisterRoutes(r, authenticator)
		dashboardHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, middleware.RequireSuperadmin)
	})

	healthHandler.SetReady(true)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

// newJWTManager loads the configured key pair. Outside production a missing
// key file falls back to an ephemeral key so a fresh checkout can boot.
func newJWTManager(cfg *config.Config, logger *slog.Logger) (*auth.JWTManager, error) {
	manager, err := auth.NewJWTManager(cfg.JWT)
	if err == nil {
		return manager, nil
	}
	if cfg.IsProduction() || !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	logger.Warn("JWT key not found, using an ephemeral key; tokens will not survive a restart",
		"path", cfg.JWT.PrivateKeyPath,
	)

	key, genErr := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if genErr != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", genErr)
	}
	return auth.NewJWTManagerFromKey(key, cfg.JWT)
}

func writeKeyPair(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}

	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s\n", privatePath, publicPath)
	return nil
}

func printPasswordHash(password string) error {
	hash, err := core.HashPassword(password)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}

// unavailableSource stands in for a source whose connection failed at
// startup so the loader still records the fallback.
type unavailableSource struct {
	name string
}

func (s unavailableSource) Name() string {
	return s.name
}

func (s unavailableSource) Fetch(context.Context) (ledger.PartialSnapshot, error) {
	return ledger.PartialSnapshot{}, fmt.Errorf("%s source: %w", s.name, errUnavailable)
}

var errUnavailable = errors.New("connection unavailable at startup")

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Package server wires configuration, storage and services together and
// runs the REST API next to the gRPC health endpoint until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/logging"
	"github.com/dmitrijs2005/moodkeeper/internal/server/config"
	"github.com/dmitrijs2005/moodkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/moodkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moodkeeper/internal/server/services"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/moodkeeper/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

const (
	authLimitMessage = "Too many authentication attempts, please try again later."
	apiLimitMessage  = "Too many requests, please try again later."
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client

	memoryStore *ratelimit.MemoryStore
	handler     http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{Backend: c.LogBackend, Level: c.LogLevel, File: c.LogFile})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	logger.Info(ctx, "database ready")

	app := &App{config: c, logger: logger, db: db}

	var store ratelimit.Store
	if c.RedisAddr != "" {
		client, err := ratelimit.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		store = ratelimit.NewRedisStore(client)
		logger.Info(ctx, "rate limiter backed by redis", "address", c.RedisAddr)
	} else {
		app.memoryStore = ratelimit.NewMemoryStore()
		store = app.memoryStore
	}

	app.handler = httpapi.New(httpapi.Options{
		UserService:  services.NewUserService(db, rm, c),
		MoodService:  services.NewMoodService(db, rm, c),
		StatsService: services.NewStatsService(db, rm),
		DB:           db,
		AuthLimiter:  ratelimit.New("auth", c.AuthRateLimit, c.AuthRateWindow, authLimitMessage, store),
		APILimiter:   ratelimit.New("api", c.APIRateLimit, c.APIRateWindow, apiLimitMessage, store),
		JWTSecret:    []byte(c.SecretKey),
		CORSOrigins:  c.CORSAllowedOrigins,
		TrustProxy:   c.TrustProxy,
		Logger:       logger,
	})

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.db, app.config.HealthCheckInterval, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.memoryStore != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.memoryStore.RunJanitor(ctx, app.config.RateLimitCleanupInterval)
		}()
	}

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}

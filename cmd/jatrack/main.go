package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/Elmamis69/jatrack/internal/adapter/cache"
	"github.com/Elmamis69/jatrack/internal/bootstrap"
	"github.com/Elmamis69/jatrack/internal/config"
	httptransport "github.com/Elmamis69/jatrack/internal/http"
	"github.com/Elmamis69/jatrack/internal/http/handler"
	httpmiddleware "github.com/Elmamis69/jatrack/internal/http/middleware"
	apimiddleware "github.com/Elmamis69/jatrack/internal/middleware"
	"github.com/Elmamis69/jatrack/internal/repository"
	"github.com/Elmamis69/jatrack/internal/server"
	"github.com/Elmamis69/jatrack/internal/service"
	"github.com/Elmamis69/jatrack/internal/telemetry"
	"github.com/Elmamis69/jatrack/internal/token"
	"github.com/Elmamis69/jatrack/migrations"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newUserRepository,
			newApplicationRepository,
			newLoginThrottle,
			newTokenService,
			newAuthService,
			service.NewApplicationService,
			handler.NewAuthHandler,
			handler.NewApplicationHandler,
			handler.NewDebugHandler,
			newAuthMiddleware,
			newRateLimiter,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, runMigrations, bootstrap.EnsureAdmin, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newUserRepository(pool *pgxpool.Pool, cfg config.Config) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool, cfg.StoreTimeout)
}

func newApplicationRepository(pool *pgxpool.Pool, cfg config.Config) repository.ApplicationRepository {
	return repository.NewPostgresApplicationRepo(pool, cfg.StoreTimeout)
}

// newLoginThrottle builds the Redis-backed login throttle. When no
// Redis address is configured the throttle is disabled.
func newLoginThrottle(lc fx.Lifecycle, cfg config.Config) (*cacheadapter.RedisLoginThrottle, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return cacheadapter.NewRedisLoginThrottle(client, cfg.LoginMaxAttempts, cfg.LoginLockoutWindow), nil
}

func newTokenService(cfg config.Config) *token.Service {
	return token.NewService([]byte(cfg.JWTSecret), cfg.TokenIssuer, cfg.AccessTokenTTL)
}

func newAuthService(users repository.UserRepository, tokens *token.Service, throttle *cacheadapter.RedisLoginThrottle, node *snowflake.Node, logger *zap.Logger) *service.AuthService {
	var limiter service.LoginThrottle
	if throttle != nil {
		limiter = throttle
	}
	return service.NewAuthService(users, tokens, limiter, node, logger)
}

func newAuthMiddleware(tokens *token.Service, logger *zap.Logger) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Tokens: tokens, Logger: logger}
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func runMigrations(cfg config.Config, logger *zap.Logger) error {
	if err := migrations.Run(cfg.DatabaseURL); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/flightdeck/flight-auth/internal/api/http"
	"github.com/flightdeck/flight-auth/internal/api/http/handlers"
	"github.com/flightdeck/flight-auth/internal/auth"
	"github.com/flightdeck/flight-auth/internal/config"
	"github.com/flightdeck/flight-auth/internal/events"
	"github.com/flightdeck/flight-auth/internal/observability"
	"github.com/flightdeck/flight-auth/internal/persistence"
	"github.com/flightdeck/flight-auth/internal/ratelimit"
	"github.com/flightdeck/flight-auth/internal/repository"
	"github.com/flightdeck/flight-auth/internal/service"
	"github.com/flightdeck/flight-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger, metrics)

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	denylist := repository.NewDenylistRepository(redis.Client)

	sessionService := service.NewSessionService(*cfg, service.SessionDependencies{
		UserRepo:   userRepo,
		Denylist:   denylist,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	routes := auth.DefaultRouteTable()
	gate := auth.NewGate(
		sessionService.TokenManager(),
		userRepo,
		denylist,
		routes,
		auth.GateConfig{
			CookieName:  cfg.Auth.CookieName,
			LoginPath:   cfg.Auth.LoginPath,
			LandingPath: cfg.Auth.LandingPath,
		},
		logger,
		metrics,
	)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	sessionHandler := handlers.NewSessionHandler(sessionService, routes, cfg.Auth, metrics)
	limiter := ratelimit.NewLimiter(redis.Client, cfg.RateLimit)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    healthHandler,
		Session:   sessionHandler,
		Gate:      gate,
		RateLimit: ratelimit.Middleware(limiter, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helper-marketplace/internal/api/http"
	"github.com/spec-kit/helper-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/helper-marketplace/internal/auth"
	"github.com/spec-kit/helper-marketplace/internal/cache"
	"github.com/spec-kit/helper-marketplace/internal/config"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/observability"
	"github.com/spec-kit/helper-marketplace/internal/persistence"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	"github.com/spec-kit/helper-marketplace/internal/service"
	"github.com/spec-kit/helper-marketplace/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := map[string]handlers.Pinger{}
	store, closeStore := openStore(ctx, cfg, logger, deps)
	defer closeStore()

	attempts, resets, closeRedis := openSessionState(ctx, cfg, logger, deps)
	defer closeRedis()

	dispatcher := events.NewInMemoryDispatcher()
	snapshots := cache.NewSnapshotCache(store, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartEventSubscribers(dispatcher, notificationService, snapshots)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.App.Name, cfg.Auth.AccessTokenTTLMinutes)
	guard := auth.NewLoginGuard(attempts, cfg.Guard, nil)

	identities := make(map[domain.AuthProvider]auth.IdentityProvider)
	if google := auth.NewGoogleProvider(cfg.OAuth); google != nil {
		identities[domain.ProviderGoogle] = google
	} else {
		logger.Info("google sign-in disabled")
	}
	if fb := auth.NewFacebookProvider(cfg.OAuth); fb != nil {
		identities[domain.ProviderFacebook] = fb
	} else {
		logger.Info("facebook sign-in disabled")
	}

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   store.Users,
		Hasher:     hasher,
		Tokens:     tokens,
		Guard:      guard,
		Resets:     resets,
		Identities: identities,
		Dispatcher: dispatcher,
		Logger:     logger,
		ResetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   store.Users,
		Hasher:     hasher,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	helperService := service.NewHelperService(service.HelperDependencies{
		HelperRepo: store.Helpers,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo: store.Bookings,
		HelperRepo:  store.Helpers,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo: store.Contacts,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	dashboardService := service.NewDashboardService(snapshots)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:      cfg.App.RequestTimeout(),
		CookieSecure: cfg.App.CookieSecure,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps, metrics),
		Auth:           handlers.NewAuthHandler(authService, cfg.App.CookieSecure),
		Helpers:        handlers.NewHelpersHandler(helperService),
		Bookings:       handlers.NewBookingsHandler(bookingService),
		Users:          handlers.NewUsersHandler(userService),
		Contacts:       handlers.NewContactsHandler(contactService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users),
		AuthRateLimit:  cfg.Guard.RateLimitPerMinute,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openStore connects the configured entity store and registers it with the
// readiness check.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, deps map[string]handlers.Pinger) (repository.Store, func()) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			logger.Fatal("failed to connect mongo", zap.Error(err))
		}
		store, err := repository.NewMongoStore(ctx, m.DB)
		if err != nil {
			logger.Fatal("failed to prepare mongo collections", zap.Error(err))
		}
		deps["mongo"] = m
		return store, func() { m.Close(context.Background()) }

	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), func() {}

	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		deps["postgres"] = pg
		return repository.NewPostgresStore(pg.Pool), pg.Close
	}
}

// openSessionState picks redis for login attempts and reset tokens, falling
// back to process-local stores when redis is unreachable.
func openSessionState(ctx context.Context, cfg *config.Config, logger *zap.Logger, deps map[string]handlers.Pinger) (auth.AttemptStore, auth.ResetTokenStore, func()) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rds, err := persistence.NewRedis(pingCtx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, login attempts and reset tokens are kept in memory", zap.Error(err))
		return auth.NewMemoryAttemptStore(), auth.NewMemoryResetStore(nil), func() {}
	}
	deps["redis"] = rds
	return auth.NewRedisAttemptStore(rds.Client), auth.NewRedisResetStore(rds.Client), rds.Close
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

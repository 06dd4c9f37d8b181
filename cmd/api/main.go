package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/repository/seed"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.ApplyFlags(cfg, "support-desk-api", os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("invalid flags: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedData, err := seed.Load(cfg.Seed.File)
	if err != nil {
		logger.Fatal("failed to load seed data", zap.Error(err))
	}
	seedUsers, err := seedData.DomainUsers(auth.Hasher(cfg.Auth.BcryptCost))
	if err != nil {
		logger.Fatal("failed to prepare seed users", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	clk := clock.Real()
	ticketStore, err := openTicketStore(ctx, cfg.Postgres, pg, clk, seedData.DomainTickets(), logger)
	if err != nil {
		logger.Fatal("failed to prepare ticket store", zap.Error(err))
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var publisher service.EventPublisher
	if redis.Enabled() {
		publisher = redis
	}
	dispatcher := events.NewInMemoryDispatcher(func(event events.Event, err error) {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	})
	notifier := worker.NewNotificationWorker(
		service.NewNotificationService(logger, publisher, cfg.Redis.EventsChannel), logger, 0)
	notifier.Subscribe(dispatcher)
	workerCtx, stopWorker := context.WithCancel(ctx)
	notifier.Start(workerCtx)

	userRepo := repository.NewMemoryUserRepository(seedUsers)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketStore: ticketStore,
		UserRepo:    userRepo,
		Responder:   service.NewKeywordSynthesizer(clk, cfg.Responder.Delay()),
		Dispatcher:  dispatcher,
		Clock:       clk,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App, logger, metrics, httptransport.Services{
		Tickets:   ticketService,
		Queries:   service.NewQueryService(ticketStore),
		Dashboard: service.NewDashboardService(ticketStore),
		Auth:      service.NewAuthService(cfg.Auth, userRepo),
		Users:     userRepo,
		Postgres:  pg,
		Redis:     redis,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	stopWorker()
	notifier.Wait()
}

// openTicketStore returns the Postgres store when a DSN is configured and
// the in-memory store otherwise. Seed tickets are loaded either way.
func openTicketStore(ctx context.Context, cfg config.PostgresConfig, pg *persistence.Postgres, clk clock.Clock, seedTickets []domain.Ticket, logger *zap.Logger) (repository.TicketStore, error) {
	if !pg.Enabled() {
		store := repository.NewMemoryTicketStore(clk)
		store.Seed(seedTickets...)
		return store, nil
	}

	if cfg.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.MigrationsDir, logger); err != nil {
			return nil, err
		}
	}
	store := repository.NewPostgresTicketStore(pg.PoolHandle(), clk)
	if err := store.Seed(ctx, seedTickets...); err != nil {
		return nil, err
	}
	return store, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

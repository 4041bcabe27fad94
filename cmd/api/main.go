package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/logic-legends/triage-service/internal/api/http"
	"github.com/logic-legends/triage-service/internal/api/http/handlers"
	"github.com/logic-legends/triage-service/internal/classify"
	"github.com/logic-legends/triage-service/internal/config"
	"github.com/logic-legends/triage-service/internal/escalation"
	"github.com/logic-legends/triage-service/internal/events"
	"github.com/logic-legends/triage-service/internal/feed"
	"github.com/logic-legends/triage-service/internal/observability"
	"github.com/logic-legends/triage-service/internal/persistence"
	"github.com/logic-legends/triage-service/internal/repository"
	"github.com/logic-legends/triage-service/internal/service"
	"github.com/logic-legends/triage-service/internal/store"
	"github.com/logic-legends/triage-service/internal/worker"
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

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	var ticketRepo store.Repository
	var memberRepo repository.TeamMemberRepository
	var alertRepo repository.AlertRepository
	if pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		memberRepo = repository.NewTeamMemberRepository(pool)
		alertRepo = repository.NewAlertRepository(pool)
	} else {
		ticketRepo = store.NewMemoryRepository()
		memberRepo = repository.NewMemoryTeamMemberRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()

	kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	kafkaPublisher.RegisterHandlers(dispatcher)
	defer kafkaPublisher.Close() //nolint:errcheck

	ticketStore := store.New(ticketRepo, dispatcher, nil)
	hub := feed.NewHub(ticketStore, logger)
	ticketStore.SetChangeNotifier(hub)

	keyword := classify.NewKeywordClassifier()
	model := classify.NewModelClassifier(cfg.Classifier, keyword, logger)

	triageService := service.NewTriageService(ticketStore, model, logger)
	teamService := service.NewTeamService(memberRepo, rdb.Client, logger)
	teamService.RegisterCounterHandlers(dispatcher)
	chatService := service.NewChatService(model, triageService, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	policy := escalation.NewPolicy(ticketStore, logger)
	worker.StartEscalationWorker(ctx, policy, hub)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(pool, rdb.Client, metrics),
		Tickets:     handlers.NewTicketsHandler(triageService),
		Escalations: handlers.NewEscalationsHandler(policy),
		Team:        handlers.NewTeamHandler(teamService),
		Chat:        handlers.NewChatHandler(chatService),
		Alerts:      handlers.NewAlertsHandler(alertRepo),
		Feed:        handlers.NewFeedHandler(hub, metrics, logger),
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

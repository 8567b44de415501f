package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"mockchat/internal/config"
	"mockchat/internal/db"
	"mockchat/internal/handlers"
	"mockchat/internal/logger"
	"mockchat/internal/middleware"
	"mockchat/internal/observability"
	"mockchat/internal/rabbitmq"
	"mockchat/internal/repositories"
	"mockchat/internal/simulation"
	"mockchat/internal/store"
	"mockchat/internal/telemetry"
	"mockchat/internal/tracing"
	"mockchat/internal/ws"
)

const serviceName = "mockchat"

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, serviceName, cfg.Environment, log)
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	observability.SetPublisher(publisher)
	log.Info("event publisher ready",
		zap.String("mode", rabbitmq.PublisherMode(publisher)),
		zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)),
	)
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, serviceName, cfg.Environment, log)

	st := store.New(store.WithSeed(store.Seed(time.Now())), store.WithLogger(log))

	sched := simulation.NewScheduler(simulation.RealClock())
	rng := simulation.NewRandom(cfg.RandomSeed)
	sim := simulation.NewChatSimulator(st, sched, rng, cfg.Simulation, log)
	st.Subscribe(sim)

	hub := ws.NewHub(log)
	st.Subscribe(hub)
	sim.Subscribe(hub)

	forwarder := observability.NewEventForwarder(256, 2*time.Second, log)
	st.Subscribe(forwarder)
	sim.Subscribe(forwarder)

	var journal handlers.Journal
	var journalWriter *repositories.JournalWriter
	if cfg.JournalDSN != "" {
		database, err := db.Connect(cfg.JournalDSN, log)
		if err != nil {
			log.Fatal("failed to connect to db", zap.Error(err))
		}
		defer database.Close()
		repo := repositories.NewJournalRepo(database)
		journalWriter = repositories.NewJournalWriter(repo, 512, 2*time.Second, log)
		st.Subscribe(journalWriter)
		journal = repo
	} else {
		log.Info("event journal disabled", zap.String("reason", "empty DB_DSN"))
	}

	var presence *simulation.PresenceSimulator
	if cfg.Presence {
		presence = simulation.NewPresenceSimulator(st, sim, sched, rng, cfg.Simulation, log)
		presence.Start()
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(logger.RequestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store_version": st.Snapshot().Version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatWS := ws.NewChatWebSocketHandler(hub, st, sim, log)
	router.GET("/ws/chats/:chat_id", chatWS.Handle)

	handlers.NewAPI(st, sim, journal, audit).Register(router, middleware.AuthMiddleware(st))
	handlers.RegisterDebugRoutes(router, st, sim, audit, cfg.DebugRoutes)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if presence != nil {
		presence.Stop()
	}
	sim.Close()
	sched.Stop()
	forwarder.Close()
	if journalWriter != nil {
		journalWriter.Close()
	}
	if err := publisher.Close(); err != nil {
		log.Warn("publisher close", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown", zap.Error(err))
	}
}

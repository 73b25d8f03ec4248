// Command server runs the garita facility access API.
//
// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"garita/internal/access/cache"
	accesshandler "garita/internal/access/handler"
	"garita/internal/access/service"
	accesspg "garita/internal/access/store/postgres"
	"garita/internal/auth"
	"garita/internal/notifications"
	"garita/internal/platform/config"
	"garita/internal/platform/httpserver"
	"garita/internal/platform/logger"
	"garita/internal/platform/metrics"
	"garita/internal/platform/middleware"
	"garita/internal/platform/postgres"
	"garita/internal/platform/redis"
	"garita/internal/registry/accesspoints"
	"garita/internal/registry/badges"
	"garita/internal/registry/blacklist"
	"garita/internal/registry/companies"
	"garita/internal/registry/contractors"
	"garita/internal/registry/users"
	"garita/internal/registry/vehicles"
	"garita/pkg/audit"
	auditkafka "garita/pkg/audit/kafka"
)

const tokenTTL = 8 * time.Hour

func main() {
	// Missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var entryCache *cache.EntryCache
	if redisClient != nil {
		defer redisClient.Close()
		entryCache = cache.New(redisClient.Client, cfg.EntryCacheTTL, log)
		log.Info("entry cache enabled", "ttl", cfg.EntryCacheTTL.String())
	}

	var auditStore audit.Store
	if cfg.KafkaBrokers != "" {
		sink, err := auditkafka.New(ctx, strings.Split(cfg.KafkaBrokers, ","), cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka audit sink failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditStore = sink
		log.Info("audit events published to kafka", "topic", cfg.AuditTopic)
	} else {
		auditStore = audit.NewInMemoryStore()
		log.Warn("no kafka brokers configured, audit events stay in memory")
	}
	publisher := audit.NewPublisher(auditStore)

	m := metrics.New()

	stores := accesspg.New(db)
	reader := accesspg.NewReader(db)
	accessService := service.New(stores, reader, entryCache, publisher, m, log)

	userStore := users.NewStore(db)
	tokens := auth.NewTokenService(cfg.JWTSigningKey, tokenTTL)
	authService := auth.NewService(userStore, tokens, publisher, log)

	notifier := notifications.New(reader, publisher, log,
		cfg.BadgeSweepInterval, cfg.BadgeLoanMaxAge)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(m))
	router.Use(middleware.Timeout(30 * time.Second))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		auth.NewHandler(authService).Routes(r)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(tokens, log))

		accesshandler.New(accessService, log).Routes(r)
		contractors.NewHandler(contractors.NewStore(db), log).Routes(r)
		badges.NewHandler(badges.NewStore(db), log).Routes(r)
		companies.NewHandler(companies.NewStore(db)).Routes(r)
		vehicles.NewHandler(vehicles.NewStore(db)).Routes(r)
		accesspoints.NewHandler(accesspoints.NewStore(db)).Routes(r)
		blacklist.NewHandler(blacklist.NewService(blacklist.NewStore(db), publisher, log)).Routes(r)
		users.NewHandler(users.NewService(userStore, log)).Routes(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting garita", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := notifier.Run(gCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

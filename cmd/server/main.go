package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"clinrec/internal/auth"
	authhandler "clinrec/internal/auth/handler"
	authstore "clinrec/internal/auth/store"
	"clinrec/internal/platform/config"
	"clinrec/internal/platform/httpserver"
	"clinrec/internal/platform/kafka/producer"
	"clinrec/internal/platform/logger"
	"clinrec/internal/platform/middleware"
	"clinrec/internal/platform/postgres"
	platformredis "clinrec/internal/platform/redis"
	rechandler "clinrec/internal/recommendation/handler"
	"clinrec/internal/recommendation/cache"
	"clinrec/internal/recommendation/engine"
	"clinrec/internal/recommendation/metrics"
	recservice "clinrec/internal/recommendation/service"
	recstore "clinrec/internal/recommendation/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New("clinrec-api")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("could not connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	queue := producer.New(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err := queue.Connect(ctx); err != nil {
		log.Error("could not connect to queue", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.TokenTTL)
	authService := auth.NewService(authstore.NewPostgres(db), tokens)

	engineOpts := []engine.Option{}
	if cfg.OpenAIKey != "" {
		engineOpts = append(engineOpts, engine.WithGenerator(engine.NewOpenAIGenerator(cfg.OpenAIKey, cfg.OpenAIModel)))
	}
	decisionEngine := engine.New(log, engineOpts...)

	recMetrics := metrics.New()
	recommendations := recservice.New(
		decisionEngine,
		recstore.NewPostgres(db),
		cache.NewRedis(redisClient.Client),
		queue,
		log,
		recMetrics,
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authhandler.New(authService, log).Register(router)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, log))
		rechandler.New(recommendations, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting clinrec api", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

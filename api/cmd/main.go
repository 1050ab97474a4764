package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/audit"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/config"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/infrastructure/postgres"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/infrastructure/rabbitmq"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/infrastructure/redis"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/pkg/logger"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/security"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/service"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/transport/rest"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 1
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}
	logger.Init()
	log := logger.Logger.With().
		Str("service", "recommender-service").
		Str("env", cfg.AppEnv).
		Logger()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	dbPool, err := pgxpool.New(rootCtx, cfg.DBDSN)
	if err != nil {
		log.Error().Err(err).Msg("postgres pool create failed")
		return 1
	}
	defer dbPool.Close()

	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		defer cancel()
		if err := dbPool.Ping(pingCtx); err != nil {
			log.Error().Err(err).Msg("postgres ping failed")
			return 1
		}
		log.Info().Msg("postgres connected")
	}

	repo := postgres.New(dbPool)

	// ---- Redis (best-effort collaborator) ----
	var cache domain.CacheRepository
	rdb := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		defer cancel()
		if err := rdb.Client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing without cache)")
		} else {
			log.Info().Msg("redis connected")
			cache = rdb
		}
	}

	// ---- RabbitMQ publisher (optional in dev) ----
	var pub domain.EventPublisher
	if cfg.RabbitURL != "" {
		p := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange, log)
		defer p.Close()
		pub = p
	}

	// ---- Batch service ----
	svc := service.New(repo, repo, repo, cache, pub, audit.New(log), service.Options{
		TopN:        cfg.TopN,
		Weights:     cfg.Weights,
		Workers:     cfg.BatchWorkers,
		UserTimeout: cfg.UserTimeout,
		PageSize:    cfg.PageSize,
		RunLockTTL:  cfg.RunLockTTL,
	})

	if cfg.Mode == config.ModeOnce {
		// Single pass; per-user failures are reported in the summary, not
		// the exit code. Non-zero only when enumeration cannot complete.
		if _, err := svc.Run(rootCtx); err != nil {
			return 1
		}
		return 0
	}

	return serve(rootCtx, cfg, svc, log)
}

func serve(rootCtx context.Context, cfg *config.Config, svc *service.RecommendationService, log zerolog.Logger) int {
	verifier := security.NewHS256Verifier(cfg.JWTSecret, cfg.JWTIssuer)
	h := rest.NewHandler(svc, log)
	router := rest.NewRouter(rest.RouterDeps{
		Handler:  h,
		Verifier: verifier,
	})

	// Scheduled runs, immediately on startup then every BatchInterval.
	go func() {
		runOnce := func() {
			if _, err := svc.Run(rootCtx); err != nil {
				if errors.Is(err, domain.ErrRunInProgress) {
					log.Warn().Msg("previous batch run still in flight, skipping this tick")
					return
				}
				log.Error().Err(err).Msg("scheduled batch run aborted")
			}
		}
		runOnce()

		ticker := time.NewTicker(cfg.BatchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	code := 0
	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
	return code
}

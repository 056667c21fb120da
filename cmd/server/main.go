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

	"github.com/zakareajob-cpu/zak-crm/internal/config"
	"github.com/zakareajob-cpu/zak-crm/internal/infra"
	"github.com/zakareajob-cpu/zak-crm/internal/router"
	"github.com/zakareajob-cpu/zak-crm/internal/service"
	"github.com/zakareajob-cpu/zak-crm/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title                       ZAK CRM API
// @version                     1.0
// @description                 Contacts, product catalog and proforma invoices.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// dev: pretty console, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to open database")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb == nil {
		log.Warn().Msg("REDIS_URL not set: search cache and invoice e-mail disabled")
	}

	var queue service.EmailQueue
	if rdb != nil {
		queue = worker.NewDispatcher(rdb)
	}
	svcs := router.NewServices(cfg, db, rdb, queue)

	if created, err := svcs.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin user")
	} else if created {
		log.Info().Str("email", cfg.AdminEmail).Msg("admin user created")
	}

	var pool *worker.Pool
	if rdb != nil {
		store, err := infra.NewPDFStore(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure pdf storage")
		}
		mailer := infra.NewMailer(cfg, infra.NewCircuitBreaker(infra.DefaultBreakerConfig("smtp")))

		pool = worker.NewPool(rdb, cfg.EmailMaxAttempts)
		pool.Register(worker.JobInvoiceEmail, worker.NewEmailWorker(svcs.Invoices, store, mailer))
		pool.Start(ctx, cfg.WorkerPoolSize)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(ctx, cfg, db, rdb, svcs),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("db", cfg.DatabaseDriver).Msg("zak-crm listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

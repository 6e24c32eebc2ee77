package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cabinetcpq/internal/config"
	"cabinetcpq/internal/infra"
	"cabinetcpq/internal/repository"
	"cabinetcpq/internal/router"
	"cabinetcpq/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Circuit breaker guarding the external customer/contract directory.
	directoryCB := infra.NewCircuitBreaker(infra.BreakerConfig{})

	r, dispatcher := router.New(cfg, db, rdb, directoryCB)

	// Worker pool for async tasks (PDF render, email). Handlers are wired
	// here, at the composition root, so the pool has full access to all
	// infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quoteRepo := repository.NewQuoteRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	mailer := infra.NewMailer(cfg)

	renderWorker := worker.NewRenderWorker(quoteRepo, catalogRepo, customerRepo, dispatcher, cfg.PDFStoragePath)
	emailWorker := worker.NewEmailWorker(mailer)
	pool := worker.NewPool(rdb, map[string]worker.Handler{
		worker.QueueRender: renderWorker.Process,
		worker.QueueEmail:  emailWorker.Process,
	})
	pool.Start(ctx, cfg.WorkerPoolSize)

	// Background refresh of stale customer terms from the directory.
	worker.StartSyncCron(ctx, worker.SyncCronConfig{
		CustomerRepo: customerRepo,
		Directory:    infra.NewDirectoryClient(cfg.DirectoryURL),
		CB:           directoryCB,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("cabinetcpq backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

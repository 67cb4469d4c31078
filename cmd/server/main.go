package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizzine/quizzine-backend/internal/config"
	"github.com/quizzine/quizzine-backend/internal/database"
	"github.com/quizzine/quizzine-backend/internal/handler"
	"github.com/quizzine/quizzine-backend/internal/logger"
	"github.com/quizzine/quizzine-backend/internal/repository"
	"github.com/quizzine/quizzine-backend/internal/router"
	"github.com/quizzine/quizzine-backend/internal/service"
	"github.com/quizzine/quizzine-backend/internal/validator"
	"github.com/quizzine/quizzine-backend/internal/worker"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

func main() {
	// ─── Configuration and logging ─────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Msg("starting quizzine backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Backing stores ────────────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres unavailable")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("redis unavailable")
	}
	defer rdb.Close()

	// ─── Repositories and services ─────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	folderRepo := repository.NewFolderRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	authService := service.NewAuthService(cfg, userRepo)
	quizService := service.NewQuizService(quizRepo, userRepo, rdb, log)
	folderService := service.NewFolderService(folderRepo, quizRepo)
	sessionService := service.NewSessionService(quizService, rdb, log)
	attemptService := service.NewAttemptService(attemptRepo, quizRepo)

	// ─── Handlers and router ───────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Quiz:    handler.NewQuizHandler(quizService),
		Folder:  handler.NewFolderHandler(folderService),
		Session: handler.NewSessionHandler(sessionService),
		Attempt: handler.NewAttemptHandler(attemptService),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Background worker ─────────────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	attemptWorker := worker.NewAttemptWorker(attemptRepo, rdb, log)
	go attemptWorker.Start(workerCtx)

	// ─── Serve ─────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// ─── Graceful shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	// Stop taking new HTTP requests first.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}

	// Close live sessions; attempts still in progress end without a record.
	sessionService.Shutdown(context.Background())

	// Let the attempt worker flush whatever the queue still holds.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("shutdown complete")
}

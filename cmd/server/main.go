package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"examportal/internal/config"
	"examportal/internal/database"
	"examportal/internal/handler"
	"examportal/internal/logger"
	"examportal/internal/repository"
	"examportal/internal/router"
	"examportal/internal/service"
	"examportal/internal/validator"
	"examportal/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Exam Portal")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories.
	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)

	// Services.
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService)
	adminService := service.NewAdminService(adminRepo, authService)
	questionService := service.NewQuestionService(questionRepo)
	examService := service.NewExamService(examRepo, questionRepo)
	sessionService := service.NewSessionService(examRepo, sessionRepo, questionRepo)
	resultService := service.NewResultService(resultRepo, rdb, cfg)
	dashboardService := service.NewDashboardService(dashboardRepo)
	settingService := service.NewSettingService(settingRepo, log)
	mediaService := service.NewMediaService(cfg)

	handlers := &router.Handlers{
		Auth: handler.NewAuthHandler(authService, userService, adminService),
		StudentPortal: handler.NewStudentPortalHandler(
			examService, sessionService, sessionRepo, resultService, settingService),
		Question:  handler.NewQuestionHandler(questionService),
		Exam:      handler.NewExamHandler(examService),
		Results:   handler.NewResultsHandler(resultRepo, resultService, examService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Setting:   handler.NewSettingHandler(settingService),
		Media:     handler.NewMediaHandler(mediaService),
		User:      handler.NewUserHandler(userService),
	}

	reaper := worker.NewSessionReaper(pool, rdb, log)
	go reaper.Start(ctx)

	r := router.SetupRouter(authService, adminService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

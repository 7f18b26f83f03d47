package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenfee/tourops/config"
	"github.com/greenfee/tourops/db"
	"github.com/greenfee/tourops/handlers"
	"github.com/greenfee/tourops/repositories"
	api "github.com/greenfee/tourops/routes"
	"github.com/greenfee/tourops/services"
	"github.com/greenfee/tourops/storage"
	_ "github.com/lib/pq"
)

const schedulerInterval = 10 * time.Minute // Как часто закрываются истёкшие туры

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Архивное хранилище отчётов опционально: без него выгрузка отчёта
	// просто не получает публичную ссылку.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("report archive storage is not configured, exports will skip upload")
	}

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tourRepo := repositories.NewPostgresTourRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	roomRepo := repositories.NewPostgresRoomRepository(dbConn)
	teeTimeRepo := repositories.NewPostgresTeeTimeRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	tourService := services.NewTourService(tourRepo, logger)
	participantService := services.NewParticipantService(participantRepo, tourRepo)
	roomService := services.NewRoomService(roomRepo, participantRepo, tourRepo)
	teeTimeService := services.NewTeeTimeService(teeTimeRepo, tourRepo, cfg.AdvisoryTeamSize)
	reportService := services.NewReportService(tourRepo, participantRepo, roomRepo, uploader, logger)
	logger.Info("Services initialized")

	// Планировщик автоматического завершения истёкших туров
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("Tour auto-completion scheduler started", slog.Duration("interval", schedulerInterval))

		if err := tourService.AutoCompleteFinishedTours(context.Background()); err != nil {
			logger.Error("Scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := tourService.AutoCompleteFinishedTours(context.Background()); err != nil {
				logger.Error("Scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Tour:        handlers.NewTourHandler(tourService),
		Participant: handlers.NewParticipantHandler(participantService, roomService),
		Room:        handlers.NewRoomHandler(roomService),
		TeeTime:     handlers.NewTeeTimeHandler(teeTimeService),
		Report:      handlers.NewReportHandler(reportService),
	}
	logger.Info("HTTP handlers initialized")

	router := api.SetupRoutes(h, cfg.JWTSecretKey)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}

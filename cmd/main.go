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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/padeliga/league-system/config"
	"github.com/padeliga/league-system/db"
	"github.com/padeliga/league-system/handlers"
	"github.com/padeliga/league-system/repositories"
	api "github.com/padeliga/league-system/routes"
	"github.com/padeliga/league-system/scheduling"
	"github.com/padeliga/league-system/services"
	"github.com/padeliga/league-system/storage"
)

const statusSchedulerInterval = 30 * time.Second // How often the season status scheduler runs

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

	// Применение миграций
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Error("failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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

	// Инициализация WebSocket Hub
	wsHub := scheduling.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	matchDayRepo := repositories.NewPostgresMatchDayRepository(dbConn)
	dayGroupRepo := repositories.NewPostgresDayGroupRepository(dbConn)
	rotationRepo := repositories.NewPostgresRotationRepository(dbConn)
	availabilityRepo := repositories.NewPostgresAvailabilityRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	seasonService := services.NewSeasonService(seasonRepo, txRunner, logger)
	categoryService := services.NewCategoryService(categoryRepo, seasonRepo, cloudflareUploader, logger)
	playerService := services.NewPlayerService(playerRepo, categoryRepo, logger)
	courtService := services.NewCourtService(courtRepo, seasonRepo)
	availabilityService := services.NewAvailabilityService(availabilityRepo, playerRepo, seasonRepo)
	calendarService := services.NewCalendarService(
		matchDayRepo,
		dayGroupRepo,
		rotationRepo,
		playerRepo,
		categoryRepo,
		txRunner,
		logger,
	)
	scheduleService := services.NewScheduleService(
		seasonRepo,
		courtRepo,
		categoryRepo,
		matchDayRepo,
		dayGroupRepo,
		playerRepo,
		availabilityRepo,
		txRunner,
		wsHub,
		logger,
	)
	logger.Info("Services initialized")

	// Запуск планировщика автоматического обновления статусов сезонов
	go func() {
		ticker := time.NewTicker(statusSchedulerInterval)
		defer ticker.Stop()
		logger.Info("Season status update scheduler started", slog.Duration("interval", statusSchedulerInterval))

		// Run once immediately at startup, then on ticker
		if err := seasonService.AutoUpdateSeasonStatusesByDates(context.Background()); err != nil {
			logger.Error("Scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := seasonService.AutoUpdateSeasonStatusesByDates(context.Background()); err != nil {
				logger.Error("Scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	seasonHandler := handlers.NewSeasonHandler(seasonService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	courtHandler := handlers.NewCourtHandler(courtService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	matchDayHandler := handlers.NewMatchDayHandler(calendarService, scheduleService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		seasonHandler,
		categoryHandler,
		playerHandler,
		courtHandler,
		availabilityHandler,
		matchDayHandler,
		scheduleHandler,
		webSocketHandler,
	)
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

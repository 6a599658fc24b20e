// Точка входа Admin UI — административный интерфейс учебного портала Edustore.
// Загружает конфигурацию, создаёт клиент портального API, сервисный слой
// (списки с кэшем, загрузки с трекером прогресса), i18n, запускает
// topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/arturkryukov/edustore/admin-ui/internal/apiclient"
	"github.com/arturkryukov/edustore/admin-ui/internal/config"
	"github.com/arturkryukov/edustore/admin-ui/internal/server"
	"github.com/arturkryukov/edustore/admin-ui/internal/service"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/auth"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/handlers"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/i18n"
	uimiddleware "github.com/arturkryukov/edustore/admin-ui/internal/ui/middleware"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Admin UI запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	// 3. i18n — загрузка каталогов переводов (en, vi)
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки i18n каталогов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Клиент портального API (единый для всех сервисов)
	apiClient, err := apiclient.New(cfg.APIBaseURL, cfg.APICACertPath, cfg.APITimeout, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента портального API", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Session Manager — шифрование UI-сессий (AES-256-GCM)
	sessionMgr, err := auth.NewSessionManager(cfg.SessionKey, cfg.SecureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionKey == "" {
		logger.Warn("AU_SESSION_KEY не задан, UI-сессии не сохраняются между рестартами")
	}

	// 6. Сервисный слой
	listingSvc := service.NewListingService(apiClient, cfg.CacheSize, cfg.CacheTTL, logger)
	uploadSvc := service.NewUploadService(
		apiClient, listingSvc,
		cfg.UploadTrackerSize, cfg.UploadTrackerTTL,
		cfg.UploadTimeout,
		logger,
	)

	// 7. topologymetrics — мониторинг портального API (опционально)
	ctx := context.Background()
	var dephealthSvc *service.DephealthService
	if cfg.DephealthEnabled {
		dephealthSvc, err = service.NewDephealthService(
			"admin-ui",
			cfg.DephealthGroup,
			cfg.APIBaseURL,
			cfg.DephealthCheckInterval,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
			dephealthSvc = nil
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 8. Route guard защищённых страниц
	guard := uimiddleware.NewUIAuth(sessionMgr, cfg.AllowRoles, logger)

	// 9. HTTP-обработчики
	h := server.Handlers{
		Auth:      handlers.NewAuthHandler(apiClient, sessionMgr, logger),
		Documents: handlers.NewDocumentsHandler(listingSvc, apiClient, sessionMgr, logger),
		Storage:   handlers.NewStorageHandler(listingSvc, sessionMgr, logger),
		Upload:    handlers.NewUploadHandler(uploadSvc, sessionMgr, logger),
		Health:    handlers.NewHealthHandler(apiClient),
	}

	// 10. Запуск HTTP-сервера (блокируется до сигнала завершения)
	srv := server.New(cfg, logger, h, guard)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Admin UI остановлен")
}

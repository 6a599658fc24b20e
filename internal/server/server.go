// Пакет server — HTTP-сервер Admin UI с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arturkryukov/edustore/admin-ui/internal/config"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/handlers"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/i18n"
	uimiddleware "github.com/arturkryukov/edustore/admin-ui/internal/ui/middleware"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/static"
)

// Handlers — набор обработчиков, подключаемых к маршрутам сервера.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Documents *handlers.DocumentsHandler
	Storage   *handlers.StorageHandler
	Upload    *handlers.UploadHandler
	Health    *handlers.HealthHandler
}

// Server — HTTP-сервер Admin UI.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// guard — route guard защищённых страниц.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, guard *uimiddleware.UIAuth) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(uimiddleware.MetricsMiddleware())
	router.Use(uimiddleware.RequestLogger(logger))
	router.Use(i18n.Middleware())

	// Публичные маршруты: вход, смена языка, статика, probes, метрики
	router.Get("/login", h.Auth.HandleLoginPage)
	router.Post("/login", h.Auth.HandleLoginSubmit)
	router.Get("/set-language", handlers.HandleSetLanguage)
	router.Post("/set-language", handlers.HandleSetLanguage)
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	// Защищённые маршруты за route guard
	router.Group(func(r chi.Router) {
		r.Use(guard.Middleware())

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/documents", http.StatusFound)
		})
		r.Post("/logout", h.Auth.HandleLogout)
		r.Get("/documents", h.Documents.HandleList)
		r.Get("/documents/{id}", h.Documents.HandleDetail)
		r.Get("/storage", h.Storage.HandleList)
		r.Get("/upload", h.Upload.HandlePage)
		r.Post("/upload", h.Upload.HandleSubmit)
		r.Get("/upload/progress/{id}", h.Upload.HandleProgress)
	})

	// Неизвестные пути — на /login (страницы «not found» нет)
	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/login", http.StatusFound)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}

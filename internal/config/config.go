// Пакет config — загрузка и валидация конфигурации Admin UI
// из переменных окружения.
// Локальный .env подхватывается автоматически (godotenv/autoload в main).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Admin UI.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Портальный API ---

	// Базовый URL портального API (например, https://portal.edustore.vn/api)
	APIBaseURL string
	// Путь к CA-сертификату для TLS-соединений с API (опционально)
	APICACertPath string
	// Таймаут обычных запросов к API
	APITimeout time.Duration
	// Таймаут загрузки файла (больше обычного: большие файлы)
	UploadTimeout time.Duration

	// --- Сессии ---

	// Ключ шифрования session cookie (base64, 32 bytes).
	// Пустой — случайный ключ, сессии не переживают рестарт.
	SessionKey string
	// Использовать Secure flag для cookies (true за HTTPS)
	SecureCookie bool
	// Роли, допущенные к защищённым страницам (через запятую)
	AllowRoles []string

	// --- Кэш списков ---

	// Максимальное количество наборов в LRU-кэше списков
	CacheSize int
	// Время жизни набора в кэше
	CacheTTL time.Duration

	// --- Трекер загрузок ---

	// Максимальное количество отслеживаемых загрузок
	UploadTrackerSize int
	// Время хранения состояния завершённой загрузки
	UploadTrackerTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Включён ли topologymetrics мониторинг
	DephealthEnabled bool
	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// AU_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("AU_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("AU_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("AU_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// AU_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("AU_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("AU_LOG_LEVEL: %w", err)
	}

	// AU_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("AU_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("AU_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Портальный API ---

	// AU_API_BASE_URL — обязательный
	cfg.APIBaseURL, err = getEnvRequired("AU_API_BASE_URL")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	// AU_API_CA_CERT_PATH — путь к CA-сертификату API (опционально)
	cfg.APICACertPath = getEnvDefault("AU_API_CA_CERT_PATH", "")

	// AU_API_TIMEOUT — таймаут запросов к API (по умолчанию 30s)
	cfg.APITimeout, err = getEnvDuration("AU_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AU_API_TIMEOUT: %w", err)
	}

	// AU_UPLOAD_TIMEOUT — таймаут загрузки файла (по умолчанию 10m)
	cfg.UploadTimeout, err = getEnvDuration("AU_UPLOAD_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AU_UPLOAD_TIMEOUT: %w", err)
	}

	// --- Сессии ---

	// AU_SESSION_KEY — ключ шифрования session cookie (опционально)
	cfg.SessionKey = getEnvDefault("AU_SESSION_KEY", "")

	// AU_SECURE_COOKIE — Secure flag для cookies (по умолчанию false)
	cfg.SecureCookie, err = getEnvBool("AU_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("AU_SECURE_COOKIE: %w", err)
	}

	// AU_ALLOW_ROLES — роли для защищённых страниц (по умолчанию "admin")
	cfg.AllowRoles = parseCSV(getEnvDefault("AU_ALLOW_ROLES", "admin"))

	// --- Кэш списков ---

	// AU_CACHE_SIZE — размер LRU-кэша списков (по умолчанию 64)
	cfg.CacheSize, err = getEnvInt("AU_CACHE_SIZE", 64)
	if err != nil {
		return nil, fmt.Errorf("AU_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize < 1 || cfg.CacheSize > 10000 {
		return nil, fmt.Errorf("AU_CACHE_SIZE: значение %d вне допустимого диапазона 1-10000", cfg.CacheSize)
	}

	// AU_CACHE_TTL — TTL набора в кэше (по умолчанию 30s)
	cfg.CacheTTL, err = getEnvDuration("AU_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AU_CACHE_TTL: %w", err)
	}

	// --- Трекер загрузок ---

	// AU_UPLOAD_TRACKER_SIZE — размер трекера загрузок (по умолчанию 128)
	cfg.UploadTrackerSize, err = getEnvInt("AU_UPLOAD_TRACKER_SIZE", 128)
	if err != nil {
		return nil, fmt.Errorf("AU_UPLOAD_TRACKER_SIZE: %w", err)
	}
	if cfg.UploadTrackerSize < 1 || cfg.UploadTrackerSize > 10000 {
		return nil, fmt.Errorf("AU_UPLOAD_TRACKER_SIZE: значение %d вне допустимого диапазона 1-10000", cfg.UploadTrackerSize)
	}

	// AU_UPLOAD_TRACKER_TTL — время хранения завершённой загрузки (по умолчанию 10m)
	cfg.UploadTrackerTTL, err = getEnvDuration("AU_UPLOAD_TRACKER_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AU_UPLOAD_TRACKER_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// AU_DEPHEALTH_ENABLED — включён ли мониторинг (по умолчанию true)
	cfg.DephealthEnabled, err = getEnvBool("AU_DEPHEALTH_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("AU_DEPHEALTH_ENABLED: %w", err)
	}

	// AU_DEPHEALTH_GROUP — имя группы (по умолчанию "edustore")
	cfg.DephealthGroup = getEnvDefault("AU_DEPHEALTH_GROUP", "edustore")

	// AU_DEPHEALTH_CHECK_INTERVAL — интервал проверки (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("AU_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AU_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// AU_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("AU_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AU_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

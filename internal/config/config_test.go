package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv задаёт минимальный набор обязательных переменных.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AU_API_BASE_URL", "https://portal.example.com/api")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port по умолчанию должен быть 8080, получено %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel по умолчанию должен быть info, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat по умолчанию должен быть json, получено %q", cfg.LogFormat)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("APITimeout по умолчанию должен быть 30s, получено %v", cfg.APITimeout)
	}
	if cfg.UploadTimeout != 10*time.Minute {
		t.Errorf("UploadTimeout по умолчанию должен быть 10m, получено %v", cfg.UploadTimeout)
	}
	if len(cfg.AllowRoles) != 1 || cfg.AllowRoles[0] != "admin" {
		t.Errorf("AllowRoles по умолчанию должен быть [admin], получено %v", cfg.AllowRoles)
	}
	if cfg.CacheSize != 64 {
		t.Errorf("CacheSize по умолчанию должен быть 64, получено %d", cfg.CacheSize)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL по умолчанию должен быть 30s, получено %v", cfg.CacheTTL)
	}
	if !cfg.DephealthEnabled {
		t.Error("DephealthEnabled по умолчанию должен быть true")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout по умолчанию должен быть 5s, получено %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	// AU_API_BASE_URL не задан
	t.Setenv("AU_API_BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Ожидалась ошибка при отсутствии AU_API_BASE_URL")
	}
	if !strings.Contains(err.Error(), "AU_API_BASE_URL") {
		t.Errorf("Ошибка должна упоминать AU_API_BASE_URL: %v", err)
	}
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("AU_API_BASE_URL", "https://portal.example.com/api///")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if cfg.APIBaseURL != "https://portal.example.com/api" {
		t.Errorf("Trailing slash должен убираться, получено %q", cfg.APIBaseURL)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequiredEnv(t)

	tests := []struct {
		name string
		port string
	}{
		{"не число", "abc"},
		{"ноль", "0"},
		{"за пределом", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AU_PORT", tt.port)
			if _, err := Load(); err == nil {
				t.Errorf("Ожидалась ошибка для AU_PORT=%q", tt.port)
			}
		})
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AU_LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Fatal("Ожидалась ошибка для недопустимого AU_LOG_FORMAT")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AU_API_TIMEOUT", "тридцать секунд")

	if _, err := Load(); err == nil {
		t.Fatal("Ожидалась ошибка для некорректной длительности")
	}
}

func TestLoad_AllowRolesCSV(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AU_ALLOW_ROLES", "admin, viewer ,, ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	want := []string{"admin", "viewer"}
	if len(cfg.AllowRoles) != len(want) {
		t.Fatalf("Ожидалось %v, получено %v", want, cfg.AllowRoles)
	}
	for i, role := range want {
		if cfg.AllowRoles[i] != role {
			t.Errorf("AllowRoles[%d]: ожидалось %q, получено %q", i, role, cfg.AllowRoles[i])
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseLogLevel(%q): ожидалась ошибка", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLogLevel(%q): неожиданная ошибка %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, ожидалось %v", tt.in, got, tt.want)
		}
	}
}

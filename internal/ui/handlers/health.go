// health.go — обработчики health endpoints Admin UI.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (портальный API доступен)
// /metrics — Prometheus метрики
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arturkryukov/edustore/admin-ui/internal/config"
)

// apiPinger — проверка доступности портального API.
type apiPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	api         apiPinger
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// api может быть nil (readiness вернёт "fail").
func NewHealthHandler(api apiPinger) *HealthHandler {
	return &HealthHandler{
		api:         api,
		promHandler: promhttp.Handler(),
	}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		PortalAPI healthCheckResult `json:"portal_api"`
	} `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	resp := healthLiveResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "admin-ui",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady — readiness probe. Проверяет доступность портального API.
// Возвращает 200 (ok) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "admin-ui",
	}

	if h.api == nil {
		resp.Checks.PortalAPI = healthCheckResult{Status: "fail", Message: "не инициализирован"}
	} else if err := h.api.Ping(r.Context()); err != nil {
		resp.Checks.PortalAPI = healthCheckResult{Status: "fail", Message: err.Error()}
	} else {
		resp.Checks.PortalAPI = healthCheckResult{Status: "ok"}
	}

	resp.Status = resp.Checks.PortalAPI.Status

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == "fail" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

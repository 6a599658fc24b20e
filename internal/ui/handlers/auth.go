// Пакет handlers — HTTP-обработчики Admin UI.
// auth.go — вход по имени и паролю через портальный API.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arturkryukov/edustore/admin-ui/internal/apiclient"
	"github.com/arturkryukov/edustore/admin-ui/internal/domain/rbac"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/auth"
	uimiddleware "github.com/arturkryukov/edustore/admin-ui/internal/ui/middleware"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/pages"
)

// AuthHandler — обработчики аутентификации Admin UI.
type AuthHandler struct {
	client         *apiclient.Client
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(
	client *apiclient.Client,
	sessionManager *auth.SessionManager,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		client:         client,
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui_auth")),
	}
}

// HandleLoginPage — GET /login
// Показывает форму входа. Уже аутентифицированный пользователь
// перенаправляется на /documents.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if session, err := h.sessionManager.GetSessionFromRequest(r); err == nil && session.IsAuthenticated() && !session.IsExpired() {
		http.Redirect(w, r, "/documents", http.StatusFound)
		return
	}

	h.renderLogin(w, r, pages.LoginData{})
}

// HandleLoginSubmit — POST /login
// Пустые поля отклоняются локально, без обращения к API.
// 401 от API — «неверные учётные данные», остальные ошибки —
// «сервис недоступен». Успех — атомарная запись сессии и redirect.
func (h *AuthHandler) HandleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.renderLogin(w, r, pages.LoginData{
			ErrorKey: "login.error.credentials",
			Username: username,
		})
		return
	}

	tokenResp, err := h.client.Login(r.Context(), username, password)
	if err != nil {
		var reqErr *apiclient.RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusUnauthorized {
			h.logger.Warn("Неуспешный вход",
				slog.String("username", username),
				slog.String("remote_addr", r.RemoteAddr),
			)
			h.renderLogin(w, r, pages.LoginData{
				ErrorKey: "login.error.credentials",
				Username: username,
			})
			return
		}

		h.logger.Error("Портальный API недоступен при входе",
			slog.String("error", err.Error()),
		)
		h.renderLogin(w, r, pages.LoginData{
			ErrorKey: "login.error.unavailable",
			Username: username,
		})
		return
	}

	// Неизвестная роль из ответа API понижается до viewer:
	// допуск к защищённым страницам решает guard по allowRoles.
	role := strings.ToLower(strings.TrimSpace(tokenResp.Role))
	if !rbac.IsValidRole(role) {
		h.logger.Warn("Портальный API вернул неизвестную роль",
			slog.String("username", username),
			slog.String("role", tokenResp.Role),
		)
		role = rbac.RoleViewer
	}

	sessionData := auth.NewSessionData(tokenResp.AccessToken, role, tokenResp.FullName)
	if err := h.sessionManager.SetSessionCookie(w, sessionData); err != nil {
		h.logger.Error("Ошибка установки session cookie",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь аутентифицирован",
		slog.String("username", username),
		slog.String("role", sessionData.Role),
	)

	http.Redirect(w, r, "/documents", http.StatusFound)
}

// HandleLogout — POST /logout
// Очищает session cookie целиком и перенаправляет на /login.
// Идемпотентен: повторный logout безвреден.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessionManager.ClearSessionCookie(w)
	h.logger.Info("Пользователь выполнил logout")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// renderLogin рендерит страницу входа.
func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, data pages.LoginData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Login(data).Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга страницы входа",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// expireSession очищает сессию и перенаправляет на /login.
// Используется страницами при 401 от портального API.
func expireSession(sm *auth.SessionManager, w http.ResponseWriter, r *http.Request) {
	sm.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// sessionOrRedirect извлекает сессию из контекста.
// Возвращает nil после redirect, если сессии нет (guard не сработал).
func sessionOrRedirect(w http.ResponseWriter, r *http.Request) *auth.SessionData {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return nil
	}
	return session
}

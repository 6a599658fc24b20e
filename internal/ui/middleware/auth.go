// Пакет middleware — HTTP middleware Admin UI.
// auth.go — route guard: проверка сессии из зашифрованного cookie и роли.
// Проверка чистая и выполняется на каждый запрос, собственного состояния нет.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/arturkryukov/edustore/admin-ui/internal/domain/rbac"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/auth"
)

// contextKey — тип для ключей контекста UI.
type contextKey string

const (
	// ContextKeyUISession — данные UI-сессии в контексте запроса.
	ContextKeyUISession contextKey = "ui_session"
)

// Путь страницы входа, на которую перенаправляются все отказы.
const loginPath = "/login"

// UIAuth — route guard Admin UI.
// Извлекает сессию из зашифрованного cookie и проверяет роль.
// Любой отказ (нет сессии, повреждённый cookie, истёкший токен,
// неподходящая роль) — redirect на /login; страницы «forbidden» нет,
// чтобы не раскрывать существование защищённого контента.
type UIAuth struct {
	sessionManager *auth.SessionManager
	// allowRoles — роли, допущенные к защищённым маршрутам.
	// Пустой срез — достаточно аутентификации.
	allowRoles []string
	logger     *slog.Logger
}

// NewUIAuth создаёт новый UIAuth middleware.
func NewUIAuth(sessionManager *auth.SessionManager, allowRoles []string, logger *slog.Logger) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		allowRoles:     allowRoles,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware для защиты маршрутов.
// Применяется ко всем страницам, кроме /login, /static, /health, /metrics.
func (ua *UIAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Извлекаем сессию из cookie
			session, err := ua.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				ua.logger.Debug("Ошибка чтения UI-сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie — очищаем и redirect на login
				ua.sessionManager.ClearSessionCookie(w)
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			// 2. Нет сессии или пустой токен — redirect на login
			if !session.IsAuthenticated() {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			// 3. Истёкший токен — сессия завершается, redirect на login.
			// Refresh-flow у портального API нет.
			if session.IsExpired() {
				ua.logger.Info("Сессия истекла, redirect на login",
					slog.String("full_name", session.FullName),
				)
				ua.sessionManager.ClearSessionCookie(w)
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			// 4. Проверка роли: отказ неотличим от отсутствия аутентификации
			if !rbac.Allowed(session.Role, ua.allowRoles) {
				ua.logger.Warn("Недостаточная роль для защищённого маршрута",
					slog.String("role", session.Role),
					slog.String("path", r.URL.Path),
				)
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			// 5. Помещаем сессию в контекст
			ctx := context.WithValue(r.Context(), ContextKeyUISession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil если сессия не найдена (не прошёл через UIAuth middleware).
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeyUISession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/arturkryukov/edustore/admin-ui/internal/apiclient"
	"github.com/arturkryukov/edustore/admin-ui/internal/domain/rbac"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/auth"
)

// newAuthHandler создаёт AuthHandler с клиентом, направленным на
// тестовый портальный API.
func newAuthHandler(t *testing.T, srv *httptest.Server) (*AuthHandler, *auth.SessionManager) {
	t.Helper()
	client, err := apiclient.New(srv.URL, "", 5*time.Second, testLogger())
	if err != nil {
		t.Fatalf("Ошибка создания клиента: %v", err)
	}
	sm, err := auth.NewSessionManager("test-key", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}
	return NewAuthHandler(client, sm, testLogger()), sm
}

// loginForm собирает POST /login с указанными учётными данными.
func loginForm(username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// sessionFromRecorder дешифрует session cookie из ответа.
func sessionFromRecorder(t *testing.T, sm *auth.SessionManager, rec *httptest.ResponseRecorder) *auth.SessionData {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			data, err := sm.Decrypt(c.Value)
			if err != nil {
				t.Fatalf("Ошибка дешифрования session cookie: %v", err)
			}
			return data
		}
	}
	t.Fatal("Session cookie не установлен")
	return nil
}

// loginServer — тестовый портальный API, отвечающий на /auth/login
// токеном с указанной ролью.
func loginServer(role string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(apiclient.TokenResponse{
			AccessToken: "token-123",
			TokenType:   "bearer",
			Role:        role,
			FullName:    "Nguyễn Văn An",
		})
	}))
}

// TestHandleLoginSubmit_KnownRolePreserved проверяет успешный вход:
// redirect на /documents и сессия с ролью из ответа API.
func TestHandleLoginSubmit_KnownRolePreserved(t *testing.T) {
	srv := loginServer("admin")
	defer srv.Close()
	h, sm := newAuthHandler(t, srv)

	rec := httptest.NewRecorder()
	h.HandleLoginSubmit(rec, loginForm("admin", "secret"))

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался статус %d, получен %d", http.StatusFound, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/documents" {
		t.Errorf("Ожидался redirect на /documents, получен %q", loc)
	}

	session := sessionFromRecorder(t, sm, rec)
	if session.Role != rbac.RoleAdmin {
		t.Errorf("Role: want %q, got %q", rbac.RoleAdmin, session.Role)
	}
	if session.FullName != "Nguyễn Văn An" {
		t.Errorf("FullName: want %q, got %q", "Nguyễn Văn An", session.FullName)
	}
}

// TestHandleLoginSubmit_UnknownRoleDemoted проверяет понижение
// неизвестной роли из ответа API до viewer.
func TestHandleLoginSubmit_UnknownRoleDemoted(t *testing.T) {
	srv := loginServer("Superuser")
	defer srv.Close()
	h, sm := newAuthHandler(t, srv)

	rec := httptest.NewRecorder()
	h.HandleLoginSubmit(rec, loginForm("admin", "secret"))

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался статус %d, получен %d", http.StatusFound, rec.Code)
	}

	session := sessionFromRecorder(t, sm, rec)
	if session.Role != rbac.RoleViewer {
		t.Errorf("Неизвестная роль должна понижаться до viewer, получено %q", session.Role)
	}
}

// TestHandleLoginSubmit_RoleCaseNormalized проверяет нормализацию
// регистра известной роли.
func TestHandleLoginSubmit_RoleCaseNormalized(t *testing.T) {
	srv := loginServer(" Admin ")
	defer srv.Close()
	h, sm := newAuthHandler(t, srv)

	rec := httptest.NewRecorder()
	h.HandleLoginSubmit(rec, loginForm("admin", "secret"))

	session := sessionFromRecorder(t, sm, rec)
	if session.Role != rbac.RoleAdmin {
		t.Errorf("Роль должна нормализоваться к %q, получено %q", rbac.RoleAdmin, session.Role)
	}
}

// TestHandleLoginSubmit_BlankFieldsRejectedLocally проверяет, что
// пустые учётные данные отклоняются без обращения к API.
func TestHandleLoginSubmit_BlankFieldsRejectedLocally(t *testing.T) {
	apiCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	h, _ := newAuthHandler(t, srv)

	rec := httptest.NewRecorder()
	h.HandleLoginSubmit(rec, loginForm("  ", "secret"))

	if rec.Code != http.StatusOK {
		t.Errorf("Ожидался повторный показ формы (200), получен %d", rec.Code)
	}
	if apiCalls != 0 {
		t.Errorf("API не должен вызываться при пустых полях, вызовов: %d", apiCalls)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			t.Error("Сессия не должна создаваться при пустых полях")
		}
	}
}

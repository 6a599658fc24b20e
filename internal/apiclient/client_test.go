package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
)

// testLogger — логгер, пишущий в никуда.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient создаёт клиент, направленный на тестовый сервер.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL, "", 5*time.Second, testLogger())
	if err != nil {
		t.Fatalf("Ошибка создания клиента: %v", err)
	}
	return c
}

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("Неожиданный запрос: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("Login не должен передавать Authorization")
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Ошибка декодирования тела login: %v", err)
		}
		if req.Username != "admin" || req.Password != "secret" {
			t.Errorf("Неожиданные учётные данные: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: "token-123",
			TokenType:   "bearer",
			Role:        "admin",
			FullName:    "Nguyễn Văn An",
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	token, err := client.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if token.AccessToken != "token-123" {
		t.Errorf("AccessToken: want %q, got %q", "token-123", token.AccessToken)
	}
	if token.Role != "admin" || token.FullName != "Nguyễn Văn An" {
		t.Errorf("Неожиданный ответ: %+v", token)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Неверное имя пользователя или пароль"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.Login(context.Background(), "admin", "wrong")
	if err == nil {
		t.Fatal("Ожидалась ошибка при 401")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Ожидался *RequestError, получено %T", err)
	}
	if reqErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode: want 401, got %d", reqErr.StatusCode)
	}
	if reqErr.Message != "Неверное имя пользователя или пароль" {
		t.Errorf("Message должен браться из detail, получено %q", reqErr.Message)
	}
	// 401 сопоставляется с ErrAuthExpired
	if !errors.Is(err, ErrAuthExpired) {
		t.Error("401 должен сопоставляться с ErrAuthExpired")
	}
}

func TestListDocuments_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/documents" {
			t.Errorf("Неожиданный путь: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization: want %q, got %q", "Bearer token-1", got)
		}

		q := r.URL.Query()
		if q.Get("class_id") != "10" {
			t.Errorf("class_id: want %q, got %q", "10", q.Get("class_id"))
		}
		if q.Get("type_name") != "lesson" {
			t.Errorf("type_name: want %q, got %q", "lesson", q.Get("type_name"))
		}
		if q.Get("q") != "algebra" {
			t.Errorf("q: want %q, got %q", "algebra", q.Get("q"))
		}
		if q.Get("limit") != "500" {
			t.Errorf("limit по умолчанию должен быть 500, получено %q", q.Get("limit"))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.DocumentListResponse{
			Count: 1,
			Items: []model.DocumentRecord{
				{ID: "d1", Name: "Bài 1", FileType: "pdf", SizeBytes: 1024},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	resp, err := client.ListDocuments(context.Background(), "token-1", model.ListQuery{
		Class:    "10",
		TypeName: "Lesson", // нормализуется к lowercase
		FreeText: "algebra",
	})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Count != 1 || len(resp.Items) != 1 {
		t.Fatalf("Неожиданный ответ: %+v", resp)
	}
	if resp.Items[0].Name != "Bài 1" {
		t.Errorf("Name: want %q, got %q", "Bài 1", resp.Items[0].Name)
	}
}

func TestListObjects_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/minio/files" {
			t.Errorf("Неожиданный путь: %s", r.URL.Path)
		}

		q := r.URL.Query()
		if q.Get("class_id") != "11" || q.Get("type_name") != "topic" {
			t.Errorf("Неожиданные параметры: %v", q)
		}
		if q.Get("recursive") != "true" {
			t.Error("recursive должен быть true")
		}
		// FreeText не попадает в запрос к объектному хранилищу
		if q.Has("q") {
			t.Error("Параметр q не должен передаваться в листинг объектов")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.ObjectListResponse{
			Bucket: "edustore",
			Prefix: "11/topic/",
			Count:  1,
			Items: []model.ObjectRecord{
				{Filename: "chuong1.pdf", ObjectName: "11/topic/chuong1.pdf", SizeBytes: 2048},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	resp, err := client.ListObjects(context.Background(), "token-1", model.ListQuery{
		Class:    "11",
		TypeName: "topic",
		FreeText: "chuong",
	})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Bucket != "edustore" || len(resp.Items) != 1 {
		t.Fatalf("Неожиданный ответ: %+v", resp)
	}
}

func TestGetDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/documents/doc-42" {
			t.Errorf("Неожиданный путь: %s", r.URL.Path)
		}
		if r.URL.Query().Get("type_name") != "lesson" {
			t.Errorf("type_name: want %q, got %q", "lesson", r.URL.Query().Get("type_name"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "doc-42", "name": "Bài học", "lesson_url": "https://cdn/doc-42"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	detail, err := client.GetDocument(context.Background(), "token-1", "doc-42", "lesson")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if detail["name"] != "Bài học" {
		t.Errorf("Неожиданная карточка: %v", detail)
	}
}

func TestUploadFile(t *testing.T) {
	content := bytes.Repeat([]byte("a"), 4096)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/minio/file" {
			t.Errorf("Неожиданный запрос: %s %s", r.Method, r.URL.Path)
		}

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("Ошибка разбора multipart: %v", err)
		}
		if r.FormValue("class_id") != "12" {
			t.Errorf("class_id: want %q, got %q", "12", r.FormValue("class_id"))
		}
		if r.FormValue("type_name") != "chunk" {
			t.Errorf("type_name: want %q, got %q", "chunk", r.FormValue("type_name"))
		}

		var meta map[string]any
		if err := json.Unmarshal([]byte(r.FormValue("metadata")), &meta); err != nil {
			t.Fatalf("metadata должен быть JSON: %v", err)
		}
		if meta["subject"] != "toán" {
			t.Errorf("Неожиданные metadata: %v", meta)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file-часть отсутствует: %v", err)
		}
		defer file.Close()
		if header.Filename != "baitap.pdf" {
			t.Errorf("Filename: want %q, got %q", "baitap.pdf", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if len(data) != len(content) {
			t.Errorf("Размер файла: want %d, got %d", len(content), len(data))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"minio": {"object_name": "12/chunk/baitap.pdf"},
			"mongo": {"collection": "chunks", "document": {"chunk_url": "https://cdn/baitap"}}
		}`))
	}))
	defer srv.Close()

	var lastPercent int
	client := newTestClient(t, srv)
	result, err := client.UploadFile(context.Background(), "token-1", &model.UploadRequest{
		Class:    "12",
		TypeName: "chunk",
		Metadata: map[string]any{"subject": "toán"},
		Filename: "baitap.pdf",
		Size:     int64(len(content)),
		File:     bytes.NewReader(content),
	}, func(percent int) { lastPercent = percent })
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	if result.ObjectName != "12/chunk/baitap.pdf" {
		t.Errorf("ObjectName: want %q, got %q", "12/chunk/baitap.pdf", result.ObjectName)
	}
	if result.DocumentURL != "https://cdn/baitap" {
		t.Errorf("DocumentURL должен браться из chunk_url, получено %q", result.DocumentURL)
	}
	if lastPercent != 100 {
		t.Errorf("Прогресс должен дойти до 100, получено %d", lastPercent)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Неожиданный путь: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Неожиданная ошибка: %v", err)
	}

	// Недоступный сервер
	srv.Close()
	if err := client.Ping(context.Background()); err == nil {
		t.Error("Ожидалась ошибка для недоступного API")
	}
}

func TestRequestError_MessagePriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail приоритетнее message", `{"detail": "из detail", "message": "из message"}`, "из detail"},
		{"message при пустом detail", `{"message": "из message"}`, "из message"},
		{"сырое тело для не-JSON", "plain text error", "plain text error"},
		{"HTTP-статус для пустого тела", "", "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newRequestError(http.StatusInternalServerError, []byte(tt.body))
			if err.Message != tt.want {
				t.Errorf("Message: want %q, got %q", tt.want, err.Message)
			}
		})
	}
}

func TestRequestError_OnlyUnauthorizedMatchesAuthExpired(t *testing.T) {
	forbidden := &RequestError{StatusCode: http.StatusForbidden, Message: "forbidden"}
	if errors.Is(forbidden, ErrAuthExpired) {
		t.Error("403 не должен сопоставляться с ErrAuthExpired")
	}
}

func TestResolveDocumentURL(t *testing.T) {
	tests := []struct {
		name     string
		doc      map[string]any
		typeName string
		want     string
	}{
		{
			"типизированный URL приоритетнее",
			map[string]any{"lesson_url": "https://cdn/typed", "url": "https://cdn/generic"},
			"lesson",
			"https://cdn/typed",
		},
		{
			"generic url как fallback",
			map[string]any{"url": "https://cdn/generic"},
			"lesson",
			"https://cdn/generic",
		},
		{
			"без URL",
			map[string]any{"name": "doc"},
			"lesson",
			"",
		},
		{
			"nil-документ",
			nil,
			"lesson",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDocumentURL(tt.doc, tt.typeName); got != tt.want {
				t.Errorf("ResolveDocumentURL = %q, ожидалось %q", got, tt.want)
			}
		})
	}
}

func TestDo_NonJSONContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>страница входа прокси</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.ListDocuments(context.Background(), "token", model.ListQuery{Class: "10", TypeName: "lesson"})
	if err == nil {
		t.Fatal("Ожидалась ошибка для не-JSON ответа")
	}
	if !strings.Contains(err.Error(), "Content-Type") {
		t.Errorf("Ошибка должна упоминать Content-Type: %v", err)
	}
}

// Пакет apiclient — HTTP-клиент к портальному API Edustore.
// Единственная граница этого приложения с внешним миром: аутентификация,
// загрузка файлов (multipart с отчётом о прогрессе), листинги документов
// и объектов. Поддерживает TLS с кастомным CA (AU_API_CA_CERT_PATH).
// Без повторов, без кэширования — за свежесть данных отвечает вызывающий слой.
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
)

// TokenResponse — ответ портального API на POST /auth/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
}

// loginRequest — тело запроса аутентификации.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client — HTTP-клиент портального API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент портального API.
// baseURL — базовый URL API (trailing slash убирается).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// timeout — таймаут одного запроса (загрузки больших файлов учитывают его же).
func New(baseURL, caCertPath string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата портального API: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат портального API добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "api_client")),
	}, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// Login аутентифицирует администратора.
// POST /auth/login — публичный endpoint, заголовок Authorization не передаётся.
// Пустые username/password отклоняет сервер; клиент их не предвалидирует —
// это обязанность вызывающего слоя (см. service.Validate* и UI-обработчики).
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("создание запроса login: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var token TokenResponse
	if err := c.do(req, &token); err != nil {
		return nil, err
	}

	return &token, nil
}

// ListObjects запрашивает листинг объектного хранилища.
// GET /admin/minio/files?class_id=&type_name=&recursive=&limit= — требует Bearer.
// Свободный текст запроса (FreeText) этим endpoint'ом не поддерживается
// и фильтруется локально вызывающим слоем.
func (c *Client) ListObjects(ctx context.Context, token string, q model.ListQuery) (*model.ObjectListResponse, error) {
	q = q.Normalize()

	params := url.Values{
		"class_id":  {q.Class},
		"type_name": {q.TypeName},
		"recursive": {"true"},
		"limit":     {fmt.Sprintf("%d", q.Limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/admin/minio/files?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("создание запроса ListObjects: %w", err)
	}
	setBearer(req, token)

	var resp model.ObjectListResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// ListDocuments запрашивает листинг документов из метаданных.
// GET /admin/documents?class_id=&type_name=&q=&limit= — требует Bearer.
func (c *Client) ListDocuments(ctx context.Context, token string, q model.ListQuery) (*model.DocumentListResponse, error) {
	q = q.Normalize()

	params := url.Values{
		"class_id":  {q.Class},
		"type_name": {q.TypeName},
		"q":         {q.FreeText},
		"limit":     {fmt.Sprintf("%d", q.Limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/admin/documents?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("создание запроса ListDocuments: %w", err)
	}
	setBearer(req, token)

	var resp model.DocumentListResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetDocument запрашивает детальную карточку документа.
// GET /admin/documents/{id}?type_name= — требует Bearer.
// Форма ответа зависит от типа документа, поэтому возвращается
// как есть (map) и раскладывается на странице детального просмотра.
func (c *Client) GetDocument(ctx context.Context, token, id, typeName string) (map[string]any, error) {
	reqURL := c.baseURL + "/admin/documents/" + url.PathEscape(id)
	if typeName != "" {
		reqURL += "?type_name=" + url.QueryEscape(typeName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("создание запроса GetDocument: %w", err)
	}
	setBearer(req, token)

	var detail map[string]any
	if err := c.do(req, &detail); err != nil {
		return nil, err
	}

	return detail, nil
}

// uploadResponse — ответ POST /admin/minio/file.
// Содержит информацию об объекте и echo-документ из метаданных.
type uploadResponse struct {
	Minio struct {
		ObjectName string `json:"object_name"`
	} `json:"minio"`
	Mongo struct {
		Collection string         `json:"collection"`
		Document   map[string]any `json:"document"`
	} `json:"mongo"`
}

// UploadFile загружает файл в портальный API.
// POST /admin/minio/file — multipart с полями class_id, type_name,
// metadata (JSON-строка, опционально) и file. Требует Bearer.
// onProgress (может быть nil) получает прогресс передачи тела 0..100;
// отчёт носит информационный характер и может пропускать значения.
// Валидация UploadRequest выполняется до вызова (service.ValidateUpload).
func (c *Client) UploadFile(ctx context.Context, token string, upload *model.UploadRequest, onProgress func(percent int)) (*model.UploadResult, error) {
	// Собираем multipart-тело в память: прогресс считается по байтам,
	// прочитанным транспортом из готового буфера.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("class_id", upload.Class); err != nil {
		return nil, fmt.Errorf("запись поля class_id: %w", err)
	}
	if err := mw.WriteField("type_name", upload.TypeName); err != nil {
		return nil, fmt.Errorf("запись поля type_name: %w", err)
	}

	if upload.Metadata != nil {
		metaJSON, err := json.Marshal(upload.Metadata)
		if err != nil {
			return nil, fmt.Errorf("сериализация metadata: %w", err)
		}
		if err := mw.WriteField("metadata", string(metaJSON)); err != nil {
			return nil, fmt.Errorf("запись поля metadata: %w", err)
		}
	}

	part, err := mw.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("создание file-части: %w", err)
	}
	if _, err := io.Copy(part, upload.File); err != nil {
		return nil, fmt.Errorf("копирование содержимого файла: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("завершение multipart: %w", err)
	}

	// Оборачиваем буфер в reader с подсчётом прогресса.
	body := newProgressReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), onProgress)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/minio/file", body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса UploadFile: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = int64(buf.Len())
	setBearer(req, token)

	var resp uploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return &model.UploadResult{
		ObjectName:  resp.Minio.ObjectName,
		DocumentURL: ResolveDocumentURL(resp.Mongo.Document, upload.TypeName),
	}, nil
}

// Ping проверяет доступность портального API (readiness probe).
// Достаточно любого HTTP-ответа от базового URL.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("создание запроса Ping: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("портальный API недоступен: %w", err)
	}
	resp.Body.Close()
	return nil
}

// ResolveDocumentURL выбирает URL документа из echo-документа ответа.
// Фиксированный приоритет: {type}_url → url. Других ключей не пробуем —
// форма ответа задокументирована именно так.
func ResolveDocumentURL(doc map[string]any, typeName string) string {
	if doc == nil {
		return ""
	}
	if u, ok := doc[typeName+"_url"].(string); ok && u != "" {
		return u
	}
	if u, ok := doc["url"].(string); ok && u != "" {
		return u
	}
	return ""
}

// setBearer добавляет Bearer-токен, если он есть.
// При пустом токене заголовок не ставится: решение об отказе
// принимает сервер, локально запрос не блокируется.
func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do выполняет запрос и декодирует ответ в out.
// Форма ответа определяется заголовком Content-Type: JSON декодируется,
// всё остальное трактуется как текст (и для не-2xx попадает в текст ошибки).
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("запрос %s %s: %v", req.Method, req.URL.Path, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("чтение ответа: %v", err)}
	}

	c.logger.Debug("Запрос к портальному API выполнен",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newRequestError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("неожиданный Content-Type ответа: %q", contentType),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &RequestError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("декодирование ответа: %v", err)}
	}

	return nil
}

// errors.go — контракт ошибок клиента портального API.
// Любой не-2xx ответ превращается в *RequestError; текст берётся из
// структурированного поля detail/message, иначе из сырого тела,
// иначе генерируется строка "HTTP {status}".
package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrAuthExpired — признак истёкшей/отозванной авторизации (401 на
// авторизованном запросе). Обработчики по этой ошибке принудительно
// завершают сессию и перенаправляют на страницу входа.
var ErrAuthExpired = errors.New("авторизация истекла")

// RequestError — ошибка транспортного уровня или не-2xx ответ портального API.
type RequestError struct {
	// StatusCode — HTTP статус ответа (0 для сетевых ошибок).
	StatusCode int
	// Message — человекочитаемый текст ошибки.
	Message string
}

// Error реализует интерфейс error.
func (e *RequestError) Error() string {
	return e.Message
}

// Is сопоставляет 401 с ErrAuthExpired, чтобы вызывающий код мог
// написать errors.Is(err, ErrAuthExpired) без знания о статус-кодах.
func (e *RequestError) Is(target error) bool {
	return target == ErrAuthExpired && e.StatusCode == http.StatusUnauthorized
}

// errorDetail — структурированное тело ошибки портального API.
// FastAPI возвращает {"detail": "..."}, некоторые обработчики — {"message": "..."}.
type errorDetail struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// newRequestError строит RequestError из статуса и тела ответа.
// Приоритет текста: detail → message → сырое тело → "HTTP {status}".
func newRequestError(statusCode int, body []byte) *RequestError {
	msg := extractErrorMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &RequestError{StatusCode: statusCode, Message: msg}
}

// extractErrorMessage извлекает текст ошибки из тела ответа.
func extractErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var detail errorDetail
	if err := json.Unmarshal(body, &detail); err == nil {
		if detail.Detail != "" {
			return detail.Detail
		}
		if detail.Message != "" {
			return detail.Message
		}
	}

	return trimmed
}

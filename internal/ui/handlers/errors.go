// errors.go — JSON-ответы об ошибках для fetch-endpoints загрузки.
package handlers

import (
	"encoding/json"
	"net/http"
)

// errorResponse — тело JSON-ответа об ошибке.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON сериализует payload в ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeJSONError пишет JSON-ответ об ошибке.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

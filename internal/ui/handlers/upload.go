// upload.go — страница и endpoints загрузки документа.
// GET /upload — страница с формой; POST /upload — приём multipart и запуск
// фоновой загрузки (JSON-ответ для fetch); GET /upload/progress/{id} —
// опрос состояния.
package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
	"github.com/arturkryukov/edustore/admin-ui/internal/service"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/auth"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/pages"
)

// maxUploadMemory — порог буферизации multipart-формы в памяти (32 MiB);
// превышение уходит во временные файлы.
const maxUploadMemory = 32 << 20

// UploadHandler — обработчики загрузки документов.
type UploadHandler struct {
	uploads        *service.UploadService
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewUploadHandler создаёт новый UploadHandler.
func NewUploadHandler(
	uploads *service.UploadService,
	sessionManager *auth.SessionManager,
	logger *slog.Logger,
) *UploadHandler {
	return &UploadHandler{
		uploads:        uploads,
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui.upload")),
	}
}

// HandlePage — GET /upload
// Страница с формой загрузки.
func (h *UploadHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	session := sessionOrRedirect(w, r)
	if session == nil {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Upload(pages.UploadData{FullName: session.FullName}).Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга страницы загрузки",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// HandleSubmit — POST /upload
// Принимает multipart-форму, валидирует локально и запускает фоновую
// загрузку. Ошибка валидации — 400 без обращения к API.
// Ответ: {"id": "..."} для опроса прогресса.
func (h *UploadHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	session := sessionOrRedirect(w, r)
	if session == nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "некорректная multipart-форма")
		return
	}

	req := &model.UploadRequest{
		Class:    r.FormValue("class_id"),
		TypeName: r.FormValue("type_name"),
	}

	// Содержимое копируется в память: временные файлы multipart-формы
	// не переживают возврат обработчика, а передача идёт в фоне.
	file, header, err := r.FormFile("file")
	if err == nil {
		data, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			writeJSONError(w, http.StatusBadRequest, "не удалось прочитать файл")
			return
		}
		req.File = bytes.NewReader(data)
		req.Filename = header.Filename
		req.Size = int64(len(data))
	}

	id, err := h.uploads.Start(session.AccessToken, req, r.FormValue("metadata"))
	if err != nil {
		h.logger.Warn("Загрузка отклонена валидацией",
			slog.String("error", err.Error()),
			slog.String("filename", req.Filename),
		)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// HandleProgress — GET /upload/progress/{id}
// Возвращает снимок состояния загрузки в JSON.
// Если фоновая загрузка упала на 401 от портального API — сессия
// завершается, ответ 401 заставляет страницу уйти на /login.
func (h *UploadHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	session := sessionOrRedirect(w, r)
	if session == nil {
		return
	}

	id := chi.URLParam(r, "id")
	state, err := h.uploads.Progress(id)
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if state.AuthExpired {
		h.logger.Info("Авторизация истекла во время загрузки, сессия завершена",
			slog.String("upload_id", id),
		)
		h.sessionManager.ClearSessionCookie(w)
		writeJSONError(w, http.StatusUnauthorized, state.Error)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

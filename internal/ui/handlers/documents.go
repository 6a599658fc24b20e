// documents.go — страницы реестра документов: список и детальный просмотр.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/arturkryukov/edustore/admin-ui/internal/apiclient"
	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
	"github.com/arturkryukov/edustore/admin-ui/internal/service"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/auth"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/pages"
)

// DocumentsHandler — обработчики страниц реестра документов.
type DocumentsHandler struct {
	listing        *service.ListingService
	client         *apiclient.Client
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewDocumentsHandler создаёт новый DocumentsHandler.
func NewDocumentsHandler(
	listing *service.ListingService,
	client *apiclient.Client,
	sessionManager *auth.SessionManager,
	logger *slog.Logger,
) *DocumentsHandler {
	return &DocumentsHandler{
		listing:        listing,
		client:         client,
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui.documents")),
	}
}

// parseListQuery извлекает параметры листинга из query string.
// Отсутствующие параметры получают значения по умолчанию:
// класс 10, тип lesson.
func parseListQuery(r *http.Request) model.ListQuery {
	q := model.ListQuery{
		Class:    r.URL.Query().Get("class_id"),
		TypeName: r.URL.Query().Get("type_name"),
		FreeText: r.URL.Query().Get("q"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			q.Limit = limit
		}
	}
	if !model.IsAllowedClass(q.Class) {
		q.Class = model.AllowedClasses[0]
	}
	if !model.IsAllowedType(q.TypeName) {
		q.TypeName = "lesson"
	}
	return q.Normalize()
}

// HandleList — GET /documents
// Список документов с фильтрами по классу, типу и подстроке.
// При ошибке загрузки показывается пустой набор с сообщением —
// прошлый успешный набор не сохраняется.
func (h *DocumentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session := sessionOrRedirect(w, r)
	if session == nil {
		return
	}

	q := parseListQuery(r)
	data := pages.DocumentsData{
		FullName: session.FullName,
		Query:    q,
	}

	resp, err := h.listing.ListDocuments(r.Context(), session.AccessToken, q)
	switch {
	case errors.Is(err, apiclient.ErrAuthExpired):
		expireSession(h.sessionManager, w, r)
		return
	case err != nil:
		h.logger.Error("Ошибка загрузки списка документов",
			slog.String("error", err.Error()),
			slog.String("class", q.Class),
			slog.String("type", q.TypeName),
		)
		data.ErrorKey = "documents.error.load"
	default:
		data.Items = resp.Items
	}

	h.render(w, r, pages.Documents(data))
}

// HandleDetail — GET /documents/{id}
// Детальный просмотр документа со ссылкой на содержимое.
func (h *DocumentsHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	session := sessionOrRedirect(w, r)
	if session == nil {
		return
	}

	id := chi.URLParam(r, "id")
	typeName := r.URL.Query().Get("type_name")

	data := pages.DetailData{FullName: session.FullName}

	doc, err := h.client.GetDocument(r.Context(), session.AccessToken, id, typeName)
	var reqErr *apiclient.RequestError
	switch {
	case errors.Is(err, apiclient.ErrAuthExpired):
		expireSession(h.sessionManager, w, r)
		return
	case errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound:
		data.NotFound = true
	case err != nil:
		h.logger.Error("Ошибка загрузки документа",
			slog.String("error", err.Error()),
			slog.String("id", id),
		)
		data.NotFound = true
	default:
		data.Fields = doc
		data.DocumentURL = apiclient.ResolveDocumentURL(doc, typeName)
	}

	h.render(w, r, pages.Detail(data))
}

// render рендерит страницу.
func (h *DocumentsHandler) render(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга страницы",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

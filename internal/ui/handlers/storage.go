// storage.go — страница объектов хранилища.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/arturkryukov/edustore/admin-ui/internal/apiclient"
	"github.com/arturkryukov/edustore/admin-ui/internal/service"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/auth"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/pages"
)

// StorageHandler — обработчик страницы объектов хранилища.
type StorageHandler struct {
	listing        *service.ListingService
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewStorageHandler создаёт новый StorageHandler.
func NewStorageHandler(
	listing *service.ListingService,
	sessionManager *auth.SessionManager,
	logger *slog.Logger,
) *StorageHandler {
	return &StorageHandler{
		listing:        listing,
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui.storage")),
	}
}

// HandleList — GET /storage
// Список объектов хранилища с теми же фильтрами, что и у документов.
func (h *StorageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session := sessionOrRedirect(w, r)
	if session == nil {
		return
	}

	q := parseListQuery(r)
	data := pages.StorageData{
		FullName: session.FullName,
		Query:    q,
	}

	resp, err := h.listing.ListObjects(r.Context(), session.AccessToken, q)
	switch {
	case errors.Is(err, apiclient.ErrAuthExpired):
		expireSession(h.sessionManager, w, r)
		return
	case err != nil:
		h.logger.Error("Ошибка загрузки списка объектов",
			slog.String("error", err.Error()),
			slog.String("class", q.Class),
			slog.String("type", q.TypeName),
		)
		data.ErrorKey = "storage.error.load"
	default:
		data.Bucket = resp.Bucket
		data.Prefix = resp.Prefix
		data.Items = resp.Items
	}

	h.render(w, r, pages.Storage(data))
}

// render рендерит страницу.
func (h *StorageHandler) render(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга страницы",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// storage.go — страница объектов хранилища.
package pages

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/i18n"
)

// StorageData — данные страницы объектов хранилища.
type StorageData struct {
	FullName string
	Query    model.ListQuery
	Bucket   string
	Prefix   string
	Items    []model.ObjectRecord
	// ErrorKey — ключ i18n сообщения об ошибке загрузки (пусто — ошибки нет).
	ErrorKey string
}

// Storage рендерит страницу со списком объектов хранилища.
func Storage(data StorageData) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n",
			html.EscapeString(i18n.T(ctx, "storage.title"))); err != nil {
			return err
		}

		if err := renderListFilter(ctx, w, "/storage", data.Query, true); err != nil {
			return err
		}

		if data.ErrorKey != "" {
			_, err := fmt.Fprintf(w, `<div class="alert alert-error">%s</div>`+"\n",
				html.EscapeString(i18n.T(ctx, data.ErrorKey)))
			return err
		}

		if len(data.Items) == 0 {
			_, err := fmt.Fprintf(w, `<p class="empty">%s</p>`+"\n",
				html.EscapeString(i18n.T(ctx, "storage.empty")))
			return err
		}

		if data.Bucket != "" {
			if _, err := fmt.Fprintf(w, `<p class="count">%s/%s</p>`+"\n",
				html.EscapeString(data.Bucket), html.EscapeString(data.Prefix)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, `<table class="table">
<thead><tr><th>%s</th><th>%s</th><th>%s</th><th>%s</th></tr></thead>
<tbody>
`,
			html.EscapeString(i18n.T(ctx, "storage.column.filename")),
			html.EscapeString(i18n.T(ctx, "storage.column.object")),
			html.EscapeString(i18n.T(ctx, "storage.column.size")),
			html.EscapeString(i18n.T(ctx, "storage.column.modified")),
		); err != nil {
			return err
		}

		for _, obj := range data.Items {
			name := html.EscapeString(obj.Filename)
			if obj.PublicURL != "" {
				name = fmt.Sprintf(`<a href=%q target="_blank" rel="noopener">%s</a>`,
					obj.PublicURL, name)
			}
			if _, err := fmt.Fprintf(w, `<tr>
<td>%s</td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
</tr>
`,
				name,
				html.EscapeString(obj.ObjectName),
				formatSize(obj.SizeBytes),
				html.EscapeString(obj.LastModified),
			); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</tbody>\n</table>\n")
		return err
	})

	return Layout(LayoutData{Title: "storage.title", FullName: data.FullName, ActiveNav: "storage"}, content)
}

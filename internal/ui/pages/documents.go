// documents.go — страница реестра документов.
package pages

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
	"github.com/arturkryukov/edustore/admin-ui/internal/ui/i18n"
)

// DocumentsData — данные страницы реестра документов.
type DocumentsData struct {
	FullName string
	Query    model.ListQuery
	// Items — отфильтрованный набор документов.
	Items []model.DocumentRecord
	// ErrorKey — ключ i18n сообщения об ошибке загрузки (пусто — ошибки нет).
	ErrorKey string
}

// Documents рендерит страницу со списком документов и фильтрами.
func Documents(data DocumentsData) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n",
			html.EscapeString(i18n.T(ctx, "documents.title"))); err != nil {
			return err
		}

		if err := renderListFilter(ctx, w, "/documents", data.Query, true); err != nil {
			return err
		}

		if data.ErrorKey != "" {
			_, err := fmt.Fprintf(w, `<div class="alert alert-error">%s</div>`+"\n",
				html.EscapeString(i18n.T(ctx, data.ErrorKey)))
			return err
		}

		if len(data.Items) == 0 {
			_, err := fmt.Fprintf(w, `<p class="empty">%s</p>`+"\n",
				html.EscapeString(i18n.T(ctx, "documents.empty")))
			return err
		}

		if _, err := fmt.Fprintf(w, `<p class="count">%s</p>
<table class="table">
<thead><tr><th>%s</th><th>%s</th><th>%s</th><th>%s</th></tr></thead>
<tbody>
`,
			html.EscapeString(i18n.Tf(ctx, "documents.count", len(data.Items))),
			html.EscapeString(i18n.T(ctx, "documents.column.name")),
			html.EscapeString(i18n.T(ctx, "documents.column.type")),
			html.EscapeString(i18n.T(ctx, "documents.column.size")),
			html.EscapeString(i18n.T(ctx, "documents.column.updated")),
		); err != nil {
			return err
		}

		for _, doc := range data.Items {
			detailURL := fmt.Sprintf("/documents/%s?type_name=%s",
				url.PathEscape(doc.ID), url.QueryEscape(doc.TypeName))
			if _, err := fmt.Fprintf(w, `<tr>
<td><a href=%q>%s</a></td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
</tr>
`,
				detailURL,
				html.EscapeString(doc.Name),
				html.EscapeString(i18n.T(ctx, "type."+doc.TypeName)),
				formatSize(doc.SizeBytes),
				html.EscapeString(doc.LastUpdated),
			); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</tbody>\n</table>\n")
		return err
	})

	return Layout(LayoutData{Title: "documents.title", FullName: data.FullName, ActiveNav: "documents"}, content)
}

// renderListFilter рендерит форму фильтров списка: класс, тип и,
// опционально, свободный текстовый поиск.
func renderListFilter(ctx context.Context, w io.Writer, action string, q model.ListQuery, withSearch bool) error {
	if _, err := fmt.Fprintf(w, `<form method="get" action=%q class="filter-form">
<label>%s</label>
<select name="class_id">
`, action, html.EscapeString(i18n.T(ctx, "documents.filter.class"))); err != nil {
		return err
	}

	for _, class := range model.AllowedClasses {
		selected := ""
		if class == q.Class {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value=%q%s>%s</option>`+"\n", class, selected, class); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, `</select>
<label>%s</label>
<select name="type_name">
`, html.EscapeString(i18n.T(ctx, "documents.filter.type"))); err != nil {
		return err
	}

	for _, typeName := range model.AllowedTypes {
		selected := ""
		if typeName == q.TypeName {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value=%q%s>%s</option>`+"\n",
			typeName, selected, html.EscapeString(i18n.T(ctx, "type."+typeName))); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "</select>\n"); err != nil {
		return err
	}

	if withSearch {
		if _, err := fmt.Fprintf(w, `<input type="text" name="q" value=%q placeholder=%q>`+"\n",
			html.EscapeString(q.FreeText),
			html.EscapeString(i18n.T(ctx, "documents.filter.search"))); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, `<button type="submit" class="btn">%s</button>
</form>
`, html.EscapeString(i18n.T(ctx, "documents.filter.apply")))
	return err
}

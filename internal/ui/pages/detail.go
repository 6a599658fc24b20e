// detail.go — страница детального просмотра документа.
package pages

import (
	"context"
	"fmt"
	"html"
	"io"
	"sort"

	"github.com/a-h/templ"

	"github.com/arturkryukov/edustore/admin-ui/internal/ui/i18n"
)

// DetailData — данные страницы детального просмотра документа.
type DetailData struct {
	FullName string
	// Fields — поля документа в произвольном виде (как вернул API).
	Fields map[string]any
	// DocumentURL — разрешённая ссылка на содержимое документа.
	DocumentURL string
	// NotFound — документ не найден.
	NotFound bool
}

// Detail рендерит страницу детального просмотра документа.
// Поля показываются отсортированными по имени для стабильного вывода.
func Detail(data DetailData) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n",
			html.EscapeString(i18n.T(ctx, "detail.title"))); err != nil {
			return err
		}

		if data.NotFound {
			_, err := fmt.Fprintf(w, `<div class="alert alert-error">%s</div>
<a href="/documents" class="btn">%s</a>
`,
				html.EscapeString(i18n.T(ctx, "detail.notfound")),
				html.EscapeString(i18n.T(ctx, "detail.back")))
			return err
		}

		if data.DocumentURL != "" {
			if _, err := fmt.Fprintf(w, `<p><a href=%q target="_blank" rel="noopener" class="btn btn-primary">%s</a></p>`+"\n",
				data.DocumentURL, html.EscapeString(i18n.T(ctx, "detail.open"))); err != nil {
				return err
			}
		}

		keys := make([]string, 0, len(data.Fields))
		for k := range data.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		if _, err := io.WriteString(w, `<table class="table detail-table">`+"\n<tbody>\n"); err != nil {
			return err
		}
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "<tr><th>%s</th><td>%s</td></tr>\n",
				html.EscapeString(k),
				html.EscapeString(fmt.Sprintf("%v", data.Fields[k]))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tbody>\n</table>\n"); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w, `<a href="/documents" class="btn">%s</a>`+"\n",
			html.EscapeString(i18n.T(ctx, "detail.back")))
		return err
	})

	return Layout(LayoutData{Title: "detail.title", FullName: data.FullName, ActiveNav: "documents"}, content)
}

// upload.go — страница загрузки документа.
// Форма отправляется через fetch из /static/js/upload.js: POST /upload
// возвращает JSON с идентификатором, прогресс опрашивается по
// GET /upload/progress/{id}.
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

// UploadData — данные страницы загрузки.
type UploadData struct {
	FullName string
}

// Upload рендерит страницу с формой загрузки документа.
func Upload(data UploadData) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<h1>%s</h1>
<form id="upload-form" class="upload-form" enctype="multipart/form-data">
<label>%s</label>
<select name="class_id">
`,
			html.EscapeString(i18n.T(ctx, "upload.title")),
			html.EscapeString(i18n.T(ctx, "upload.class")),
		); err != nil {
			return err
		}

		for _, class := range model.AllowedClasses {
			if _, err := fmt.Fprintf(w, `<option value=%q>%s</option>`+"\n", class, class); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, `</select>
<label>%s</label>
<select name="type_name">
`, html.EscapeString(i18n.T(ctx, "upload.type"))); err != nil {
			return err
		}

		for _, typeName := range model.AllowedTypes {
			if _, err := fmt.Fprintf(w, `<option value=%q>%s</option>`+"\n",
				typeName, html.EscapeString(i18n.T(ctx, "type."+typeName))); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w, `</select>
<label>%s</label>
<textarea name="metadata" rows="4" placeholder="{}"></textarea>
<label>%s</label>
<input type="file" name="file" required>
<button type="submit" class="btn btn-primary">%s</button>
</form>
<div id="upload-status" class="upload-status" hidden>
<progress id="upload-progress" max="100" value="0"></progress>
<span id="upload-message"></span>
</div>
<script>
window.uploadMessages = {
  progress: %q,
  done: %q,
  error: %q
};
</script>
<script src="/static/js/upload.js"></script>
`,
			html.EscapeString(i18n.T(ctx, "upload.metadata")),
			html.EscapeString(i18n.T(ctx, "upload.file")),
			html.EscapeString(i18n.T(ctx, "upload.submit")),
			i18n.T(ctx, "upload.progress"),
			i18n.T(ctx, "upload.done"),
			i18n.T(ctx, "upload.error"),
		)
		return err
	})

	return Layout(LayoutData{Title: "upload.title", FullName: data.FullName, ActiveNav: "upload"}, content)
}

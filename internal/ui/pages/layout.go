// Пакет pages — HTML-страницы Admin UI.
// Страницы реализуют интерфейс templ.Component и рендерятся серверно.
// Динамические значения экранируются через html.EscapeString.
package pages

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/arturkryukov/edustore/admin-ui/internal/ui/i18n"
)

// LayoutData — общие данные для каркаса страницы.
type LayoutData struct {
	// Title — ключ i18n для заголовка страницы.
	Title string
	// FullName — отображаемое имя пользователя (пусто на /login).
	FullName string
	// ActiveNav — активный пункт навигации: documents, storage, upload.
	ActiveNav string
}

// Layout оборачивает содержимое страницы в общий каркас:
// шапка с навигацией, переключатель языка, подвал.
func Layout(data LayoutData, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := i18n.LangFromContext(ctx)

		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang=%q>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s — %s</title>
<link rel="stylesheet" href="/static/css/app.css">
</head>
<body>
`, lang, html.EscapeString(i18n.T(ctx, data.Title)), html.EscapeString(i18n.T(ctx, "app.title"))); err != nil {
			return err
		}

		if err := renderHeader(ctx, w, data); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<main class="container">`+"\n"); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</main>\n</body>\n</html>\n"); err != nil {
			return err
		}
		return nil
	})
}

// renderHeader рендерит шапку с навигацией.
// На странице входа (FullName пуст) навигация не показывается.
func renderHeader(ctx context.Context, w io.Writer, data LayoutData) error {
	if _, err := fmt.Fprintf(w, `<header class="header">
<div class="header-brand">%s</div>
`, html.EscapeString(i18n.T(ctx, "app.title"))); err != nil {
		return err
	}

	if data.FullName != "" {
		if err := renderNav(ctx, w, data.ActiveNav); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<div class="header-user">
<span>%s</span>
<form method="post" action="/logout" class="inline-form">
<button type="submit" class="btn-link">%s</button>
</form>
</div>
`, html.EscapeString(data.FullName), html.EscapeString(i18n.T(ctx, "nav.logout"))); err != nil {
			return err
		}
	}

	if err := renderLangSwitch(ctx, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</header>\n")
	return err
}

// renderNav рендерит пункты навигации, помечая активный.
func renderNav(ctx context.Context, w io.Writer, active string) error {
	items := []struct {
		href string
		key  string
		id   string
	}{
		{"/documents", "nav.documents", "documents"},
		{"/storage", "nav.storage", "storage"},
		{"/upload", "nav.upload", "upload"},
	}

	if _, err := io.WriteString(w, `<nav class="header-nav">`+"\n"); err != nil {
		return err
	}
	for _, item := range items {
		class := "nav-link"
		if item.id == active {
			class = "nav-link active"
		}
		if _, err := fmt.Fprintf(w, `<a href=%q class=%q>%s</a>`+"\n",
			item.href, class, html.EscapeString(i18n.T(ctx, item.key))); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</nav>\n")
	return err
}

// renderLangSwitch рендерит переключатель языка (en/vi).
func renderLangSwitch(ctx context.Context, w io.Writer) error {
	current := i18n.LangFromContext(ctx)
	if _, err := io.WriteString(w, `<div class="lang-switch">`+"\n"); err != nil {
		return err
	}
	for _, lang := range []string{"en", "vi"} {
		class := "lang-link"
		if lang == current {
			class = "lang-link active"
		}
		if _, err := fmt.Fprintf(w, `<a href="/set-language?lang=%s" class=%q>%s</a>`+"\n",
			lang, class, lang); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}

// formatSize форматирует размер файла в человекочитаемый вид.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// login.go — страница входа.
package pages

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/arturkryukov/edustore/admin-ui/internal/ui/i18n"
)

// LoginData — данные страницы входа.
type LoginData struct {
	// ErrorKey — ключ i18n сообщения об ошибке (пусто — ошибки нет).
	ErrorKey string
	// Username — введённое имя для повторного показа после ошибки.
	Username string
}

// Login рендерит страницу входа с формой username/password.
func Login(data LoginData) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="login-box">
<h1>%s</h1>
`, html.EscapeString(i18n.T(ctx, "login.title"))); err != nil {
			return err
		}

		if data.ErrorKey != "" {
			if _, err := fmt.Fprintf(w, `<div class="alert alert-error">%s</div>
`, html.EscapeString(i18n.T(ctx, data.ErrorKey))); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w, `<form method="post" action="/login" class="login-form">
<label for="username">%s</label>
<input type="text" id="username" name="username" value=%q required autofocus>
<label for="password">%s</label>
<input type="password" id="password" name="password" required>
<button type="submit" class="btn btn-primary">%s</button>
</form>
</section>
`,
			html.EscapeString(i18n.T(ctx, "login.username")),
			html.EscapeString(data.Username),
			html.EscapeString(i18n.T(ctx, "login.password")),
			html.EscapeString(i18n.T(ctx, "login.submit")),
		)
		return err
	})

	return Layout(LayoutData{Title: "login.title"}, content)
}

package html

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

func RenderLayout(title, body string) string {
	return fmt.Sprintf("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>%s</title><link rel=\"stylesheet\" href=\"/assets/app.css\"></head><body>%s</body></html>", templ.EscapeString(title), body)
}

// Layout wraps body in the document shell shared by every page.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		inner, err := templ.ToGoHTML(ctx, body)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, RenderLayout(title, string(inner)))
		return err
	})
}

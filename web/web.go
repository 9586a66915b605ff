// Package web embeds the page templates and static assets served by the shell.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"gepay-web/internal/models"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"stars": func(n int) []struct{} { return make([]struct{}, n) },
	"statusClass": func(s models.TransactionStatus) string {
		switch s {
		case models.TransactionStatusCompleted:
			return "badge-success"
		case models.TransactionStatusFailed:
			return "badge-error"
		default:
			return "badge-pending"
		}
	},
	"active": func(current, tab string) string {
		if current == tab {
			return "active"
		}
		return ""
	},
}

// Templates parses every page template into one set. Pages are addressed by
// their defined name, e.g. "home" or "profile".
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// Static serves the embedded assets under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

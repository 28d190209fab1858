package uistatic

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed all:app
var distFS embed.FS

var indexTemplate = template.Must(template.ParseFS(distFS, "app/index.html"))

type indexData struct {
	Suggestions []string
}

// Handler serves the query console. The index page lists suggestions;
// every other path is looked up as a static asset and falls back to the
// index.
func Handler(suggestions []string) http.Handler {
	sub, err := fs.Sub(distFS, "app")
	if err != nil {
		return http.NotFoundHandler()
	}
	fileServer := http.FileServer(http.FS(sub))

	var page bytes.Buffer
	if err := indexTemplate.Execute(&page, indexData{Suggestions: suggestions}); err != nil {
		return http.NotFoundHandler()
	}
	rendered := page.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleanPath := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		if cleanPath != "." && cleanPath != "" && cleanPath != "index.html" {
			if _, err := fs.Stat(sub, cleanPath); err == nil {
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(rendered)
	})
}

package web

import (
	"embed"
	"net/http"
)

// staticFiles holds the scripts the pages load from /static.
//
//go:embed static
var staticFiles embed.FS

// staticHandler serves /static/* from the embedded files.
func staticHandler() http.Handler {
	fs := http.FileServer(http.FS(staticFiles))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fs.ServeHTTP(w, r)
	})
}

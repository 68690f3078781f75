package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SPA serves the built frontend: existing files as-is, every other path as
// index.html so client-side routes resolve. Unknown /api/ paths stay 404 JSON.
func (a *API) SPA(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	index := filepath.Join(a.staticDir, "index.html")
	if a.staticDir == "" || !isFile(index) {
		writeDetail(w, http.StatusNotFound, "Frontend not built")
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if clean != "/" {
		candidate := filepath.Join(a.staticDir, filepath.FromSlash(clean))
		if isFile(candidate) {
			http.ServeFile(w, r, candidate)
			return
		}
	}
	http.ServeFile(w, r, index)
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

package web

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed pages/*.html
var embedded embed.FS

// EmbeddedFS holds the built-in login and landing pages.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embedded, "pages")
	if err != nil {
		panic(err)
	}
	return sub
}

// New serves pages from dir, or from the embedded pages when dir is empty.
//
// A request for /name is answered with name, then name.html, then
// index.html, so client-side routes still load the app.
func New(dir string) (http.Handler, error) {
	fsys := EmbeddedFS()
	if strings.TrimSpace(dir) != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, errors.New("web: " + dir + " is not a directory")
		}
		fsys = os.DirFS(dir)
	}

	if _, err := fs.Stat(fsys, "index.html"); err != nil {
		return nil, errors.New("web: index.html not found")
	}

	return &handler{fsys: fsys}, nil
}

type handler struct {
	fsys fs.FS
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	http.ServeFileFS(w, r, h.fsys, h.resolve(r.URL.Path))
}

func (h *handler) resolve(urlPath string) string {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return "index.html"
	}

	for _, candidate := range []string{name, name + ".html"} {
		if info, err := fs.Stat(h.fsys, candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}

	return "index.html"
}

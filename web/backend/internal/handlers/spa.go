package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hookline/hookline/common/httputil"
)

// SPAHandler serves the dashboard bundle. Unknown paths fall back to
// index.html so client-side routes work on reload; unknown /api/ paths get a
// JSON 404 instead.
type SPAHandler struct {
	staticPath string
	indexPath  string
	fileServer http.Handler
}

func NewSPAHandler(staticPath string) *SPAHandler {
	return &SPAHandler{
		staticPath: staticPath,
		indexPath:  filepath.Join(staticPath, "index.html"),
		fileServer: http.FileServer(http.Dir(staticPath)),
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		httputil.WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))

	info, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && info.IsDir() && r.URL.Path != "/") {
		http.ServeFile(w, r, h.indexPath)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.fileServer.ServeHTTP(w, r)
}

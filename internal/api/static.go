package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yegors/flight-overlay/pkg/logger"
)

// StaticFileHandler serves the overlay page from disk on every request so edits show up
// in the browser source without a restart
type StaticFileHandler struct {
	staticDir string
	logger    *logger.Logger
}

// NewStaticFileHandler creates a new static file handler
func NewStaticFileHandler(staticDir string, loggerObj *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		staticDir: staticDir,
		logger:    loggerObj.Named("static-handler"),
	}
}

// ServeHTTP serves static files dynamically
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fullPath, status := h.resolve(r.URL.Path)
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		h.logger.Debug("File not found", logger.String("path", r.URL.Path))
		http.NotFound(w, r)
		return
	default:
		http.Error(w, http.StatusText(status), status)
		return
	}

	// The page is tiny and edited live, never cache it
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	http.ServeFile(w, r, fullPath)
}

// resolve maps a URL path to a file under the static directory. Directories resolve to
// their index.html; anything escaping the directory is forbidden.
func (h *StaticFileHandler) resolve(urlPath string) (string, int) {
	rel := strings.TrimPrefix(filepath.Clean("/"+urlPath), "/")
	if rel == "" {
		rel = "index.html"
	}

	root, err := filepath.Abs(h.staticDir)
	if err != nil {
		h.logger.Error("Failed to get absolute path for static directory", logger.Error(err))
		return "", http.StatusInternalServerError
	}
	fullPath := filepath.Join(root, rel)
	if fullPath != root && !strings.HasPrefix(fullPath, root+string(filepath.Separator)) {
		h.logger.Warn("Attempted directory traversal",
			logger.String("requested_path", urlPath),
			logger.String("static_dir", root))
		return "", http.StatusForbidden
	}

	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return "", http.StatusNotFound
	}
	if err != nil {
		h.logger.Error("Failed to stat file", logger.Error(err), logger.String("path", fullPath))
		return "", http.StatusInternalServerError
	}

	if info.IsDir() {
		fullPath = filepath.Join(fullPath, "index.html")
		if _, err := os.Stat(fullPath); err != nil {
			h.logger.Debug("Directory listing not allowed", logger.String("path", fullPath))
			return "", http.StatusForbidden
		}
	}
	return fullPath, http.StatusOK
}

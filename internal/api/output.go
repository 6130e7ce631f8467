package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge/internal/apierr"
)

// handleOutput serves a rendered clip by filename from outDir. The
// filename is taken as a single path segment so no "../" traversal can
// escape outDir.
func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		writeAPIError(w, apierr.New(apierr.InputError, "invalid filename"))
		return
	}

	path := filepath.Join(s.outDir, name)
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}

package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileHandler serves uploaded ban evidence from the media root.
type FileHandler struct {
	mediaRoot string
}

func NewFileHandler(mediaRoot string) *FileHandler {
	// Create media directory if it doesn't exist
	if err := os.MkdirAll(mediaRoot, 0755); err != nil {
		panic(fmt.Sprintf("Failed to create media directory: %v", err))
	}
	return &FileHandler{mediaRoot: mediaRoot}
}

func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	if rel == "" {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	// Prevent directory traversal
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	name := filepath.Join(h.mediaRoot, filepath.FromSlash(rel))

	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", getMimeFromExtension(strings.ToLower(filepath.Ext(name))))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	// SVG evidence must never run scripts in the panel's origin
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	http.ServeFile(w, r, name)
}

func getMimeFromExtension(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

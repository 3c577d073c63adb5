package main

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

const photoRoute = "/photo"

// PhotoHandler serves the committed widget photo to the editor frontend.
// Only the path stored in the repository is ever served.
type PhotoHandler struct {
	repo Repository
}

// NewPhotoHandler creates a new handler for serving the widget photo
func NewPhotoHandler(repo Repository) *PhotoHandler {
	return &PhotoHandler{repo: repo}
}

// ServeHTTP handles requests for the widget photo
func (h *PhotoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != photoRoute {
		http.NotFound(w, r)
		return
	}

	state := h.repo.Read(context.Background())
	if !state.HasPhoto() {
		http.NotFound(w, r)
		return
	}
	fullPath := state.Photo.Path

	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Don't serve directories
	if info.IsDir() {
		http.NotFound(w, r)
		return
	}

	file, err := os.Open(fullPath)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(fullPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	// The photo is overwritten in place on every save
	w.Header().Set("Cache-Control", "no-store")

	io.Copy(w, file)
}

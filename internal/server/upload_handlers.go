package server

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"splitscan/internal/middleware"
)

// maxUploadSize caps receipt images at 10 MB.
const maxUploadSize = 10 << 20

// allowedImageExts is the receipt-photo extension allowlist. Only the name
// is checked; the bytes are stored opaquely and never decoded.
var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".heic": true,
}

// handleUploadImage stores a receipt photo and returns its URL. The photo is
// an attachment for reference during editing; text extraction happens
// elsewhere and the service never inspects the image contents.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "image too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		writeError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	name := uuid.New().String() + ext
	stored, err := s.uploads.Save(name, data)
	if err != nil {
		slog.Error("Image upload failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	slog.Info("Image uploaded", "user_id", userID, "file", stored, "bytes", len(data))
	writeJSON(w, http.StatusCreated, map[string]string{"image_url": "/uploads/" + stored})
}

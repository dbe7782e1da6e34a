package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/arenaops/esports-platform/middleware"
	"github.com/arenaops/esports-platform/storage"
	"github.com/google/uuid"
)

const maxUploadSize = 5 << 20 // 5 MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadHandler stores avatars and team logos in the object store and hands
// back the key for the caller to persist on the owning record.
type UploadHandler struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUploadHandler(uploader storage.FileUploader, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, logger: logger}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// The process can run without object storage configured.
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "file uploads are not available")
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "uploaded file exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "a file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("content type %q is not allowed", contentType))
		return
	}

	// Scope is the logical folder: "avatars" (default) or "logos".
	scope := r.FormValue("scope")
	if scope != "logos" {
		scope = "avatars"
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := fmt.Sprintf("%s/%d/%s%s", scope, userID, uuid.NewString(), ext)

	result, err := h.uploader.Upload(r.Context(), key, contentType, file)
	if err != nil {
		h.logger.Error("object upload failed", slog.String("key", key), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"key": result.Key,
		"url": result.Location,
	})
}

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jhony-23/WebVideoA/internal/database"
	"github.com/jhony-23/WebVideoA/internal/logging"
	"github.com/jhony-23/WebVideoA/internal/mediatypes"
)

// maxUploadMemory bounds the in-memory part of multipart parsing;
// larger uploads spill to temp files.
const maxUploadMemory = 32 << 20

// itemResponse wraps a MediaItem with its delivery URLs. The manifest
// URL only exists once the item is ready; the original is always
// directly servable.
type itemResponse struct {
	*database.MediaItem
	StreamURL    string `json:"streamUrl,omitempty"`
	OriginalURL  string `json:"originalUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func (h *Handlers) itemResponse(item *database.MediaItem) itemResponse {
	resp := itemResponse{
		MediaItem:   item,
		OriginalURL: "/media/" + path.Join("source", filepath.Base(item.SourcePath)),
	}
	if item.Status == database.StatusReady && item.OutputDir != "" {
		if item.MediaType == mediatypes.MediaTypeVideo {
			resp.StreamURL = "/media/" + path.Join(item.OutputDir, "master.m3u8")
		}
		resp.ThumbnailURL = "/api/media/" + item.ID + "/thumbnail"
	}
	return resp
}

// UploadMedia accepts a multipart upload, stores the source file and
// registers a pending item for the scheduler.
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close upload stream: %v", err)
		}
	}()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !mediatypes.IsMediaFile(ext) {
		writeJSONError(w, "Unsupported media type", http.StatusUnsupportedMediaType)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(header.Filename), ext)
	}

	id := uuid.NewString()
	sourceDir := filepath.Join(h.mediaDir, "source")
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		logging.Error("failed to create source directory: %v", err)
		writeJSONError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}

	// Source files are named by ID so uploads with identical filenames
	// cannot collide.
	sourcePath := filepath.Join(sourceDir, id+ext)
	dst, err := os.Create(sourcePath)
	if err != nil {
		logging.Error("failed to create source file: %v", err)
		writeJSONError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	written, err := io.Copy(dst, file)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		logging.Error("failed to write source file %s: %v", sourcePath, err)
		if rmErr := os.Remove(sourcePath); rmErr != nil {
			logging.Warn("failed to remove partial upload %s: %v", sourcePath, rmErr)
		}
		writeJSONError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}

	item := &database.MediaItem{
		ID:         id,
		Title:      title,
		SourcePath: sourcePath,
		MediaType:  mediatypes.MediaTypeFor(ext),
	}
	if err := h.db.Create(r.Context(), item); err != nil {
		logging.Error("failed to register upload %s: %v", id, err)
		if rmErr := os.Remove(sourcePath); rmErr != nil {
			logging.Warn("failed to remove orphaned upload %s: %v", sourcePath, rmErr)
		}
		writeJSONError(w, "Failed to register upload", http.StatusInternalServerError)
		return
	}

	logging.Info("Uploaded %s (%d bytes) as %s", header.Filename, written, id)
	h.scheduler.Notify()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, h.itemResponse(item))
}

// ListMedia returns every registered item, oldest upload first.
func (h *Handlers) ListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.db.List(r.Context())
	if err != nil {
		logging.Error("failed to list media items: %v", err)
		writeJSONError(w, "Failed to list media", http.StatusInternalServerError)
		return
	}

	responses := make([]itemResponse, len(items))
	for i, item := range items {
		responses[i] = h.itemResponse(item)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, responses)
}

// GetMedia returns a single item by ID.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, err := h.db.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "Media item not found", http.StatusNotFound)
			return
		}
		logging.Error("failed to get media item %s: %v", id, err)
		writeJSONError(w, "Failed to get media", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.itemResponse(item))
}

// RequeueMedia puts a failed item back in the queue.
func (h *Handlers) RequeueMedia(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.db.Requeue, "Only failed items can be requeued")
}

// ReprocessMedia forces a ready item through the pipeline again.
func (h *Handlers) ReprocessMedia(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.db.Reprocess, "Only ready items can be reprocessed")
}

func (h *Handlers) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id string) error, conflictMsg string) {
	id := mux.Vars(r)["id"]

	if err := op(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			writeJSONError(w, "Media item not found", http.StatusNotFound)
		case errors.Is(err, database.ErrConflict):
			writeJSONError(w, conflictMsg, http.StatusConflict)
		default:
			logging.Error("failed to transition media item %s: %v", id, err)
			writeJSONError(w, "Failed to update media", http.StatusInternalServerError)
		}
		return
	}

	h.scheduler.Notify()
	writeJSONStatus(w, string(database.StatusPending))
}

// DeleteMedia removes an item, its renditions and its source file.
func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, err := h.db.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "Media item not found", http.StatusNotFound)
			return
		}
		logging.Error("failed to delete media item %s: %v", id, err)
		writeJSONError(w, "Failed to delete media", http.StatusInternalServerError)
		return
	}

	if item.OutputDir != "" {
		outputDir := filepath.Join(h.mediaDir, item.OutputDir)
		if err := os.RemoveAll(outputDir); err != nil {
			logging.Warn("failed to remove output dir %s: %v", outputDir, err)
		}
	}
	if err := os.Remove(item.SourcePath); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove source file %s: %v", item.SourcePath, err)
	}

	logging.Info("Deleted media item %s (%s)", id, item.Title)
	writeJSONStatus(w, "deleted")
}

// GetThumbnail serves the poster frame generated during processing.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, err := h.db.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "Media item not found", http.StatusNotFound)
			return
		}
		logging.Error("failed to get media item %s: %v", id, err)
		writeJSONError(w, "Failed to get media", http.StatusInternalServerError)
		return
	}

	if item.OutputDir == "" {
		writeJSONError(w, "No thumbnail available", http.StatusNotFound)
		return
	}

	thumbPath := filepath.Join(h.mediaDir, item.OutputDir, "thumbnail.jpg")
	if _, err := os.Stat(thumbPath); err != nil {
		writeJSONError(w, "No thumbnail available", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, thumbPath)
}

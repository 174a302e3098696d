package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jhony-23/WebVideoA/internal/devices"
	"github.com/jhony-23/WebVideoA/internal/logging"
	"github.com/jhony-23/WebVideoA/internal/mediatypes"
	"github.com/jhony-23/WebVideoA/internal/metrics"
	"github.com/jhony-23/WebVideoA/internal/streaming"
)

// rangePattern accepts the single-range byte form. Multi-range and
// suffix-range requests are deliberately rejected.
var rangePattern = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

const (
	// Top-level manifests can be regenerated, so cache briefly.
	manifestCacheControl = "public, max-age=60"
	// Segments are immutable once written.
	segmentCacheControl = "public, max-age=604800, immutable"
)

// ServeMedia is the single delivery entry point. HLS artifacts are
// static; everything else gets Range handling tuned per device class.
func (h *Handlers) ServeMedia(w http.ResponseWriter, r *http.Request) {
	relPath := mux.Vars(r)["path"]

	fullPath := filepath.Join(h.mediaDir, relPath)
	absPath, err := filepath.Abs(fullPath)
	if err != nil || !isSubPath(h.mediaDir, absPath) {
		writeJSONError(w, "Invalid path", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		if err != nil && !os.IsNotExist(err) {
			logging.Error("failed to stat %s: %v", fullPath, err)
		}
		writeJSONError(w, "File not found", http.StatusNotFound)
		return
	}

	ext := strings.ToLower(filepath.Ext(fullPath))
	if mediatypes.IsStreamAsset(ext) {
		h.serveStreamAsset(w, r, fullPath, ext, info.Size())
		return
	}
	h.serveOriginal(w, r, fullPath, ext, info.Size())
}

// serveStreamAsset serves a manifest or segment as plain static content.
func (h *Handlers) serveStreamAsset(w http.ResponseWriter, r *http.Request, fullPath, ext string, size int64) {
	w.Header().Set("Content-Type", mediatypes.ContentTypeFor(ext))
	if ext == ".m3u8" {
		w.Header().Set("Cache-Control", manifestCacheControl)
	} else {
		w.Header().Set("Cache-Control", segmentCacheControl)
	}

	metrics.DeliveryBytesTotal.WithLabelValues("stream").Add(float64(size))
	http.ServeFile(w, r, fullPath)
}

// serveOriginal serves a progressive media file with single-range
// support, clamping response length to the device class chunk size.
func (h *Handlers) serveOriginal(w http.ResponseWriter, r *http.Request, fullPath, ext string, size int64) {
	class := devices.Classify(r)
	caps := devices.Lookup(class)

	w.Header().Set("Content-Type", mediatypes.ContentTypeFor(ext))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(caps.CacheTTL.Seconds())))

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		metrics.RangeRequestsTotal.WithLabelValues(string(class), "200").Inc()
		h.copyFileRange(w, r, fullPath, 0, size, caps.BufferSize)
		return
	}

	start, end, ok := parseRange(rangeHeader, size)
	if !ok {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		metrics.RangeRequestsTotal.WithLabelValues(string(class), "416").Inc()
		writeJSONError(w, "Invalid range", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	// Cap the response at the device chunk size; the client follows up
	// with the next range.
	if length := end - start + 1; length > caps.MaxChunkSize {
		end = start + caps.MaxChunkSize - 1
	}
	length := end - start + 1

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)

	metrics.RangeRequestsTotal.WithLabelValues(string(class), "206").Inc()
	h.copyFileRange(w, r, fullPath, start, length, caps.BufferSize)
}

// parseRange validates a Range header against the file size.
// end is inclusive and already clamped to size-1.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	m := rangePattern.FindStringSubmatch(header)
	if m == nil {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || start >= size {
		return 0, 0, false
	}

	end = size - 1
	if m[2] != "" {
		end, err = strconv.ParseInt(m[2], 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end > size-1 {
			end = size - 1
		}
	}
	return start, end, true
}

// copyFileRange opens the file, seeks and streams length bytes.
// The file is always closed, whether the copy completes or the client
// goes away mid-transfer.
func (h *Handlers) copyFileRange(w http.ResponseWriter, r *http.Request, fullPath string, offset, length int64, bufferSize int) {
	file, err := os.Open(fullPath)
	if err != nil {
		logging.Error("failed to open %s: %v", fullPath, err)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s: %v", fullPath, err)
		}
	}()

	if offset > 0 {
		if _, err := file.Seek(offset, 0); err != nil {
			logging.Error("failed to seek %s to %d: %v", fullPath, offset, err)
			return
		}
	}

	config := h.streamConfig
	config.BufferSize = bufferSize

	written, err := streaming.CopyN(r.Context(), w, file, length, config)
	metrics.DeliveryBytesTotal.WithLabelValues("original").Add(float64(written))

	if err != nil {
		if errors.Is(err, streaming.ErrClientGone) || errors.Is(err, streaming.ErrWriteTimeout) {
			logging.Debug("Stream ended early for %s: %v", fullPath, err)
			return
		}
		logging.Error("failed to stream %s: %v", fullPath, err)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jhony-23/WebVideoA/internal/database"
	"github.com/jhony-23/WebVideoA/internal/mediatypes"
)

func seedItem(t *testing.T, env *testEnv, id string, status database.Status) *database.MediaItem {
	t.Helper()
	item := &database.MediaItem{
		ID:         id,
		Title:      "Seeded " + id,
		SourcePath: filepath.Join(env.mediaDir, "source", id+".mp4"),
		MediaType:  mediatypes.MediaTypeVideo,
	}
	if err := env.db.Create(context.Background(), item); err != nil {
		t.Fatalf("Failed to seed item: %v", err)
	}
	if status != database.StatusPending {
		upd := database.ResultUpdate{Status: status}
		if status == database.StatusReady {
			upd.Qualities = []string{"720p"}
			upd.OutputDir = "hls/" + id
		}
		if status == database.StatusFailed {
			upd.ErrorMessage = "encode blew up"
		}
		if err := env.db.UpdateResult(context.Background(), id, upd); err != nil {
			t.Fatalf("Failed to set item status: %v", err)
		}
	}
	return item
}

func TestUploadMedia(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "holiday.mp4", "Holiday Clip", []byte("fake video bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", contentType)

	w := env.do(t, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	resp := decodeItem(t, w.Body)
	if resp.Title != "Holiday Clip" {
		t.Errorf("title = %q, want %q", resp.Title, "Holiday Clip")
	}
	if resp.Status != database.StatusPending {
		t.Errorf("status = %q, want pending", resp.Status)
	}
	if resp.MediaType != mediatypes.MediaTypeVideo {
		t.Errorf("mediaType = %q, want video", resp.MediaType)
	}
	if resp.StreamURL != "" {
		t.Errorf("streamUrl = %q, want empty for pending item", resp.StreamURL)
	}

	data, err := os.ReadFile(resp.SourcePath)
	if err != nil {
		t.Fatalf("source file not stored: %v", err)
	}
	if string(data) != "fake video bytes" {
		t.Errorf("source file content = %q", data)
	}

	if env.notifier.notified() != 1 {
		t.Errorf("scheduler notified %d times, want 1", env.notifier.notified())
	}
}

func TestUploadMediaDefaultsTitleFromFilename(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "beach_day.mov", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", contentType)

	w := env.do(t, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if resp := decodeItem(t, w.Body); resp.Title != "beach_day" {
		t.Errorf("title = %q, want %q", resp.Title, "beach_day")
	}
}

func TestUploadMediaUnsupportedType(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "notes.txt", "", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", contentType)

	w := env.do(t, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", w.Code)
	}
	if env.notifier.notified() != 0 {
		t.Error("scheduler notified for rejected upload")
	}
}

func TestUploadMediaMissingFile(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/media", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=none")

	if w := env.do(t, req); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListMedia(t *testing.T) {
	env := newTestEnv(t)
	seedItem(t, env, "item-a", database.StatusPending)
	seedItem(t, env, "item-b", database.StatusReady)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/media", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var items []itemResponse
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("list returned %d items, want 2", len(items))
	}
}

func TestGetMedia(t *testing.T) {
	env := newTestEnv(t)
	seedItem(t, env, "item-1", database.StatusReady)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/media/item-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resp := decodeItem(t, w.Body)
	if resp.ID != "item-1" {
		t.Errorf("id = %q", resp.ID)
	}
	if resp.StreamURL != "/media/hls/item-1/master.m3u8" {
		t.Errorf("streamUrl = %q, want manifest URL for ready item", resp.StreamURL)
	}
}

func TestGetMediaNotFound(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/media/missing", nil)); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRequeueMedia(t *testing.T) {
	env := newTestEnv(t)
	seedItem(t, env, "failed-item", database.StatusFailed)
	seedItem(t, env, "pending-item", database.StatusPending)

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"failed item requeues", "failed-item", http.StatusOK},
		{"pending item conflicts", "pending-item", http.StatusConflict},
		{"missing item", "nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/media/"+tt.id+"/requeue", nil)
			if w := env.do(t, req); w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	item, err := env.db.Get(context.Background(), "failed-item")
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != database.StatusPending {
		t.Errorf("status after requeue = %q, want pending", item.Status)
	}
	if env.notifier.notified() != 1 {
		t.Errorf("scheduler notified %d times, want 1", env.notifier.notified())
	}
}

func TestReprocessMedia(t *testing.T) {
	env := newTestEnv(t)
	seedItem(t, env, "ready-item", database.StatusReady)
	seedItem(t, env, "failed-item", database.StatusFailed)

	req := httptest.NewRequest(http.MethodPost, "/api/media/ready-item/reprocess", nil)
	if w := env.do(t, req); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, req.URL)
	}

	// Only ready items can be forced through again.
	req = httptest.NewRequest(http.MethodPost, "/api/media/failed-item/reprocess", nil)
	if w := env.do(t, req); w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestDeleteMedia(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "item-1", database.StatusReady)

	// Materialize the files deletion should purge.
	if err := os.MkdirAll(filepath.Dir(item.SourcePath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(item.SourcePath, []byte("src"), 0o644); err != nil {
		t.Fatal(err)
	}
	outputDir := filepath.Join(env.mediaDir, "hls", "item-1")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/media/item-1", nil)
	if w := env.do(t, req); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if _, err := os.Stat(item.SourcePath); !os.IsNotExist(err) {
		t.Error("source file not removed")
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Error("output directory not removed")
	}

	if w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/media/item-1", nil)); w.Code != http.StatusNotFound {
		t.Errorf("item still retrievable after delete: %d", w.Code)
	}
}

func TestGetThumbnail(t *testing.T) {
	env := newTestEnv(t)
	seedItem(t, env, "item-1", database.StatusReady)

	thumbDir := filepath.Join(env.mediaDir, "hls", "item-1")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(thumbDir, "thumbnail.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/media/item-1/thumbnail", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "jpeg" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestGetThumbnailNotGenerated(t *testing.T) {
	env := newTestEnv(t)
	seedItem(t, env, "item-1", database.StatusPending)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/media/item-1/thumbnail", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"

	"github.com/jhony-23/WebVideoA/internal/database"
	"github.com/jhony-23/WebVideoA/internal/startup"
)

type fakeNotifier struct {
	count int64
}

func (f *fakeNotifier) Notify() { atomic.AddInt64(&f.count, 1) }

func (f *fakeNotifier) notified() int64 { return atomic.LoadInt64(&f.count) }

type testEnv struct {
	handlers *Handlers
	db       *database.Database
	notifier *fakeNotifier
	mediaDir string
	router   *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mediaDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "media.db")

	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	notifier := &fakeNotifier{}
	h := New(db, notifier, &startup.Config{MediaDir: mediaDir})

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/media", h.UploadMedia).Methods("POST")
	api.HandleFunc("/media", h.ListMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.GetMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods("DELETE")
	api.HandleFunc("/media/{id}/requeue", h.RequeueMedia).Methods("POST")
	api.HandleFunc("/media/{id}/reprocess", h.ReprocessMedia).Methods("POST")
	api.HandleFunc("/media/{id}/thumbnail", h.GetThumbnail).Methods("GET")

	r.HandleFunc("/media/{path:.*}", h.ServeMedia).Methods("GET")

	return &testEnv{
		handlers: h,
		db:       db,
		notifier: notifier,
		mediaDir: mediaDir,
		router:   r,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// multipartUpload builds a multipart request body with a file part.
func multipartUpload(t *testing.T, filename, title string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if title != "" {
		if err := writer.WriteField("title", title); err != nil {
			t.Fatalf("Failed to write title field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func decodeItem(t *testing.T, body io.Reader) itemResponse {
	t.Helper()
	var resp itemResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode item response: %v", err)
	}
	return resp
}

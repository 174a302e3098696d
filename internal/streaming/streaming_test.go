package streaming

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCopyNFull(t *testing.T) {
	src := strings.NewReader("hello world")
	var dst bytes.Buffer

	n, err := CopyN(context.Background(), &dst, src, 11, DefaultConfig())
	if err != nil {
		t.Fatalf("CopyN failed: %v", err)
	}
	if n != 11 {
		t.Errorf("Expected 11 bytes copied, got %d", n)
	}
	if dst.String() != "hello world" {
		t.Errorf("Expected %q, got %q", "hello world", dst.String())
	}
}

func TestCopyNLimit(t *testing.T) {
	src := strings.NewReader("hello world")
	var dst bytes.Buffer

	n, err := CopyN(context.Background(), &dst, src, 5, DefaultConfig())
	if err != nil {
		t.Fatalf("CopyN failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 bytes copied, got %d", n)
	}
	if dst.String() != "hello" {
		t.Errorf("Expected %q, got %q", "hello", dst.String())
	}
}

func TestCopyNShortSource(t *testing.T) {
	// Source shorter than the requested length stops at EOF.
	src := strings.NewReader("abc")
	var dst bytes.Buffer

	n, err := CopyN(context.Background(), &dst, src, 100, DefaultConfig())
	if err != nil {
		t.Fatalf("CopyN failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 bytes copied, got %d", n)
	}
}

func TestCopyNSmallBlocks(t *testing.T) {
	data := strings.Repeat("x", 1000)
	src := strings.NewReader(data)
	var dst bytes.Buffer

	config := Config{BufferSize: 7}
	n, err := CopyN(context.Background(), &dst, src, int64(len(data)), config)
	if err != nil {
		t.Fatalf("CopyN failed: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("Expected %d bytes copied, got %d", len(data), n)
	}
	if dst.String() != data {
		t.Error("Copied data does not match source")
	}
}

func TestCopyNCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := strings.NewReader("hello")
	var dst bytes.Buffer

	_, err := CopyN(ctx, &dst, src, 5, DefaultConfig())
	if !errors.Is(err, ErrClientGone) {
		t.Errorf("Expected ErrClientGone, got %v", err)
	}
}

// blockingWriter never completes a write.
type blockingWriter struct {
	release chan struct{}
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	<-w.release
	return len(p), nil
}

func TestCopyNWriteTimeout(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	defer close(w.release)

	src := strings.NewReader("hello")
	config := Config{BufferSize: 16, WriteTimeout: 20 * time.Millisecond}

	_, err := CopyN(context.Background(), w, src, 5, config)
	if !errors.Is(err, ErrWriteTimeout) {
		t.Errorf("Expected ErrWriteTimeout, got %v", err)
	}
}

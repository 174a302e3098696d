package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a single write exceeded the
	// configured timeout, typically a client receiving data too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the client disconnected before the
	// copy completed, detected via request context cancellation.
	ErrClientGone = errors.New("client disconnected")
)

// Config controls block size and write timeout for CopyN.
type Config struct {
	// BufferSize is the size of each read/write block.
	BufferSize int
	// WriteTimeout is the maximum time for a single write operation.
	// Zero disables the per-write timeout.
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:   256 * 1024,
		WriteTimeout: 30 * time.Second,
	}
}

// CopyN copies up to n bytes from src to dst in bounded blocks.
// It stops early on EOF, context cancellation, or write timeout, and
// returns the number of bytes actually written. When dst implements
// http.Flusher each block is flushed so data reaches the client
// promptly.
func CopyN(ctx context.Context, dst io.Writer, src io.Reader, n int64, config Config) (int64, error) {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}

	flusher, _ := dst.(http.Flusher)
	buf := make([]byte, config.BufferSize)

	var written int64
	for written < n {
		select {
		case <-ctx.Done():
			return written, ErrClientGone
		default:
		}

		block := int64(len(buf))
		if remaining := n - written; remaining < block {
			block = remaining
		}

		nr, rerr := src.Read(buf[:block])
		if nr > 0 {
			nw, werr := writeWithTimeout(ctx, dst, buf[:nr], config.WriteTimeout)
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, rerr
		}
	}

	return written, nil
}

// writeWithTimeout performs a single write bounded by timeout.
func writeWithTimeout(ctx context.Context, dst io.Writer, p []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		return dst.Write(p)
	}

	type writeResult struct {
		n   int
		err error
	}
	resultCh := make(chan writeResult, 1)

	go func() {
		n, err := dst.Write(p)
		resultCh <- writeResult{n, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		return result.n, result.err
	case <-timer.C:
		return 0, ErrWriteTimeout
	case <-ctx.Done():
		return 0, ErrClientGone
	}
}

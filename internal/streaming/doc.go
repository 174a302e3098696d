// Package streaming provides bounded, timeout-protected copying of
// file data to HTTP responses.
//
// The delivery layer serves large media files in byte ranges. A slow or
// disconnected client must not hold the file handle and goroutine
// indefinitely, so CopyN copies in fixed-size blocks, checks the
// request context between blocks, and bounds each individual write with
// a timeout.
//
// Sentinel errors distinguish the uninteresting cases (client went
// away) from real failures:
//
//	n, err := streaming.CopyN(r.Context(), w, file, length, config)
//	if errors.Is(err, streaming.ErrClientGone) {
//	    return // not a server error
//	}
package streaming

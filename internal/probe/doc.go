// Package probe extracts video metadata with ffprobe.
//
// The transcoding engine needs the source dimensions, frame rate and
// duration before it can plan renditions. Everything here is a thin
// wrapper around one ffprobe invocation plus defensive parsing of its
// JSON output, since real-world containers routinely omit or mangle
// fields.
package probe

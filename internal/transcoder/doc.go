// Package transcoder turns uploaded media into delivery-ready renditions.
//
// For video it probes the source, plans a quality ladder and drives one
// ffmpeg HLS encode per rendition, then writes the master manifest
// referencing every quality that succeeded. For images it produces
// resized JPEG renditions in-process. All side effects are confined to
// the item's output directory, so engines for distinct items can run
// concurrently.
//
// External tool invocations go through a command runner hook so tests
// can substitute ffmpeg and ffprobe.
package transcoder

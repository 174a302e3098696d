// Package mediatypes provides shared type definitions and extension
// tables for media file handling across WebVideoA.
//
// It is a dependency-free foundation importable by any other package
// without creating import cycles: primitive types, extension maps and
// pure lookup functions only.
//
// Use MediaTypeFor to classify an uploaded file:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	switch mediatypes.MediaTypeFor(ext) {
//	case mediatypes.MediaTypeVideo:
//	    // schedule for HLS transcoding
//	case mediatypes.MediaTypeImage:
//	    // schedule for rendition resizing
//	}
//
// Use ContentTypeFor when serving files over HTTP, and IsStreamAsset to
// distinguish immutable HLS artifacts (manifests, segments) from
// original media that gets range-aware delivery.
package mediatypes

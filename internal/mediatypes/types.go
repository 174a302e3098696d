package mediatypes

// MediaType classifies an uploaded media item.
type MediaType string

const (
	// MediaTypeVideo is a video file, processed into HLS renditions.
	MediaTypeVideo MediaType = "video"
	// MediaTypeImage is an image file, processed into resized renditions.
	MediaTypeImage MediaType = "image"
	// MediaTypeOther is an unrecognized or unsupported file.
	MediaTypeOther MediaType = "other"
)

// VideoExtensions maps file extensions to whether they are supported
// video upload formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
}

// ImageExtensions maps file extensions to whether they are supported
// image upload formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// streamExtensions are HLS artifacts produced by the transcoding engine.
// They are immutable once written (segments) or cheaply regenerable
// (manifests) and get static delivery rather than range handling.
var streamExtensions = map[string]bool{
	".m3u8": true,
	".ts":   true,
}

// contentTypes maps file extensions to the Content-Type header value
// used by the delivery layer.
var contentTypes = map[string]string{
	// Streaming artifacts
	".m3u8": "application/vnd.apple.mpegurl",
	".ts":   "video/mp2t",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",

	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// MediaTypeFor returns the MediaType for a file extension.
// The extension should be lowercase and include the leading dot
// (e.g. ".mp4"). Returns MediaTypeOther if unrecognized.
func MediaTypeFor(ext string) MediaType {
	if VideoExtensions[ext] {
		return MediaTypeVideo
	}
	if ImageExtensions[ext] {
		return MediaTypeImage
	}
	return MediaTypeOther
}

// ContentTypeFor returns the Content-Type for a file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func ContentTypeFor(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsStreamAsset reports whether the extension belongs to an HLS
// manifest or segment file.
func IsStreamAsset(ext string) bool {
	return streamExtensions[ext]
}

// IsMediaFile reports whether the extension is an accepted upload format.
func IsMediaFile(ext string) bool {
	return MediaTypeFor(ext) != MediaTypeOther
}

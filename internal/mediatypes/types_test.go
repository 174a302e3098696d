package mediatypes

import "testing"

func TestMediaTypeFor(t *testing.T) {
	tests := []struct {
		ext  string
		want MediaType
	}{
		{".mp4", MediaTypeVideo},
		{".mkv", MediaTypeVideo},
		{".mov", MediaTypeVideo},
		{".webm", MediaTypeVideo},
		{".jpg", MediaTypeImage},
		{".png", MediaTypeImage},
		{".webp", MediaTypeImage},
		{".m3u8", MediaTypeOther},
		{".ts", MediaTypeOther},
		{".txt", MediaTypeOther},
		{"", MediaTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := MediaTypeFor(tt.ext); got != tt.want {
				t.Errorf("MediaTypeFor(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".m3u8", "application/vnd.apple.mpegurl"},
		{".ts", "video/mp2t"},
		{".mp4", "video/mp4"},
		{".jpg", "image/jpeg"},
		{".unknown", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := ContentTypeFor(tt.ext); got != tt.want {
				t.Errorf("ContentTypeFor(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestIsStreamAsset(t *testing.T) {
	if !IsStreamAsset(".m3u8") || !IsStreamAsset(".ts") {
		t.Error("Expected .m3u8 and .ts to be stream assets")
	}
	if IsStreamAsset(".mp4") {
		t.Error("Expected .mp4 not to be a stream asset")
	}
}

func TestIsMediaFile(t *testing.T) {
	if !IsMediaFile(".mp4") {
		t.Error("Expected .mp4 to be a media file")
	}
	if !IsMediaFile(".png") {
		t.Error("Expected .png to be a media file")
	}
	if IsMediaFile(".exe") {
		t.Error("Expected .exe not to be a media file")
	}
}

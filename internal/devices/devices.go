package devices

import (
	"net/http"
	"strings"
	"time"
)

// Class is a coarse client capability class.
type Class string

const (
	// ClassConstrained covers embedded and TV devices with limited
	// buffering: smaller chunks, longer caching.
	ClassConstrained Class = "constrained"
	// ClassStandard covers general desktop and mobile browsers.
	ClassStandard Class = "standard"
)

// Capabilities holds the delivery parameters for a device class.
type Capabilities struct {
	// MaxChunkSize caps the length of a single 206 response. Clients
	// requesting larger ranges get a clamped response and re-request.
	MaxChunkSize int64
	// BufferSize is the block size for streaming copies.
	BufferSize int
	// CacheTTL is the Cache-Control max-age for partial responses.
	CacheTTL time.Duration
}

var capabilityTable = map[Class]Capabilities{
	ClassConstrained: {
		MaxChunkSize: 512 * 1024,
		BufferSize:   64 * 1024,
		CacheTTL:     time.Hour,
	},
	ClassStandard: {
		MaxChunkSize: 4 * 1024 * 1024,
		BufferSize:   256 * 1024,
		CacheTTL:     10 * time.Minute,
	},
}

// constrainedAgentMarkers identify embedded/TV user agents. Used only
// as a fallback when the client does not declare a class explicitly.
var constrainedAgentMarkers = []string{
	"smarttv",
	"smart-tv",
	"webos",
	"tizen",
	"roku",
	"appletv",
	"crkey", // Chromecast
}

// Classify determines the capability class for a request.
// Precedence: X-Device-Class header, then the device query parameter,
// then User-Agent markers. Unknown values fall back to ClassStandard.
func Classify(r *http.Request) Class {
	if c, ok := parseClass(r.Header.Get("X-Device-Class")); ok {
		return c
	}
	if c, ok := parseClass(r.URL.Query().Get("device")); ok {
		return c
	}

	ua := strings.ToLower(r.UserAgent())
	for _, marker := range constrainedAgentMarkers {
		if strings.Contains(ua, marker) {
			return ClassConstrained
		}
	}

	return ClassStandard
}

func parseClass(value string) (Class, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ClassConstrained):
		return ClassConstrained, true
	case string(ClassStandard):
		return ClassStandard, true
	default:
		return "", false
	}
}

// Lookup returns the capabilities for a class. Unknown classes get the
// standard profile.
func Lookup(c Class) Capabilities {
	if caps, ok := capabilityTable[c]; ok {
		return caps
	}
	return capabilityTable[ClassStandard]
}

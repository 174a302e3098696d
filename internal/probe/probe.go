package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jhony-23/WebVideoA/internal/logging"
)

const (
	probeTimeout = 30 * time.Second

	// defaultFPS is assumed when r_frame_rate is missing or malformed.
	defaultFPS = 25
)

var (
	// ErrNoVideoStream indicates the file has no video stream.
	ErrNoVideoStream = errors.New("no video stream found")
	// ErrInvalidResolution indicates the video stream reports zero
	// width or height.
	ErrInvalidResolution = errors.New("invalid video resolution")
)

// Info is the metadata the planner needs about a source file.
type Info struct {
	Width    int
	Height   int
	FPS      int
	Duration float64
}

// ffprobeResult mirrors the JSON shape of `ffprobe -of json`.
// Durations arrive as strings; frame rate as a rational "num/den".
type ffprobeResult struct {
	Streams []struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
		FrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// runFFprobe is swappable in tests.
var runFFprobe = func(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	return cmd.Output()
}

// Probe inspects the first video stream of the file at path.
// A missing duration is tolerated (reported as 0); a missing video
// stream or zero dimensions are not.
func Probe(ctx context.Context, path string) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := runFFprobe(ctx, path)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffprobe failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parse(out, path)
}

func parse(out []byte, path string) (*Info, error) {
	var result ffprobeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(result.Streams) == 0 {
		return nil, ErrNoVideoStream
	}
	stream := result.Streams[0]

	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidResolution, stream.Width, stream.Height)
	}

	info := &Info{
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    parseFrameRate(stream.FrameRate),
	}

	// Prefer the container duration; some streams carry their own,
	// some carry neither. Zero is acceptable.
	if d, ok := parseDuration(result.Format.Duration); ok {
		info.Duration = d
	} else if d, ok := parseDuration(stream.Duration); ok {
		info.Duration = d
	} else {
		logging.Debug("No duration found for %s, defaulting to 0", path)
	}

	return info, nil
}

// parseFrameRate converts ffprobe's rational "num/den" to a whole fps.
// Falls back to defaultFPS on anything unparseable, never below 1.
func parseFrameRate(r string) int {
	parts := strings.SplitN(r, "/", 2)
	if len(parts) != 2 {
		return defaultFPS
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return defaultFPS
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return defaultFPS
	}
	fps := int(math.Round(num / den))
	if fps < 1 {
		return 1
	}
	return fps
}

func parseDuration(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

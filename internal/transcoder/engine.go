package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jhony-23/WebVideoA/internal/logging"
	"github.com/jhony-23/WebVideoA/internal/metrics"
	"github.com/jhony-23/WebVideoA/internal/planner"
	"github.com/jhony-23/WebVideoA/internal/probe"
)

// Error codes recorded on failed outcomes.
const (
	ErrCodeProbe             = "probe_error"
	ErrCodeInvalidResolution = "invalid_resolution"
	ErrCodeNoVariant         = "no_variant_generated"
)

const (
	// qualityTimeout bounds a single ffmpeg rendition encode.
	qualityTimeout = 900 * time.Second

	// masterManifest is the top-level HLS playlist filename.
	masterManifest = "master.m3u8"

	// hlsCodecs matches what libx264 high profile + AAC-LC produce.
	hlsCodecs = "avc1.64001f,mp4a.40.2"

	thumbnailFile   = "thumbnail.jpg"
	thumbnailOffset = 2
	thumbnailWidth  = 640
)

// Variant is one successfully generated rendition.
type Variant struct {
	Name             string
	Width            int
	Height           int
	VideoBitrateKbps int
	AudioBitrateKbps int
}

// Outcome is the result of one engine run.
type Outcome struct {
	Success      bool
	Variants     []Variant
	Duration     float64
	Width        int
	Height       int
	ErrorCode    string
	ErrorMessage string
}

// Qualities returns the names of the generated variants.
func (o *Outcome) Qualities() []string {
	names := make([]string, len(o.Variants))
	for i, v := range o.Variants {
		names[i] = v.Name
	}
	return names
}

// commandRunner executes an external tool. Swapped out in tests.
type commandRunner func(ctx context.Context, name string, args ...string) error

// Engine drives probe, planner and the external encoder.
type Engine struct {
	segmentDuration float64
	profiles        []planner.QualityProfile

	run       commandRunner
	probeFile func(ctx context.Context, path string) (*probe.Info, error)
}

// New creates an Engine encoding segments of the given duration.
func New(segmentDuration float64) *Engine {
	return &Engine{
		segmentDuration: segmentDuration,
		profiles:        planner.DefaultProfiles,
		run:             runCommand,
		probeFile:       probe.Probe,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s timed out: %w", name, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 512 {
			msg = msg[len(msg)-512:]
		}
		if msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// Transcode processes the source video into HLS renditions under
// outputDir. The directory is recreated from scratch; on probe failure
// or when no rendition succeeds, it is removed again so a failed run
// leaves nothing behind.
func (e *Engine) Transcode(ctx context.Context, sourcePath, outputDir string) *Outcome {
	if err := recreateDir(outputDir); err != nil {
		return &Outcome{ErrorCode: ErrCodeProbe, ErrorMessage: err.Error()}
	}

	info, err := e.probeFile(ctx, sourcePath)
	if err != nil {
		removeDir(outputDir)
		code := ErrCodeProbe
		if errors.Is(err, probe.ErrInvalidResolution) {
			code = ErrCodeInvalidResolution
		}
		return &Outcome{ErrorCode: code, ErrorMessage: err.Error()}
	}

	renditions := planner.Plan(info.Width, info.Height, info.FPS, e.segmentDuration, e.profiles)
	if len(renditions) == 0 {
		removeDir(outputDir)
		return &Outcome{
			ErrorCode:    ErrCodeNoVariant,
			ErrorMessage: fmt.Sprintf("no rendition plannable for %dx%d source", info.Width, info.Height),
		}
	}

	var variants []Variant
	var succeeded []planner.Rendition
	for _, r := range renditions {
		if err := e.encodeRendition(ctx, sourcePath, outputDir, r); err != nil {
			// A single quality failing is not fatal; the rest of the
			// ladder can still serve the item.
			logging.Warn("Skipping quality %s for %s: %v", r.Name, sourcePath, err)
			metrics.TranscodeVariantsTotal.WithLabelValues(r.Name, "failure").Inc()
			continue
		}
		metrics.TranscodeVariantsTotal.WithLabelValues(r.Name, "success").Inc()
		succeeded = append(succeeded, r)
		variants = append(variants, Variant{
			Name:             r.Name,
			Width:            r.Width,
			Height:           r.Height,
			VideoBitrateKbps: r.VideoBitrateKbps,
			AudioBitrateKbps: r.AudioBitrateKbps,
		})
	}

	if len(succeeded) == 0 {
		removeDir(outputDir)
		return &Outcome{
			ErrorCode:    ErrCodeNoVariant,
			ErrorMessage: "all rendition encodes failed",
		}
	}

	if err := writeMasterManifest(outputDir, succeeded, info.FPS); err != nil {
		removeDir(outputDir)
		return &Outcome{ErrorCode: ErrCodeNoVariant, ErrorMessage: err.Error()}
	}

	if err := e.extractThumbnail(ctx, sourcePath, outputDir); err != nil {
		logging.Warn("Thumbnail extraction failed for %s: %v", sourcePath, err)
	}

	return &Outcome{
		Success:  true,
		Variants: variants,
		Duration: info.Duration,
		Width:    info.Width,
		Height:   info.Height,
	}
}

func (e *Engine) encodeRendition(ctx context.Context, sourcePath, outputDir string, r planner.Rendition) error {
	start := time.Now()
	defer func() {
		metrics.TranscodeVariantDuration.WithLabelValues(r.Name).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, qualityTimeout)
	defer cancel()

	childManifest := filepath.Join(outputDir, r.Name+".m3u8")
	segmentPattern := filepath.Join(outputDir, r.Name+"_%03d.ts")

	args := []string{
		"-y",
		"-i", sourcePath,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-tune", "fastdecode",
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=disable", r.Width, r.Height),
		"-b:v", fmt.Sprintf("%dk", r.VideoBitrateKbps),
		"-maxrate", fmt.Sprintf("%dk", r.MaxrateKbps),
		"-bufsize", fmt.Sprintf("%dk", r.BufsizeKbps),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", r.AudioBitrateKbps),
		// Force a keyframe at every segment boundary and disable
		// scene-cut keyframes so each segment decodes independently.
		"-g", fmt.Sprintf("%d", r.GOP),
		"-keyint_min", fmt.Sprintf("%d", r.GOP),
		"-sc_threshold", "0",
		"-hls_time", fmt.Sprintf("%g", e.segmentDuration),
		"-hls_playlist_type", "vod",
		"-hls_flags", "independent_segments",
		"-threads", "auto",
		"-hls_segment_filename", segmentPattern,
		childManifest,
	}

	if err := e.run(ctx, "ffmpeg", args...); err != nil {
		return err
	}

	// ffmpeg exiting zero without producing the playlist counts as a
	// failed quality.
	if _, err := os.Stat(childManifest); err != nil {
		return fmt.Errorf("child manifest missing after encode: %w", err)
	}
	return nil
}

// writeMasterManifest writes master.m3u8 referencing the given
// renditions, most capable first (descending bandwidth).
func writeMasterManifest(outputDir string, renditions []planner.Rendition, fps int) error {
	sorted := make([]planner.Rendition, len(renditions))
	copy(sorted, renditions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Bandwidth() > sorted[j].Bandwidth()
	})

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, r := range sorted {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,FRAME-RATE=%d,CODECS=%q\n",
			r.Bandwidth(), r.Width, r.Height, fps, hlsCodecs)
		b.WriteString(r.Name + ".m3u8\n")
	}

	path := filepath.Join(outputDir, masterManifest)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write master manifest: %w", err)
	}
	return nil
}

// extractThumbnail grabs a poster frame a couple of seconds in.
// Best effort; the item is servable without one.
func (e *Engine) extractThumbnail(ctx context.Context, sourcePath, outputDir string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return e.run(ctx, "ffmpeg",
		"-y",
		"-ss", fmt.Sprintf("%d", thumbnailOffset),
		"-i", sourcePath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", thumbnailWidth),
		filepath.Join(outputDir, thumbnailFile),
	)
}

func recreateDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logging.Error("failed to remove output directory %s: %v", dir, err)
	}
}

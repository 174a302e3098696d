package transcoder

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/jhony-23/WebVideoA/internal/logging"
	"github.com/jhony-23/WebVideoA/internal/metrics"
)

// jpegQuality for generated image renditions.
const jpegQuality = 85

// ProcessImage produces resized JPEG renditions of an image, one per
// ladder profile whose target width does not exceed the source width.
// The smallest rendition doubles as the thumbnail. Resizes run
// concurrently; a single failed rendition is skipped like a failed
// video quality.
func (e *Engine) ProcessImage(ctx context.Context, sourcePath, outputDir string) *Outcome {
	if err := recreateDir(outputDir); err != nil {
		return &Outcome{ErrorCode: ErrCodeProbe, ErrorMessage: err.Error()}
	}

	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		removeDir(outputDir)
		return &Outcome{
			ErrorCode:    ErrCodeProbe,
			ErrorMessage: fmt.Sprintf("failed to decode image: %v", err),
		}
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		removeDir(outputDir)
		return &Outcome{
			ErrorCode:    ErrCodeInvalidResolution,
			ErrorMessage: fmt.Sprintf("invalid image dimensions %dx%d", srcW, srcH),
		}
	}

	var mu sync.Mutex
	var variants []Variant

	g, _ := errgroup.WithContext(ctx)
	seen := make(map[int]bool)
	for _, p := range e.profiles {
		width := p.TargetWidth
		if width > srcW {
			width = srcW
		}
		// Small sources collapse profiles onto the same width.
		if seen[width] {
			continue
		}
		seen[width] = true

		name := p.Name
		g.Go(func() error {
			resized := imaging.Resize(img, width, 0, imaging.Lanczos)
			path := filepath.Join(outputDir, name+".jpg")
			if err := imaging.Save(resized, path, imaging.JPEGQuality(jpegQuality)); err != nil {
				logging.Warn("Skipping image rendition %s for %s: %v", name, sourcePath, err)
				metrics.TranscodeVariantsTotal.WithLabelValues(name, "failure").Inc()
				return nil
			}
			metrics.TranscodeVariantsTotal.WithLabelValues(name, "success").Inc()

			mu.Lock()
			variants = append(variants, Variant{
				Name:   name,
				Width:  resized.Bounds().Dx(),
				Height: resized.Bounds().Dy(),
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		removeDir(outputDir)
		return &Outcome{ErrorCode: ErrCodeNoVariant, ErrorMessage: err.Error()}
	}

	if len(variants) == 0 {
		removeDir(outputDir)
		return &Outcome{
			ErrorCode:    ErrCodeNoVariant,
			ErrorMessage: "all image renditions failed",
		}
	}

	// Largest first, matching the video ladder ordering.
	sort.Slice(variants, func(i, j int) bool {
		return variants[i].Width*variants[i].Height > variants[j].Width*variants[j].Height
	})

	thumbWidth := thumbnailWidth
	if thumbWidth > srcW {
		thumbWidth = srcW
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	thumbPath := filepath.Join(outputDir, thumbnailFile)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(jpegQuality)); err != nil {
		logging.Warn("Thumbnail generation failed for %s: %v", sourcePath, err)
	}

	return &Outcome{
		Success:  true,
		Variants: variants,
		Width:    srcW,
		Height:   srcH,
	}
}

package planner

import (
	"math"
	"sort"
)

// minAreaRatio rejects renditions smaller than this fraction of the
// source area. Anything below it is a near-duplicate of the next
// rendition down and not worth an encode.
const minAreaRatio = 0.20

// minGOP is the floor for the keyframe interval in frames.
const minGOP = 12

// QualityProfile is one row of the static quality ladder.
type QualityProfile struct {
	Name             string
	TargetWidth      int
	TargetHeight     int
	VideoBitrateKbps int
	AudioBitrateKbps int
	MaxrateRatio     float64
	BufsizeRatio     float64
}

// DefaultProfiles is the built-in ladder, descending by target area.
var DefaultProfiles = []QualityProfile{
	{Name: "1080p", TargetWidth: 1920, TargetHeight: 1080, VideoBitrateKbps: 5000, AudioBitrateKbps: 192, MaxrateRatio: 1.07, BufsizeRatio: 1.5},
	{Name: "720p", TargetWidth: 1280, TargetHeight: 720, VideoBitrateKbps: 2800, AudioBitrateKbps: 128, MaxrateRatio: 1.07, BufsizeRatio: 1.5},
	{Name: "480p", TargetWidth: 854, TargetHeight: 480, VideoBitrateKbps: 1400, AudioBitrateKbps: 96, MaxrateRatio: 1.07, BufsizeRatio: 1.5},
}

// Rendition is one planned encode: final geometry, rate control and
// keyframe interval for a single quality.
type Rendition struct {
	Name             string
	Width            int
	Height           int
	VideoBitrateKbps int
	AudioBitrateKbps int
	MaxrateKbps      int
	BufsizeKbps      int
	GOP              int
}

// Bandwidth returns the HLS BANDWIDTH attribute value in bits per
// second: combined video and audio bitrate.
func (r Rendition) Bandwidth() int {
	return (r.VideoBitrateKbps + r.AudioBitrateKbps) * 1000
}

// Plan computes the renditions to encode for a source video.
//
// Per profile: the target is fitted inside the profile box preserving
// the source aspect ratio exactly, never upscaled, forced to even
// dimensions, and rejected if it falls under minAreaRatio of the
// source area. When a small source collapses several profiles onto the
// same geometry, only the cheapest of them is kept. The result is
// ordered descending by target area.
func Plan(srcW, srcH, fps int, segmentDur float64, profiles []QualityProfile) []Rendition {
	if srcW <= 0 || srcH <= 0 {
		return nil
	}

	gop := int(math.Round(float64(fps) * segmentDur))
	if gop < minGOP {
		gop = minGOP
	}

	sourceArea := float64(srcW * srcH)
	byGeometry := make(map[[2]int]Rendition)

	for _, p := range profiles {
		w, h := fitToSource(srcW, srcH, p.TargetWidth, p.TargetHeight)

		if float64(w*h) < minAreaRatio*sourceArea {
			continue
		}

		r := Rendition{
			Name:             p.Name,
			Width:            w,
			Height:           h,
			VideoBitrateKbps: p.VideoBitrateKbps,
			AudioBitrateKbps: p.AudioBitrateKbps,
			MaxrateKbps:      int(float64(p.VideoBitrateKbps) * p.MaxrateRatio),
			BufsizeKbps:      int(float64(p.VideoBitrateKbps) * p.BufsizeRatio),
			GOP:              gop,
		}

		// Clamping can collapse several profiles onto identical
		// dimensions. Spending 5000 kbps on a 320x240 encode is
		// pointless, so the cheapest profile wins.
		key := [2]int{w, h}
		if prev, ok := byGeometry[key]; !ok || r.VideoBitrateKbps < prev.VideoBitrateKbps {
			byGeometry[key] = r
		}
	}

	renditions := make([]Rendition, 0, len(byGeometry))
	for _, r := range byGeometry {
		renditions = append(renditions, r)
	}
	sort.Slice(renditions, func(i, j int) bool {
		return renditions[i].Width*renditions[i].Height > renditions[j].Width*renditions[j].Height
	})
	return renditions
}

// fitToSource computes the largest geometry that fits inside both the
// profile box and the source, preserving the source aspect ratio
// exactly, with both dimensions even and at least 2.
func fitToSource(srcW, srcH, maxW, maxH int) (int, int) {
	var w, h int
	if srcW <= maxW && srcH <= maxH {
		// Source already fits; never upscale.
		w, h = srcW, srcH
	} else {
		aspect := float64(srcW) / float64(srcH)
		// Derive the over-specified dimension from the binding one so
		// the pair matches the source aspect ratio exactly.
		if float64(maxW)/float64(maxH) > aspect {
			h = maxH
			if srcH < h {
				h = srcH
			}
			w = int(math.Round(float64(h) * aspect))
		} else {
			w = maxW
			if srcW < w {
				w = srcW
			}
			h = int(math.Round(float64(w) / aspect))
		}
	}

	w -= w % 2
	h -= h % 2
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	return w, h
}

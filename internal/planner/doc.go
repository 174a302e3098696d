// Package planner decides which renditions to encode for a source video.
//
// Plan is a pure function from source geometry and a quality profile
// table to a rendition list. All the precision-critical rules live
// here: aspect-exact downscaling, even dimensions for h264, the
// minimum-area cutoff that avoids near-duplicate tiny renditions, and
// the GOP size that aligns keyframes with segment boundaries.
package planner

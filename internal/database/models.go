package database

import (
	"time"

	"github.com/jhony-23/WebVideoA/internal/mediatypes"
)

// Status is the processing state of a media item.
type Status string

const (
	// StatusPending means the item is waiting to be processed.
	StatusPending Status = "pending"
	// StatusProcessing means a scheduler worker has claimed the item.
	StatusProcessing Status = "processing"
	// StatusReady means renditions and a master manifest exist on disk.
	StatusReady Status = "ready"
	// StatusFailed means processing failed; the error is recorded.
	StatusFailed Status = "failed"
)

// MediaItem is one uploaded media file and its processing state.
type MediaItem struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	SourcePath   string               `json:"sourcePath"`
	MediaType    mediatypes.MediaType `json:"mediaType"`
	Status       Status               `json:"status"`
	OutputDir    string               `json:"outputDir,omitempty"`
	Qualities    []string             `json:"qualities,omitempty"`
	Duration     float64              `json:"duration,omitempty"`
	Width        int                  `json:"width,omitempty"`
	Height       int                  `json:"height,omitempty"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
	UploadedAt   time.Time            `json:"uploadedAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// ResultUpdate carries the fields written back after a processing run.
// The whole update is applied as a single statement so readers never
// observe a half-written transition.
type ResultUpdate struct {
	Status       Status
	Qualities    []string
	OutputDir    string
	Duration     float64
	Width        int
	Height       int
	ErrorMessage string
}

package handlers

import (
	"github.com/jhony-23/WebVideoA/internal/database"
	"github.com/jhony-23/WebVideoA/internal/startup"
	"github.com/jhony-23/WebVideoA/internal/streaming"
)

// Notifier wakes the scheduler after an upload or requeue.
type Notifier interface {
	Notify()
}

type Handlers struct {
	db        *database.Database
	scheduler Notifier
	mediaDir  string

	streamConfig streaming.Config
}

func New(db *database.Database, scheduler Notifier, config *startup.Config) *Handlers {
	return &Handlers{
		db:           db,
		scheduler:    scheduler,
		mediaDir:     config.MediaDir,
		streamConfig: streaming.DefaultConfig(),
	}
}

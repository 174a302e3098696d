package scheduler

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/jhony-23/WebVideoA/internal/database"
	"github.com/jhony-23/WebVideoA/internal/logging"
	"github.com/jhony-23/WebVideoA/internal/mediatypes"
	"github.com/jhony-23/WebVideoA/internal/metrics"
	"github.com/jhony-23/WebVideoA/internal/transcoder"
)

// DefaultPollInterval between registry polls when the queue is idle.
const DefaultPollInterval = 5 * time.Second

// Registry is the subset of database operations the scheduler needs.
type Registry interface {
	ClaimNextPending(ctx context.Context) (*database.MediaItem, error)
	UpdateResult(ctx context.Context, id string, upd database.ResultUpdate) error
	CountPending(ctx context.Context) (int, error)
}

// Engine processes one media item into renditions.
type Engine interface {
	Transcode(ctx context.Context, sourcePath, outputDir string) *transcoder.Outcome
	ProcessImage(ctx context.Context, sourcePath, outputDir string) *transcoder.Outcome
}

// Scheduler drives the engine over pending registry items.
type Scheduler struct {
	registry     Registry
	engine       Engine
	mediaDir     string
	pollInterval time.Duration
	workers      int

	notify chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler with the given worker count. Output
// directories are resolved relative to mediaDir.
func New(registry Registry, engine Engine, mediaDir string, pollInterval time.Duration, workers int) *Scheduler {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		registry:     registry,
		engine:       engine,
		mediaDir:     mediaDir,
		pollInterval: pollInterval,
		workers:      workers,
		notify:       make(chan struct{}, 1),
	}
}

// OutputDirFor returns the registry-relative output directory for an
// item. Derived from the durable ID, never from the title, so renames
// cannot orphan renditions.
func OutputDirFor(id string) string {
	return path.Join("hls", id)
}

// Notify wakes an idle worker. Non-blocking; if a wakeup is already
// queued the new one is redundant anyway.
func (s *Scheduler) Notify() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Start launches the worker pool.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	logging.Info("Starting scheduler with %d workers, poll interval %s", s.workers, s.pollInterval)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.wg.Add(1)
	go s.updateGauges(ctx)
}

// Stop cancels the workers and waits for in-flight items to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	logging.Info("Scheduler stopped")
}

func (s *Scheduler) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		// Drain the queue before going back to sleep.
		for s.processNext(ctx, id) {
			if ctx.Err() != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-s.notify:
		case <-ticker.C:
		}
	}
}

// processNext claims and processes one item. Returns false when the
// queue is empty or the claim failed.
func (s *Scheduler) processNext(ctx context.Context, workerID int) bool {
	item, err := s.registry.ClaimNextPending(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Error("Worker %d: claim failed: %v", workerID, err)
		}
		return false
	}
	if item == nil {
		return false
	}

	metrics.SchedulerActiveWorkers.Inc()
	defer metrics.SchedulerActiveWorkers.Dec()

	start := time.Now()
	logging.Info("Worker %d: processing %s (%s)", workerID, item.ID, item.Title)

	outputDir := OutputDirFor(item.ID)
	absOutputDir := filepath.Join(s.mediaDir, outputDir)

	var outcome *transcoder.Outcome
	if item.MediaType == mediatypes.MediaTypeImage {
		outcome = s.engine.ProcessImage(ctx, item.SourcePath, absOutputDir)
	} else {
		outcome = s.engine.Transcode(ctx, item.SourcePath, absOutputDir)
	}

	metrics.SchedulerProcessingDuration.Observe(time.Since(start).Seconds())

	if !outcome.Success {
		logging.Warn("Worker %d: %s failed: %s (%s)", workerID, item.ID, outcome.ErrorCode, outcome.ErrorMessage)
		metrics.SchedulerItemsProcessed.WithLabelValues("failed").Inc()

		err := s.registry.UpdateResult(ctx, item.ID, database.ResultUpdate{
			Status:       database.StatusFailed,
			ErrorMessage: outcome.ErrorMessage,
		})
		if err != nil {
			logging.Error("Worker %d: failed to record failure for %s: %v", workerID, item.ID, err)
		}
		return true
	}

	err = s.registry.UpdateResult(ctx, item.ID, database.ResultUpdate{
		Status:    database.StatusReady,
		Qualities: outcome.Qualities(),
		OutputDir: outputDir,
		Duration:  outcome.Duration,
		Width:     outcome.Width,
		Height:    outcome.Height,
	})
	if err != nil {
		// The renditions exist but the registry doesn't know. Leave
		// everything in place; the old directory is still referenced.
		logging.Error("Worker %d: failed to record result for %s: %v", workerID, item.ID, err)
		metrics.SchedulerItemsProcessed.WithLabelValues("failed").Inc()
		return true
	}

	// The registry now points at the new directory, so a superseded
	// one (from before output dirs were ID-derived) can go.
	if item.OutputDir != "" && item.OutputDir != outputDir {
		old := filepath.Join(s.mediaDir, item.OutputDir)
		if err := os.RemoveAll(old); err != nil {
			logging.Warn("Worker %d: failed to remove old output dir %s: %v", workerID, old, err)
		} else {
			logging.Debug("Worker %d: removed superseded output dir %s", workerID, old)
		}
	}

	metrics.SchedulerItemsProcessed.WithLabelValues("ready").Inc()
	logging.Info("Worker %d: %s ready with qualities %v in %s",
		workerID, item.ID, outcome.Qualities(), time.Since(start).Round(time.Millisecond))
	return true
}

// updateGauges keeps the pending-items gauge fresh.
func (s *Scheduler) updateGauges(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.registry.CountPending(ctx)
			if err != nil {
				continue
			}
			metrics.SchedulerPendingItems.Set(float64(count))
		}
	}
}

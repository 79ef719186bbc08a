package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/pid-digitizer/backend/internal/cad"
	"github.com/pid-digitizer/backend/internal/logging"
	"github.com/pid-digitizer/backend/internal/models"
	"github.com/pid-digitizer/backend/internal/storage"
)

// ErrTimeout is returned when an export does not finish within the job timeout.
var ErrTimeout = errors.New("export timed out")

// recordTimeout bounds the history write after a successful export.
const recordTimeout = 5 * time.Second

// Status represents the export job status.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusComposing   Status = "composing"
	StatusRegistering Status = "registering"
	StatusComplete    Status = "complete"
	StatusError       Status = "error"
)

// Job represents an async export.
type Job struct {
	ID          string               `json:"id"`
	DrawingID   string               `json:"drawingId"`
	PaperSize   models.PaperSize     `json:"paperSize"`
	Status      Status               `json:"status"`
	Progress    float64              `json:"progress"`
	Stage       string               `json:"stage"`
	Record      *models.ExportRecord `json:"record,omitempty"`
	Error       string               `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	CompletedAt *time.Time           `json:"completedAt,omitempty"`
}

// Done reports whether the job has finished, successfully or not.
func (j Job) Done() bool {
	return j.Status == StatusComplete || j.Status == StatusError
}

// Recorder persists finished exports.
type Recorder interface {
	Record(ctx context.Context, rec *models.ExportRecord) error
}

// Options tunes a Manager.
type Options struct {
	// Timeout bounds the wall-clock time of one export. Zero means no limit.
	Timeout time.Duration
	// MaxConcurrent bounds the number of exports composing at once.
	MaxConcurrent int
}

// Manager runs exports, synchronously or as background jobs.
type Manager struct {
	jobs    map[string]*Job
	mu      sync.RWMutex
	store   storage.Store
	history Recorder
	timeout time.Duration
	sem     chan struct{}

	pathMu sync.Mutex
	paths  map[string]chan struct{}

	log *log.Logger
}

// NewManager creates an export manager. history may be nil.
func NewManager(store storage.Store, history Recorder, opts Options) *Manager {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	return &Manager{
		jobs:    make(map[string]*Job),
		store:   store,
		history: history,
		timeout: opts.Timeout,
		sem:     make(chan struct{}, opts.MaxConcurrent),
		paths:   make(map[string]chan struct{}),
		log:     logging.New("export"),
	}
}

// Run exports req and waits for the result.
func (m *Manager) Run(ctx context.Context, req *models.ExportRequest) (*models.ExportRecord, error) {
	return m.run(ctx, req, nil)
}

// StartJob begins an export in the background.
func (m *Manager) StartJob(req *models.ExportRequest) Job {
	job := &Job{
		ID:        uuid.New().String(),
		DrawingID: req.DrawingID,
		PaperSize: req.Options.PaperSize,
		Status:    StatusQueued,
		Stage:     "queued",
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	go m.processJob(job, req)

	return snapshot
}

// GetJob returns a snapshot of a job by ID.
func (m *Manager) GetJob(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (m *Manager) processJob(job *Job, req *models.ExportRequest) {
	m.log.Infof("[ExportJob %s] starting export of %s", job.ID[:8], job.DrawingID)

	rec, err := m.run(context.Background(), req, job)
	if err != nil {
		m.markJobError(job, err.Error())
		return
	}
	m.markJobComplete(job, rec)
	m.log.Infof("[ExportJob %s] complete: %s (%d bytes)", job.ID[:8], rec.FileID, rec.Bytes)
}

type result struct {
	stats models.ExportStats
	err   error
}

func (m *Manager) run(ctx context.Context, req *models.ExportRequest, job *Job) (*models.ExportRecord, error) {
	start := time.Now()
	if _, err := cad.PaperDimensions(req.Options.PaperSize); err != nil {
		return nil, err
	}
	path, err := m.store.PathFor(req.DrawingID, models.FormatDXF)
	if err != nil {
		return nil, err
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	release, err := m.acquire(ctx, path)
	if err != nil {
		return nil, m.contextError(err, req.DrawingID)
	}

	m.updateJobStatus(job, StatusComposing, "composing drawing", 10)

	// The composer has no cancellation points. It keeps its slot until it
	// returns so a timed-out export never overlaps a retry on the same path.
	done := make(chan result, 1)
	go func() {
		defer release()
		c := cad.NewComposer()
		_, err := c.Export(req, path)
		done <- result{stats: c.Stats(), err: err}
	}()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		m.log.Warnf("export of %s abandoned after %v", req.DrawingID, time.Since(start))
		return nil, m.contextError(ctx.Err(), req.DrawingID)
	}
	if r.err != nil {
		return nil, r.err
	}

	m.updateJobStatus(job, StatusRegistering, "registering file", 80)

	info, err := m.store.Register(req.DrawingID, path)
	if err != nil {
		return nil, fmt.Errorf("register export: %w", err)
	}

	rec := &models.ExportRecord{
		ID:         uuid.New().String(),
		DrawingID:  req.DrawingID,
		PaperSize:  req.Options.PaperSize,
		FileID:     info.ID,
		Bytes:      info.Size,
		DurationMs: time.Since(start).Milliseconds(),
		Stats:      r.stats,
		CreatedAt:  time.Now(),
	}
	if m.history != nil {
		// The file is already written; the export's deadline no longer applies.
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		if err := m.history.Record(recordCtx, rec); err != nil {
			m.log.Warnf("recording export %s: %v", rec.ID, err)
		}
	}
	return rec, nil
}

// acquire takes a concurrency slot and the lock on path. The returned
// function releases both.
func (m *Manager) acquire(ctx context.Context, path string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.pathMu.Lock()
	lock, ok := m.paths[path]
	if !ok {
		lock = make(chan struct{}, 1)
		m.paths[path] = lock
	}
	m.pathMu.Unlock()

	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		<-m.sem
		return nil, ctx.Err()
	}

	return func() {
		<-lock
		<-m.sem
	}, nil
}

func (m *Manager) contextError(err error, drawingID string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, drawingID)
	}
	return err
}

// updateJobStatus updates job progress (thread-safe).
func (m *Manager) updateJobStatus(job *Job, status Status, stage string, progress float64) {
	if job == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = status
	job.Stage = stage
	job.Progress = progress
}

// markJobComplete marks job as complete (thread-safe).
func (m *Manager) markJobComplete(job *Job, rec *models.ExportRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusComplete
	job.Stage = "complete"
	job.Progress = 100
	job.Record = rec
	now := time.Now()
	job.CompletedAt = &now
}

// markJobError marks job as failed (thread-safe).
func (m *Manager) markJobError(job *Job, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusError
	job.Stage = "failed"
	job.Error = errMsg
	now := time.Now()
	job.CompletedAt = &now
	m.log.Errorf("[ExportJob %s] error: %s", job.ID[:8], errMsg)
}

// CleanupOldJobs removes finished jobs older than maxAge.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Done() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs CleanupOldJobs every interval until ctx is done.
func (m *Manager) StartCleanup(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.CleanupOldJobs(maxAge); n > 0 {
					m.log.Debugj(log.JSON{"event": "jobs_cleaned", "removed": n})
				}
			}
		}
	}()
}

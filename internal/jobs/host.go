package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/filedock/backend/internal/filesystem"
	"github.com/filedock/backend/internal/infrastructure/logging"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Job tracks one named long-running archive task.
type Job struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Status    Status             `json:"status"`
	Completed []filesystem.Entry `json:"completed"`
	Error     string             `json:"error,omitempty"`
	Started   time.Time          `json:"started"`
	Finished  time.Time          `json:"finished,omitzero"`

	cancel context.CancelFunc
}

// Notifier receives toast-style notifications for terminal job outcomes.
type Notifier func(Notification)

// Recorder observes job lifecycle transitions, typically for metrics.
type Recorder interface {
	JobStarted()
	JobFinished(status string)
}

// Host runs archive jobs against the driver. By the job-host convention the
// leading entries of a request are sources and the last is the destination
// directory. Progress is recorded per completed archive member;
// cancellation is observed by the driver within one member-processing step.
type Host struct {
	driver *filesystem.Driver
	log    *logging.Logger
	notify Notifier
	rec    Recorder

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewHost creates a job host. notify may be nil.
func NewHost(driver *filesystem.Driver, log *logging.Logger, notify Notifier) *Host {
	if log == nil {
		log = logging.NewDefault()
	}
	if notify == nil {
		notify = func(Notification) {}
	}
	return &Host{
		driver: driver,
		log:    log,
		notify: notify,
		jobs:   make(map[string]*Job),
	}
}

// WithRecorder attaches a lifecycle recorder and returns the host.
func (h *Host) WithRecorder(rec Recorder) *Host {
	h.rec = rec
	return h
}

// StartCompress launches a compression job. entries holds the sources
// followed by the destination directory; archiveName is the new archive's
// file name. Precondition failures (such as the archive already existing)
// are returned synchronously and no job is recorded.
func (h *Host) StartCompress(ctx context.Context, name string, entries []filesystem.Entry, archiveName string) (*Job, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("jobs: compress needs at least one source and a destination")
	}
	sources := entries[:len(entries)-1]
	dest := entries[len(entries)-1]

	jobCtx, cancel := context.WithCancel(ctx)
	events, err := h.driver.Compress(jobCtx, sources, dest, archiveName)
	if err != nil {
		cancel()
		return nil, err
	}

	job := h.track(name, cancel)
	go h.consume(jobCtx, job, events)
	return h.snapshot(job.ID), nil
}

// StartExtract launches a decompression job. entries holds the archive
// source first and the destination directory last.
func (h *Host) StartExtract(ctx context.Context, name string, entries []filesystem.Entry) (*Job, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("jobs: extract needs a source and a destination")
	}
	source := entries[0]
	dest := entries[len(entries)-1]

	jobCtx, cancel := context.WithCancel(ctx)
	job := h.track(name, cancel)

	go func() {
		defer cancel()
		extracted, err := h.driver.Decompress(jobCtx, source, dest)
		switch {
		case err != nil && jobCtx.Err() != nil:
			h.finish(job.ID, StatusCancelled, jobCtx.Err())
		case err != nil:
			h.finish(job.ID, StatusFailed, err)
		default:
			h.appendProgress(job.ID, *extracted)
			h.finish(job.ID, StatusSucceeded, nil)
		}
	}()
	return h.snapshot(job.ID), nil
}

// Cancel requests cancellation of a running job. It reports whether the job
// exists and was still running.
func (h *Host) Cancel(id string) bool {
	h.mu.RLock()
	job, ok := h.jobs[id]
	running := ok && job.Status == StatusRunning
	h.mu.RUnlock()
	if !running {
		return false
	}
	// cancel is set once before the job is published and never reassigned.
	job.cancel()
	return true
}

// Get returns a copy of the job's current state.
func (h *Host) Get(id string) (*Job, bool) {
	job := h.snapshot(id)
	return job, job != nil
}

// List returns copies of all known jobs.
func (h *Host) List() []*Job {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Job, 0, len(h.jobs))
	for id := range h.jobs {
		out = append(out, copyJob(h.jobs[id]))
	}
	return out
}

func (h *Host) track(name string, cancel context.CancelFunc) *Job {
	job := &Job{
		ID:      uuid.NewString(),
		Name:    name,
		Status:  StatusRunning,
		Started: time.Now(),
		cancel:  cancel,
	}
	h.mu.Lock()
	h.jobs[job.ID] = job
	h.mu.Unlock()
	if h.rec != nil {
		h.rec.JobStarted()
	}
	h.log.Info("job started", zap.String("job", job.ID), zap.String("name", name))
	return job
}

func (h *Host) consume(ctx context.Context, job *Job, events <-chan filesystem.ProgressEvent) {
	defer job.cancel()
	for ev := range events {
		if ev.Err != nil {
			h.finish(job.ID, StatusFailed, ev.Err)
			return
		}
		h.appendProgress(job.ID, ev.Entry)
	}
	if ctx.Err() != nil {
		h.finish(job.ID, StatusCancelled, ctx.Err())
		return
	}
	h.finish(job.ID, StatusSucceeded, nil)
}

func (h *Host) appendProgress(id string, entry filesystem.Entry) {
	h.mu.Lock()
	if job, ok := h.jobs[id]; ok {
		job.Completed = append(job.Completed, entry)
	}
	h.mu.Unlock()
	h.log.Debug("job progress", zap.String("job", id), zap.String("member", entry.Path))
}

func (h *Host) finish(id string, status Status, err error) {
	h.mu.Lock()
	job, ok := h.jobs[id]
	if ok {
		job.Status = status
		job.Finished = time.Now()
		if err != nil {
			job.Error = err.Error()
		}
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	if h.rec != nil {
		h.rec.JobFinished(string(status))
	}
	h.log.Info("job finished",
		zap.String("job", id),
		zap.String("status", string(status)),
		zap.Error(err),
	)
	h.notify(notificationFor(job.Name, status, err))
}

func (h *Host) snapshot(id string) *Job {
	h.mu.RLock()
	defer h.mu.RUnlock()
	job, ok := h.jobs[id]
	if !ok {
		return nil
	}
	return copyJob(job)
}

func copyJob(job *Job) *Job {
	out := *job
	out.Completed = append([]filesystem.Entry(nil), job.Completed...)
	out.cancel = nil
	return &out
}

package indexer

import (
	"sync"
	"time"
)

// Status is the lifecycle state of a rebuild job.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// Snapshot is a point-in-time view of a job, safe to hand to observers.
type Snapshot struct {
	Status      Status
	Processed   int
	CurrentPath string
	Warnings    int
	Elapsed     time.Duration
	Err         error
}

// Job tracks one rebuild from start to its terminal state. It is mutated
// only by the Rebuilder that created it; everyone else observes snapshots
// and requests cancellation through the context passed to Start.
type Job struct {
	mu          sync.Mutex
	status      Status
	processed   int
	currentPath string
	warnings    int
	started     time.Time
	finished    time.Time
	err         error

	done chan struct{}
}

func newJob() *Job {
	return &Job{status: StatusIdle, done: make(chan struct{})}
}

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Snapshot returns a consistent view of the job's progress.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	elapsed := time.Duration(0)
	if !j.started.IsZero() {
		end := j.finished
		if end.IsZero() {
			end = time.Now()
		}
		elapsed = end.Sub(j.started)
	}
	return Snapshot{
		Status:      j.status,
		Processed:   j.processed,
		CurrentPath: j.currentPath,
		Warnings:    j.warnings,
		Elapsed:     elapsed,
		Err:         j.err,
	}
}

// Wait blocks until the job reaches a terminal state and returns its snapshot.
func (j *Job) Wait() Snapshot {
	<-j.done
	return j.Snapshot()
}

// Done returns a channel closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) start() {
	j.mu.Lock()
	j.status = StatusRunning
	j.started = time.Now()
	j.mu.Unlock()
}

func (j *Job) observe(processed int, currentPath string) {
	j.mu.Lock()
	j.processed = processed
	j.currentPath = currentPath
	j.mu.Unlock()
}

func (j *Job) finish(status Status, warnings int, err error) {
	j.mu.Lock()
	j.status = status
	j.warnings = warnings
	j.finished = time.Now()
	j.err = err
	j.mu.Unlock()
	close(j.done)
}

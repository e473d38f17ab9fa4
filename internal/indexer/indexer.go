// Package indexer implements the rebuild engine: it walks the configured
// roots, applies the indexing policy, and atomically replaces the store
// contents on success.
package indexer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/progress"
	"github.com/starford/raido/internal/walk"
)

// Rebuilder runs full index rebuilds. At most one job may be running at a
// time; concurrent Start calls are rejected, not queued or restarted.
type Rebuilder struct {
	store  index.Store
	broker *progress.Broker
	logger *slog.Logger
	lock   rebuildLock
}

// New creates a Rebuilder. broker may be nil when no one observes progress.
func New(store index.Store, broker *progress.Broker, logger *slog.Logger) *Rebuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rebuilder{store: store, broker: broker, logger: logger}
}

// Start launches a rebuild under the given policy on its own goroutine and
// returns the job to observe. It returns ErrRebuildInProgress when another
// rebuild is still running. Cancel by cancelling ctx; cancellation is
// observed at walk checkpoints, the partial entry set is discarded, and the
// store is left exactly as it was.
func (r *Rebuilder) Start(ctx context.Context, policy walk.Policy) (*Job, error) {
	if !r.lock.TryAcquire() {
		return nil, apperr.ErrRebuildInProgress
	}
	job := newJob()
	go r.run(ctx, policy, job)
	return job, nil
}

// Rebuild runs a rebuild synchronously and returns its terminal snapshot.
func (r *Rebuilder) Rebuild(ctx context.Context, policy walk.Policy) (Snapshot, error) {
	job, err := r.Start(ctx, policy)
	if err != nil {
		return Snapshot{}, err
	}
	return job.Wait(), nil
}

func (r *Rebuilder) run(ctx context.Context, policy walk.Policy, job *Job) {
	defer r.lock.Release()

	start := time.Now()
	job.start()
	r.logger.Info("rebuild: started", slog.Int("roots", len(policy.Roots)))

	var entries []models.Entry
	warnings, walkErr := walk.New(policy).Walk(ctx, func(e models.Entry) error {
		entries = append(entries, e)
		job.observe(len(entries), e.Path)
		r.publish(progress.Event{
			Type:        progress.EventProgress,
			Processed:   len(entries),
			CurrentPath: e.Path,
		})
		return nil
	})

	elapsed := time.Since(start)
	switch {
	case errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded):
		// Accumulated entries are discarded; the store keeps its prior contents.
		job.finish(StatusCancelled, warnings, nil)
		r.publish(progress.Event{Type: progress.EventCancelled, Warnings: warnings, Elapsed: elapsed})
		r.logger.Info("rebuild: cancelled",
			slog.Int("walked", len(entries)),
			slog.Duration("elapsed", elapsed))

	case walkErr != nil:
		job.finish(StatusFailed, warnings, walkErr)
		r.publish(progress.Event{Type: progress.EventFailed, Warnings: warnings, Elapsed: elapsed, Err: walkErr.Error()})
		r.logger.Error("rebuild: failed", slog.String("error", walkErr.Error()))

	default:
		if err := r.store.ReplaceAll(entries, policy.Fingerprint()); err != nil {
			job.finish(StatusFailed, warnings, err)
			r.publish(progress.Event{Type: progress.EventFailed, Warnings: warnings, Elapsed: elapsed, Err: err.Error()})
			r.logger.Error("rebuild: commit failed", slog.String("error", err.Error()))
			return
		}
		elapsed = time.Since(start)
		job.finish(StatusCompleted, warnings, nil)
		r.publish(progress.Event{
			Type:     progress.EventCompleted,
			Entries:  len(entries),
			Warnings: warnings,
			Elapsed:  elapsed,
		})
		r.logger.Info("rebuild: completed",
			slog.Int("entries", len(entries)),
			slog.Int("warnings", warnings),
			slog.Duration("elapsed", elapsed))
	}
}

func (r *Rebuilder) publish(ev progress.Event) {
	if r.broker != nil {
		r.broker.Publish(ev)
	}
}

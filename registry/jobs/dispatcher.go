// Package jobs drains the retirement outbox and delivers follow-up
// work to the downstream index and storage systems.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/models"
)

// IndexSyncer propagates a retirement to the searchable index, in both
// of its representations.
type IndexSyncer interface {
	SyncGit(ctx context.Context, name string) error
	SyncSparse(ctx context.Context, name string) error
}

// StorageClient removes a retired package's files from blob storage.
type StorageClient interface {
	PurgePackage(ctx context.Context, name string) error
}

type Dispatcher struct {
	logger   *slog.Logger
	db       *db.DB
	index    IndexSyncer
	storage  StorageClient
	interval time.Duration
	batch    int
}

func NewDispatcher(
	logger *slog.Logger,
	db *db.DB,
	index IndexSyncer,
	storage StorageClient,
	interval time.Duration,
	batch int,
) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		db:       db,
		index:    index,
		storage:  storage,
		interval: interval,
		batch:    batch,
	}
}

// Run drains the outbox on a fixed interval until the context is
// cancelled. Each surviving job is eventually delivered at least once;
// a failed delivery goes back to pending for the next pass.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.DrainOnce(ctx); err != nil {
				d.logger.Error("outbox drain failed", "err", err)
			}
		}
	}
}

// DrainOnce claims one batch of pending jobs and dispatches them,
// returning how many were delivered.
func (d *Dispatcher) DrainOnce(ctx context.Context) (int, error) {
	jobs, err := db.ClaimJobs(d.db, d.batch)
	if err != nil {
		return 0, fmt.Errorf("failed to claim jobs: %w", err)
	}

	done := 0
	for _, job := range jobs {
		l := d.logger.With("job", job.ID, "kind", job.Kind, "package", job.Payload)

		err := retry.Do(
			func() error { return d.dispatch(ctx, job) },
			retry.Context(ctx),
			retry.Attempts(3),
			retry.Delay(time.Second),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			l.Error("job delivery failed, returning to pending", "attempts", job.Attempts+1, "err", err)
			if err := db.MarkJobFailed(d.db, job.ID); err != nil {
				l.Error("failed to mark job failed", "err", err)
			}
			continue
		}

		if err := db.MarkJobDone(d.db, job.ID); err != nil {
			// the job already ran; leaving it running means a restart
			// redelivers it, which at-least-once permits
			l.Error("failed to mark job done", "err", err)
			continue
		}
		done++
	}

	return done, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, job models.Job) error {
	switch job.Kind {
	case models.JobSyncGitIndex:
		return d.index.SyncGit(ctx, job.Payload)
	case models.JobSyncSparseIndex:
		return d.index.SyncSparse(ctx, job.Payload)
	case models.JobPurgeStorage:
		return d.storage.PurgePackage(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown job kind: %s", job.Kind)
	}
}

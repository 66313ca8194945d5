package retire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/models"
	"stowage.sh/core/registry/notify"
	"stowage.sh/core/registry/ownership"
	"stowage.sh/core/registry/reqerr"
)

// followUps is the fixed set of jobs scheduled when a package is
// retired: both index representations get synced, then the stored
// files are purged.
var followUps = []models.JobKind{
	models.JobSyncGitIndex,
	models.JobSyncSparseIndex,
	models.JobPurgeStorage,
}

type Service struct {
	logger   *slog.Logger
	db       *db.DB
	resolver *ownership.Resolver
	notifier notify.Notifier
}

func NewService(
	logger *slog.Logger,
	db *db.DB,
	resolver *ownership.Resolver,
	notifier notify.Notifier,
) Service {
	return Service{
		logger,
		db,
		resolver,
		notifier,
	}
}

// Retire permanently removes a package. The lookup, the rights gate,
// the eligibility snapshot, the delete and the follow-up enqueues all
// run under one transaction: eligibility data is never read ahead of
// time, so a concurrent download burst or dependency publish cannot
// invalidate a decision that has already been committed.
//
// Errors are *reqerr.Error values; anything else the store throws is
// wrapped as a transient failure and the transaction rolls back whole.
func (s *Service) Retire(ctx context.Context, name string, requester models.Requester) error {
	l := s.logger.With("method", "Retire", "package", name, "account", requester.Account)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("failed to begin transaction", "err", err)
		return reqerr.Transient(err)
	}
	defer tx.Rollback()

	pkg, err := db.GetPackage(tx, db.FilterEq("name", name))
	if errors.Is(err, sql.ErrNoRows) {
		return reqerr.NotFound(fmt.Sprintf("crate `%s` does not exist", name))
	}
	if err != nil {
		l.Error("failed to look up package", "err", err)
		return reqerr.Transient(err)
	}

	owners, err := s.resolver.ResolveOwners(tx, pkg.ID)
	if err != nil {
		l.Error("failed to resolve owners", "err", err)
		return reqerr.Transient(err)
	}

	rights, err := s.resolver.EffectiveRights(requester, owners)
	if err != nil {
		l.Error("failed to compute rights", "err", err)
		return reqerr.Transient(err)
	}

	switch rights {
	case models.RightsFull:
	case models.RightsPublish:
		return reqerr.Forbidden("group members don't have permission to delete crates")
	case models.RightsNone:
		return reqerr.Forbidden("only owners have permission to delete crates")
	}

	downloads, err := db.GetDownloads(tx, pkg.ID)
	if err != nil {
		l.Error("failed to read downloads", "err", err)
		return reqerr.Transient(err)
	}

	hasRevDep, err := db.HasReverseDependency(tx, pkg.ID)
	if err != nil {
		l.Error("failed to check reverse dependencies", "err", err)
		return reqerr.Transient(err)
	}

	decision := Evaluate(*pkg, owners, downloads, hasRevDep, time.Now())
	if !decision.Allowed {
		l.Info("retirement denied", "reason", decision.Reason)
		s.notifier.RetirementDenied(ctx, pkg, requester, decision.Reason)
		return reqerr.Unprocessable(decision.Reason)
	}

	rows, err := db.RemovePackage(ctx, tx, pkg.ID)
	if err != nil {
		l.Error("failed to delete package", "err", err)
		return reqerr.Transient(err)
	}
	if rows == 0 {
		// a concurrent retirement won the race between our snapshot
		// read and the delete
		return reqerr.NotFound(fmt.Sprintf("crate `%s` does not exist", name))
	}

	for _, kind := range followUps {
		if err := db.EnqueueJob(tx, kind, pkg.Name); err != nil {
			l.Error("failed to enqueue follow-up job", "kind", kind, "err", err)
			return reqerr.Transient(err)
		}
	}

	if err := tx.Commit(); err != nil {
		l.Error("failed to commit", "err", err)
		return reqerr.Transient(err)
	}

	l.Info("package retired")
	s.notifier.PackageRetired(ctx, pkg, requester)
	return nil
}

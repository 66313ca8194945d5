package notify

import (
	"context"

	"stowage.sh/core/registry/models"
)

// Notifier fans registry events out to interested listeners. Calls are
// best-effort and must never fail the request that triggered them.
type Notifier interface {
	PackageRetired(ctx context.Context, pkg *models.Package, requester models.Requester)
	RetirementDenied(ctx context.Context, pkg *models.Package, requester models.Requester, reason string)
}

// BaseNotifier is a listener that does nothing
type BaseNotifier struct{}

var _ Notifier = &BaseNotifier{}

func (m *BaseNotifier) PackageRetired(ctx context.Context, pkg *models.Package, requester models.Requester) {
}

func (m *BaseNotifier) RetirementDenied(ctx context.Context, pkg *models.Package, requester models.Requester, reason string) {
}

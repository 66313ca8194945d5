package posthog

import (
	"context"

	"github.com/posthog/posthog-go"
	"stowage.sh/core/log"
	"stowage.sh/core/registry/models"
	"stowage.sh/core/registry/notify"
)

type posthogNotifier struct {
	client posthog.Client
	notify.BaseNotifier
}

func NewPosthogNotifier(client posthog.Client) notify.Notifier {
	return &posthogNotifier{
		client,
		notify.BaseNotifier{},
	}
}

var _ notify.Notifier = &posthogNotifier{}

func (n *posthogNotifier) PackageRetired(ctx context.Context, pkg *models.Package, requester models.Requester) {
	err := n.client.Enqueue(posthog.Capture{
		DistinctId: requester.Account,
		Event:      "package_retired",
		Properties: posthog.Properties{"package": pkg.Name},
	})
	if err != nil {
		log.FromContext(ctx).Error("failed to enqueue posthog event", "err", err)
	}
}

func (n *posthogNotifier) RetirementDenied(ctx context.Context, pkg *models.Package, requester models.Requester, reason string) {
	err := n.client.Enqueue(posthog.Capture{
		DistinctId: requester.Account,
		Event:      "package_retirement_denied",
		Properties: posthog.Properties{"package": pkg.Name, "reason": reason},
	})
	if err != nil {
		log.FromContext(ctx).Error("failed to enqueue posthog event", "err", err)
	}
}

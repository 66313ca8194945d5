package email

import (
	"context"
	"fmt"

	"stowage.sh/core/log"
	"stowage.sh/core/registry/config"
	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/email"
	"stowage.sh/core/registry/models"
	"stowage.sh/core/registry/notify"
)

type emailNotifier struct {
	config *config.Config
	db     *db.DB
	notify.BaseNotifier
}

func NewEmailNotifier(config *config.Config, db *db.DB) notify.Notifier {
	return &emailNotifier{
		config:       config,
		db:           db,
		BaseNotifier: notify.BaseNotifier{},
	}
}

var _ notify.Notifier = &emailNotifier{}

func (n *emailNotifier) PackageRetired(ctx context.Context, pkg *models.Package, requester models.Requester) {
	l := log.FromContext(ctx)

	addr, err := db.GetPrimaryEmail(n.db, requester.Account)
	if err != nil {
		l.Error("failed to look up email", "account", requester.Account, "err", err)
		return
	}
	if addr == "" {
		return
	}

	err = email.SendEmail(email.Email{
		From:    n.config.Resend.SentFrom,
		To:      addr,
		Subject: fmt.Sprintf("%s has been deleted from the registry", pkg.Name),
		Text: fmt.Sprintf(
			"Your package %s was permanently deleted at your request.\n\n"+
				"Its index entries and stored files are being removed; this can take a few minutes to propagate.",
			pkg.Name,
		),
		APIKey: n.config.Resend.ApiKey,
	})
	if err != nil {
		l.Error("failed to send retirement email", "package", pkg.Name, "err", err)
	}
}

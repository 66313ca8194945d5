package request

import (
	"context"

	"stowage.sh/core/registry/models"
)

type ctxKeyRequester struct{}

func WithRequester(ctx context.Context, requester *models.Requester) context.Context {
	return context.WithValue(ctx, ctxKeyRequester{}, requester)
}

func RequesterFromContext(ctx context.Context) (*models.Requester, bool) {
	requester, ok := ctx.Value(ctxKeyRequester{}).(*models.Requester)
	return requester, ok
}

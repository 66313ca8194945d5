package notify

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"stowage.sh/core/log"
	"stowage.sh/core/registry/models"
)

type mergedNotifier struct {
	notifiers []Notifier
	logger    *slog.Logger
}

func NewMergedNotifier(logger *slog.Logger, notifiers ...Notifier) Notifier {
	return &mergedNotifier{notifiers, logger}
}

var _ Notifier = &mergedNotifier{}

// fanout calls the same method on all notifiers concurrently
func (m *mergedNotifier) fanout(method string, ctx context.Context, args ...any) {
	ctx = log.IntoContext(ctx, m.logger.With("method", method))
	var wg sync.WaitGroup
	for _, n := range m.notifiers {
		wg.Add(1)
		go func(notifier Notifier) {
			defer wg.Done()
			v := reflect.ValueOf(notifier).MethodByName(method)
			in := make([]reflect.Value, len(args)+1)
			in[0] = reflect.ValueOf(ctx)
			for i, arg := range args {
				in[i+1] = reflect.ValueOf(arg)
			}
			v.Call(in)
		}(n)
	}
	wg.Wait()
}

func (m *mergedNotifier) PackageRetired(ctx context.Context, pkg *models.Package, requester models.Requester) {
	m.fanout("PackageRetired", ctx, pkg, requester)
}

func (m *mergedNotifier) RetirementDenied(ctx context.Context, pkg *models.Package, requester models.Requester, reason string) {
	m.fanout("RetirementDenied", ctx, pkg, requester, reason)
}

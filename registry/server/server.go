// Package server wires the registry's components together and owns
// their lifecycles.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/posthog/posthog-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"stowage.sh/core/log"
	"stowage.sh/core/rbac"
	"stowage.sh/core/registry/auth"
	"stowage.sh/core/registry/config"
	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/indexclient"
	"stowage.sh/core/registry/jobs"
	"stowage.sh/core/registry/notify"
	emailnotify "stowage.sh/core/registry/notify/email"
	phnotify "stowage.sh/core/registry/notify/posthog"
	"stowage.sh/core/registry/ownership"
	"stowage.sh/core/registry/retire"
	"stowage.sh/core/registry/storageclient"
	"stowage.sh/core/registry/web"
	"stowage.sh/core/telemetry"
)

type Server struct {
	logger     *slog.Logger
	config     *config.Config
	db         *db.DB
	enforcer   *rbac.Enforcer
	auth       *auth.Auth
	retire     retire.Service
	dispatcher *jobs.Dispatcher
	telemetry  *telemetry.Telemetry
	posthog    posthog.Client
}

func Make(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := log.FromContext(ctx)

	d, err := db.Make(cfg.Core.DbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	enforcer, err := rbac.NewEnforcer(cfg.Core.DbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to set up enforcer: %w", err)
	}

	t, err := telemetry.NewTelemetry(ctx, "registry", "v1", cfg.Core.Dev)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	notifiers := []notify.Notifier{}
	if cfg.Resend.ApiKey != "" {
		notifiers = append(notifiers, emailnotify.NewEmailNotifier(cfg, d))
	}

	var phClient posthog.Client
	if cfg.Posthog.ApiKey != "" {
		phClient, err = posthog.NewWithConfig(cfg.Posthog.ApiKey, posthog.Config{
			Endpoint: cfg.Posthog.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up posthog client: %w", err)
		}
		notifiers = append(notifiers, phnotify.NewPosthogNotifier(phClient))
	}

	var notifier notify.Notifier = &notify.BaseNotifier{}
	if len(notifiers) > 0 {
		notifier = notify.NewMergedNotifier(logger.With("component", "notify"), notifiers...)
	}

	resolver := ownership.NewResolver(enforcer)
	rs := retire.NewService(logger.With("service", "retire"), d, resolver, notifier)

	index, err := indexclient.NewClient(cfg.Index.SparseHost)
	if err != nil {
		return nil, fmt.Errorf("failed to set up index client: %w", err)
	}

	storage, err := storageclient.NewClient(cfg.Storage.Endpoint, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to set up storage client: %w", err)
	}

	dispatcher := jobs.NewDispatcher(
		logger.With("component", "dispatcher"),
		d,
		index,
		storage,
		cfg.Dispatcher.Interval,
		cfg.Dispatcher.BatchSize,
	)

	return &Server{
		logger:     logger,
		config:     cfg,
		db:         d,
		enforcer:   enforcer,
		auth:       auth.New(cfg.Core.CookieSecret),
		retire:     rs,
		dispatcher: dispatcher,
		telemetry:  t,
		posthog:    phClient,
	}, nil
}

// Router builds the HTTP surface, wrapped in the telemetry middleware.
func (s *Server) Router() http.Handler {
	router := web.Router(s.logger, s.db, s.auth, s.retire)

	router = s.telemetry.RequestDuration()(router)
	router = s.telemetry.RequestInFlight()(router)
	return otelhttp.NewHandler(router, "registry")
}

// StartDispatcher runs the outbox drainer until ctx is cancelled.
func (s *Server) StartDispatcher(ctx context.Context) {
	go func() {
		if err := s.dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("dispatcher stopped", "err", err)
		}
	}()
}

func (s *Server) Close(ctx context.Context) error {
	if s.posthog != nil {
		s.posthog.Close()
	}
	if err := s.telemetry.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shut down telemetry", "err", err)
	}
	return s.db.Close()
}

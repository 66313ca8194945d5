package main

import (
	"context"
	"net/http"
	"os"

	"stowage.sh/core/log"
	"stowage.sh/core/registry/config"
	"stowage.sh/core/registry/server"
)

func main() {
	ctx := context.Background()
	logger := log.New("registry")
	ctx = log.IntoContext(ctx, logger)

	c, err := config.LoadConfig(ctx)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s, err := server.Make(ctx, c)
	if err != nil {
		logger.Error("failed to start registry", "err", err)
		os.Exit(-1)
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			logger.Error("failed to close server", "err", err)
		}
	}()

	s.StartDispatcher(ctx)

	logger.Info("starting server", "address", c.Core.ListenAddr)

	if err := http.ListenAndServe(c.Core.ListenAddr, s.Router()); err != nil {
		logger.Error("failed to start registry", "err", err)
	}
}

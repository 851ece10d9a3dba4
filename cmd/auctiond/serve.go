package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"auctionScope/internal/api"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	server, err := api.NewServer(app.service, app.logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    app.cfg.Listen,
		Handler: server.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn("http shutdown", zap.Error(err))
		}
	}()

	app.logger.Info("serving auction read api",
		zap.String("listen", app.cfg.Listen),
		zap.String("contract", app.cfg.ContractAddress),
		zap.Duration("cache_ttl", app.cfg.CacheTTL),
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AlibekovAA/authd/internal/common/bootstrap"
	srv "github.com/AlibekovAA/authd/internal/common/server"
	"github.com/AlibekovAA/authd/internal/common/tracing"
)

func NewServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return oops.Code("LOGGER_INIT_FAILED").Wrap(err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("starting auth service with config %+v", cfg.Redacted())

	shutdownTracing, err := tracing.Setup(ctx, "authd", cfg.OTLPEndpoint)
	if err != nil {
		return oops.Code("TRACING_INIT_FAILED").Wrap(err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warnf("tracing shutdown: %v", err)
		}
	}()

	app, err := bootstrap.NewAuthApp(ctx, cfg, log)
	if err != nil {
		return oops.Code("APP_INIT_FAILED").Wrap(err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Errorf("failed to close auth app: %v", err)
		}
	}()

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort).WithRequestTimeout(cfg.RequestTimeout), app.Handler())
	return srv.Run(ctx, server, log, "auth")
}

package main

import (
	"context"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/spacesedan/ideiamap/config"
	"github.com/spacesedan/ideiamap/internal/app"
	"github.com/spacesedan/ideiamap/internal/monitoring"
	"github.com/spacesedan/ideiamap/internal/sentiment"
	"github.com/spacesedan/ideiamap/internal/server"
	"github.com/spacesedan/ideiamap/internal/store"
)

func serveCommand(settings *config.Settings) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the annotation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = settings.HTTPAddr
			}

			a, err := app.New(ctx, *settings)
			if err != nil {
				return err
			}
			defer a.Close()

			healthy := &atomic.Bool{}
			interval := monitoring.HealthCheckInterval(
				settings.Classifier.HealthCheckInterval,
				sentiment.IsRemote(settings.Classifier.Backend))
			go monitoring.MonitorClassifierHealth(ctx, a.Classifier, healthy, interval)

			srv := server.New(store.NewRegistry(a.AnnotatorProvider()), a.Exporter, healthy)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return srv.Shutdown(context.Background())
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to HTTP_ADDR)")
	return cmd
}

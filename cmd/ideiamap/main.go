package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spacesedan/ideiamap/config"
	"github.com/spacesedan/ideiamap/internal/logging"
	"github.com/spacesedan/ideiamap/internal/monitoring"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("[Main] Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	settings := &config.Settings{}

	cmd := &cobra.Command{
		Use:           "ideiamap",
		Short:         "Annotate citizen ideas with sentiment and neighborhood location",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env := os.Getenv("APP_ENV")
			if env == "" {
				env = "development"
			}
			config.LoadEnv(env)
			*settings = config.Load()
			logging.InitLogger(settings.LogLevel)
			monitoring.InitMetrics()
		},
	}

	cmd.AddCommand(annotateCommand(settings), serveCommand(settings))
	return cmd
}

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/adapters/queue"
	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/di"
	"github.com/jmohr/mailcast/internal/ports"
)

func newConsumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "consume",
		Short:        "Run the queue pull-consumer loop",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := di.BuildContainer()
			if err != nil {
				return err
			}
			return container.Invoke(runConsume)
		},
	}
}

// runConsume drives the consumer loop until SIGINT or SIGTERM. The SMTP
// ingest, when configured, runs alongside it.
func runConsume(
	logger *zap.Logger,
	loop *queue.Loop,
	msgIngest ports.MessageIngest,
	episodes core.EpisodeStore,
) error {
	defer logger.Sync()
	defer func() {
		if err := episodes.Close(); err != nil {
			logger.Error("Failed to close episode store", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if msgIngest != nil {
		if err := msgIngest.Start(); err != nil {
			return err
		}
		defer func() {
			if err := msgIngest.Stop(); err != nil {
				logger.Error("Failed to stop SMTP ingest", zap.Error(err))
			}
		}()
	}

	err := loop.Run(ctx)
	logger.Info("Shutdown complete")
	return err
}

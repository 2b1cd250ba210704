package queue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/ports"
)

// Loop polls the queue and drives each leased message through the
// pipeline. Successes and already-processed duplicates are acked;
// failures are left to redeliver after the visibility timeout.
type Loop struct {
	consumer          ports.QueueConsumer
	service           *core.PipelineService
	batchSize         int
	visibilitySeconds int
	interval          time.Duration
	logger            *zap.Logger
}

// NewLoop creates a new consumer loop
func NewLoop(
	consumer ports.QueueConsumer,
	service *core.PipelineService,
	batchSize int,
	visibilitySeconds int,
	interval time.Duration,
	logger *zap.Logger,
) *Loop {
	return &Loop{
		consumer:          consumer,
		service:           service,
		batchSize:         batchSize,
		visibilitySeconds: visibilitySeconds,
		interval:          interval,
		logger:            logger,
	}
}

// Run polls until the context is cancelled. Cancellation is a clean
// shutdown, not an error.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("Queue consumer started",
		zap.Int("batch_size", l.batchSize),
		zap.Duration("poll_interval", l.interval))

	for {
		messages, err := l.consumer.Pull(ctx, l.batchSize, l.visibilitySeconds)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Error("Queue pull failed", zap.Error(err))
			if !l.sleep(ctx) {
				return nil
			}
			continue
		}
		if len(messages) == 0 {
			if !l.sleep(ctx) {
				return nil
			}
			continue
		}

		acks := make([]core.QueueMessage, 0, len(messages))
		for _, msg := range messages {
			if ctx.Err() != nil {
				break
			}
			result, err := l.service.ProcessKey(ctx, msg.Key, msg.RouteTag)
			if err != nil {
				l.logger.Error("Failed to process queue message",
					zap.String("key", msg.Key),
					zap.Error(err))
				continue
			}
			if result.Skipped {
				l.logger.Info("Queue message skipped",
					zap.String("key", msg.Key),
					zap.String("reason", result.SkipReason))
			}
			acks = append(acks, msg)
		}

		if err := l.consumer.Ack(ctx, acks); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// The messages redeliver; dedupe makes the retry harmless.
			l.logger.Error("Failed to ack queue messages",
				zap.Int("count", len(acks)),
				zap.Error(err))
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (l *Loop) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(l.interval):
		return true
	}
}

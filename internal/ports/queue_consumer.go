package ports

import (
	"context"

	"github.com/jmohr/mailcast/internal/core"
)

// QueueConsumer defines the interface for pulling inbound-mail notifications
type QueueConsumer interface {
	// Pull leases up to batchSize messages for visibilitySeconds
	Pull(ctx context.Context, batchSize, visibilitySeconds int) ([]core.QueueMessage, error)

	// Ack permanently removes leased messages from the queue
	Ack(ctx context.Context, messages []core.QueueMessage) error
}

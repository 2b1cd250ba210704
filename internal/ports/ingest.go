package ports

// MessageIngest defines the interface for services that accept mail
// directly, outside the queue path
type MessageIngest interface {
	// Start starts accepting messages
	Start() error

	// Stop stops accepting messages
	Stop() error
}

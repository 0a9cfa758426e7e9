package interfaces

import "context"

// EventPublisher delivers finalized-transfer events to an external broker.
// Publishing is best-effort from the pipeline's point of view: a failure is
// logged by the caller and never fails the transfer itself.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
	Close() error
}

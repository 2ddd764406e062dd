// Package broker mirrors the relay's outbound stream to an external message
// bus so sibling processes can consume readings without holding a WebSocket
// connection.
package broker

import (
	"context"
)

// MessageBroker publishes already-serialized relay messages. A failed
// publish is the broker's problem, not the subscribers': implementations
// retry internally and never surface delivery errors onto the WebSocket
// path.
type MessageBroker interface {
	Publish(ctx context.Context, payload []byte) error

	Close() error
}

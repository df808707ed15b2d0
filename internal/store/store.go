package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("message log closed")

// MessageLog is the durable, append-only sink of relayed lines.
// Implementations must serialize Append so each line lands whole and in call order.
type MessageLog interface {
	// Append writes one line to the log.
	Append(ctx context.Context, line string) error

	// Close flushes and releases the underlying resource.
	Close() error
}

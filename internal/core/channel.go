package core

import "context"

// LineChannel is a duplex, line-framed connection to one client.
// ReadLine is only called from the owning session; WriteLine calls are
// serialized by the Record that owns the channel.
type LineChannel interface {
	// ReadLine blocks for the next line, without its terminator.
	ReadLine(ctx context.Context) (string, error)
	// WriteLine sends one line and flushes it.
	WriteLine(ctx context.Context, line string) error
	// Close releases the connection. It unblocks a pending ReadLine.
	Close() error
}

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat/internal/proto"
	"github.com/vovakirdan/relaychat/internal/store"
)

// Broadcaster stamps messages, appends them to the message log and fans them
// out to every registered record except the sender's identity.
type Broadcaster struct {
	registry *Registry
	sink     store.MessageLog
	now      func() time.Time
	log      *zerolog.Logger
}

// NewBroadcaster builds a broadcaster over registry. sink may be nil.
func NewBroadcaster(registry *Registry, sink store.MessageLog, now func() time.Time, logger *zerolog.Logger) *Broadcaster {
	if now == nil {
		now = time.Now
	}
	return &Broadcaster{
		registry: registry,
		sink:     sink,
		now:      now,
		log:      logger,
	}
}

// Broadcast relays raw on behalf of sender and returns the stamped line.
// Targets are chosen by identity: every record whose Identity differs from the
// sender's receives the line, so sessions sharing a name never see each other.
// A nil sender denotes a server-originated message delivered to everyone.
// Targets are fixed at call time: a record registered once the line is in the
// message log never receives it.
func (b *Broadcaster) Broadcast(ctx context.Context, sender *Record, raw string) string {
	targets := b.registry.Snapshot()
	formatted := proto.Stamp(raw, b.now())

	if sender != nil {
		sender.appendHistory(formatted)
	}

	if b.sink != nil {
		if err := b.sink.Append(ctx, formatted); err != nil {
			err = fmt.Errorf("%w: %w", ErrLogWrite, err)
			b.log.Error().Err(err).Str("code", ErrorCode(err)).Msg("append to message log")
		}
	}

	for _, target := range targets {
		if sender != nil && target.Identity == sender.Identity {
			continue
		}
		if err := target.Send(ctx, formatted); err != nil {
			b.drop(target, err)
		}
	}

	return formatted
}

// drop closes and unregisters a target whose channel failed. Its own session
// observes the closed channel and announces the departure.
func (b *Broadcaster) drop(target *Record, err error) {
	b.log.Warn().
		Err(err).
		Str("code", ErrorCode(err)).
		Str("session_id", target.ID).
		Str("identity", target.Identity).
		Msg("dropping unreachable client")

	b.registry.Remove(target)
	if closeErr := target.Close(); closeErr != nil {
		b.log.Debug().Err(closeErr).Str("session_id", target.ID).Msg("close dropped client")
	}
}

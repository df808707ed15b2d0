package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat/internal/proto"
)

// SessionState is a step in the lifetime of one connection.
type SessionState int

const (
	// StateConnecting waits for the identity line.
	StateConnecting SessionState = iota
	// StateAdmitted is registered and being greeted.
	StateAdmitted
	// StateActive relays chat lines and answers searches.
	StateActive
	// StateClosing unregisters and announces the departure.
	StateClosing
	// StateClosed is terminal.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAdmitted:
		return "admitted"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type session struct {
	hub     *Hub
	channel LineChannel
	record  *Record
	state   SessionState
	log     zerolog.Logger
}

// Serve runs one client session on channel until the client goes away or a
// channel operation fails. The channel is closed on return. Errors never
// escape to other sessions; a clean end of stream returns nil.
func (h *Hub) Serve(ctx context.Context, channel LineChannel) error {
	if channel == nil {
		return fmt.Errorf("%w: nil channel", ErrRegistration)
	}

	s := &session{
		hub:     h,
		channel: channel,
		state:   StateConnecting,
		log:     *h.log,
	}

	err := s.run(ctx)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *session) run(ctx context.Context) error {
	identity, err := s.channel.ReadLine(ctx)
	if err != nil {
		_ = s.channel.Close()
		s.transition(StateClosed)
		return fmt.Errorf("%w: read identity: %w", ErrChannelIO, err)
	}

	record := NewRecord(identity, s.channel)
	if err := s.hub.registry.Register(record); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			if sendErr := record.Send(ctx, proto.NameTakenLine(identity)); sendErr != nil {
				s.log.Debug().Err(sendErr).Msg("send name taken notice")
			}
		}
		s.log.Info().Err(err).Str("code", ErrorCode(err)).Str("identity", identity).Msg("session refused")
		_ = record.Close()
		s.transition(StateClosed)
		return err
	}

	s.record = record
	s.log = s.log.With().Str("session_id", record.ID).Str("identity", identity).Logger()
	s.transition(StateAdmitted)

	err = s.admit(ctx)
	if err == nil {
		s.transition(StateActive)
		err = s.active(ctx)
	}

	s.close(ctx, err)
	return err
}

// admit greets the new record and announces it to everybody else.
func (s *session) admit(ctx context.Context) error {
	identity := s.record.Identity

	holders := s.hub.registry.WithIdentity(identity)
	if len(holders) >= 2 {
		warning := proto.DuplicateNameLines(identity)
		for _, holder := range holders {
			if err := holder.SendAll(ctx, warning); err != nil {
				if holder == s.record {
					return err
				}
				s.hub.broadcaster.drop(holder, err)
			}
		}
		s.log.Warn().Msg("duplicate identity admitted")
	} else if err := s.record.Send(ctx, proto.WelcomeLine(identity)); err != nil {
		return err
	}

	s.hub.Broadcast(ctx, s.record, proto.JoinLine(identity))
	s.log.Info().Int("online", s.hub.registry.Len()).Msg("client joined")
	return nil
}

func (s *session) active(ctx context.Context) error {
	for {
		line, err := s.channel.ReadLine(ctx)
		if err != nil {
			return fmt.Errorf("%w: read: %w", ErrChannelIO, err)
		}

		kind, keyword, err := proto.Classify(line)
		if kind == proto.LineSearch {
			if err != nil {
				s.log.Warn().Err(err).Str("code", ErrorCode(err)).Str("line", line).Msg("ignoring search command")
				continue
			}
			if err := s.hub.searchFor(ctx, s.record, keyword); err != nil {
				return err
			}
			continue
		}

		sent := s.record.incSent()
		s.hub.Broadcast(ctx, s.record, line)
		s.log.Debug().Int("sent", sent).Msg("chat message relayed")
	}
}

// close unregisters the record, tells the others and releases the channel.
// The departure is announced even when ctx is already cancelled.
func (s *session) close(ctx context.Context, cause error) {
	s.transition(StateClosing)

	s.hub.registry.Remove(s.record)
	s.hub.Broadcast(context.WithoutCancel(ctx), s.record, proto.LeaveLine(s.record.Identity))
	if err := s.record.Close(); err != nil {
		s.log.Debug().Err(err).Msg("close channel")
	}

	ev := s.log.Info()
	if cause != nil && !errors.Is(cause, io.EOF) {
		ev = s.log.Warn().Err(cause).Str("code", ErrorCode(cause))
	}
	ev.Int("online", s.hub.registry.Len()).Int("sent", s.record.SentCount()).Msg("client left")

	s.transition(StateClosed)
}

func (s *session) transition(next SessionState) {
	s.log.Debug().Stringer("from", s.state).Stringer("to", next).Msg("session state")
	s.state = next
}

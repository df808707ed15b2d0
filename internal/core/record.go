package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/relaychat/internal/utils"
)

// Record is the server-side state of one live session.
type Record struct {
	ID       string
	Identity string
	JoinedAt time.Time

	channel   LineChannel
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error

	mu        sync.Mutex
	history   []string
	sentCount int
}

// NewRecord constructs a record for identity bound to channel.
func NewRecord(identity string, channel LineChannel) *Record {
	return &Record{
		ID:       utils.NewID(),
		Identity: identity,
		JoinedAt: time.Now(),
		channel:  channel,
	}
}

// Send writes one line to the client. Concurrent senders never interleave.
func (r *Record) Send(ctx context.Context, line string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.channel.WriteLine(ctx, line); err != nil {
		return fmt.Errorf("%w: write to %s: %w", ErrChannelIO, r.Identity, err)
	}
	return nil
}

// SendAll writes lines in order, stopping at the first failure.
func (r *Record) SendAll(ctx context.Context, lines []string) error {
	for _, line := range lines {
		if err := r.Send(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the channel once; later calls return the first result.
func (r *Record) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.channel.Close()
	})
	return r.closeErr
}

// History returns a copy of the lines recorded for this session.
func (r *Record) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

// SentCount is the number of chat messages this session has sent.
func (r *Record) SentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sentCount
}

func (r *Record) appendHistory(line string) {
	r.mu.Lock()
	r.history = append(r.history, line)
	r.mu.Unlock()
}

func (r *Record) incSent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sentCount++
	return r.sentCount
}

// matchHistory appends to dst every history line whose header contains keyword.
func (r *Record) matchHistory(dst []string, keyword string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range r.history {
		if headerContains(line, keyword) {
			dst = append(dst, line)
		}
	}
	return dst
}
